// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ciphersuite implements the cipher-suite capability: the hash
// and AEAD primitives a TLS 1.3 connection negotiates via the
// ClientHello cipher_suites list (RFC 8446 §B.4). Key-exchange groups
// and signature schemes are negotiated independently, through the
// supported_groups/key_share and signature_algorithms extensions; a
// suite here binds only a transcript hash to an AEAD, as RFC 8446
// itself does.
package ciphersuite

import (
	"crypto/cipher"
	"hash"
)

// ID is a CipherSuite value from the TLS 1.3 IANA registry.
type ID uint16

// Suites this endpoint offers; DefaultSuites gives their preference order.
const (
	TLS_AES_128_GCM_SHA256       ID = 0x1301
	TLS_AES_256_GCM_SHA384       ID = 0x1302
	TLS_CHACHA20_POLY1305_SHA256 ID = 0x1303
)

// KeyLen is the AEAD key length in bytes for each suite.
const (
	aes128KeyLen       = 16
	aes256KeyLen       = 32
	chacha20KeyLen     = 32
	gcmIvLen           = 12
	chacha20Poly1305Iv = 12
)

// Suite is the cipher-suite capability C1/C3 consume: an associated
// hash and an AEAD construction, keyed by negotiated traffic secrets.
type Suite interface {
	ID() ID
	HashLen() int
	KeyLen() int
	IvLen() int
	NewHash() hash.Hash
	AEAD(key []byte) (cipher.AEAD, error)
}

// ByID returns the Suite for a wire cipher suite identifier.
func ByID(id ID) (Suite, bool) {
	switch id {
	case TLS_AES_128_GCM_SHA256:
		return aes128GCMSHA256{}, true
	case TLS_AES_256_GCM_SHA384:
		return aes256GCMSHA384{}, true
	case TLS_CHACHA20_POLY1305_SHA256:
		return chacha20Poly1305SHA256{}, true
	default:
		return nil, false
	}
}

// DefaultSuites lists the suites this endpoint offers, in preference
// order, for use in a ClientHello's cipher_suites list.
var DefaultSuites = []ID{
	TLS_AES_128_GCM_SHA256,
	TLS_CHACHA20_POLY1305_SHA256,
	TLS_AES_256_GCM_SHA384,
}
