// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package kdf implements the HKDF-based key derivation TLS 1.3 uses in
// place of TLS 1.2's PRF (RFC 8446 §7.1).
package kdf

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/hkdf"
)

// labelPrefix is the constant ASCII prefix every HkdfLabel.label
// carries, RFC 8446 §7.1.
const labelPrefix = "tls13 "

// Extract is HKDF-Extract(salt, ikm) for the given hash.
func Extract(newHash func() hash.Hash, salt, ikm []byte) []byte {
	return hkdf.Extract(newHash, ikm, salt)
}

// ExpandLabel implements HKDF-Expand-Label(Secret, Label, Context, Length)
// from RFC 8446 §7.1:
//
//	HkdfLabel = struct {
//	    uint16 length = Length;
//	    opaque label<7..255> = "tls13 " + Label;
//	    opaque context<0..255> = Context;
//	}
func ExpandLabel(newHash func() hash.Hash, secret []byte, label string, context []byte, length int) []byte {
	hkdfLabel := make([]byte, 0, 2+1+len(labelPrefix)+len(label)+1+len(context))

	var lengthBytes [2]byte
	binary.BigEndian.PutUint16(lengthBytes[:], uint16(length))
	hkdfLabel = append(hkdfLabel, lengthBytes[:]...)

	fullLabel := labelPrefix + label
	hkdfLabel = append(hkdfLabel, byte(len(fullLabel)))
	hkdfLabel = append(hkdfLabel, fullLabel...)

	hkdfLabel = append(hkdfLabel, byte(len(context)))
	hkdfLabel = append(hkdfLabel, context...)

	out := make([]byte, length)
	reader := hkdf.Expand(newHash, secret, hkdfLabel)
	if _, err := reader.Read(out); err != nil {
		// hkdf.Expand's reader only fails when the requested length
		// exceeds 255*HashLen, which never happens for the fixed-size
		// secrets and keys this endpoint derives.
		panic(err)
	}
	return out
}

// DeriveSecret implements Derive-Secret(Secret, Label, Messages) from
// RFC 8446 §7.1, where transcriptHash is the hash of Messages taken at
// the point of derivation.
func DeriveSecret(newHash func() hash.Hash, secret []byte, label string, transcriptHash []byte) []byte {
	return ExpandLabel(newHash, secret, label, transcriptHash, newHash().Size())
}
