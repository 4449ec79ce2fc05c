// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/cipher"
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/chacha20poly1305"
)

type chacha20Poly1305SHA256 struct{}

func (chacha20Poly1305SHA256) ID() ID             { return TLS_CHACHA20_POLY1305_SHA256 }
func (chacha20Poly1305SHA256) HashLen() int       { return sha256.Size }
func (chacha20Poly1305SHA256) KeyLen() int        { return chacha20KeyLen }
func (chacha20Poly1305SHA256) IvLen() int         { return chacha20Poly1305Iv }
func (chacha20Poly1305SHA256) NewHash() hash.Hash { return sha256.New() }

func (chacha20Poly1305SHA256) AEAD(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.New(key)
}
