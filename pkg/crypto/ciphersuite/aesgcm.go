// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

type aes128GCMSHA256 struct{}

func (aes128GCMSHA256) ID() ID                  { return TLS_AES_128_GCM_SHA256 }
func (aes128GCMSHA256) HashLen() int            { return sha256.Size }
func (aes128GCMSHA256) KeyLen() int             { return aes128KeyLen }
func (aes128GCMSHA256) IvLen() int              { return gcmIvLen }
func (aes128GCMSHA256) NewHash() hash.Hash      { return sha256.New() }
func (aes128GCMSHA256) AEAD(key []byte) (cipher.AEAD, error) { return newAESGCM(key) }

type aes256GCMSHA384 struct{}

func (aes256GCMSHA384) ID() ID                  { return TLS_AES_256_GCM_SHA384 }
func (aes256GCMSHA384) HashLen() int            { return sha512.Size384 }
func (aes256GCMSHA384) KeyLen() int             { return aes256KeyLen }
func (aes256GCMSHA384) IvLen() int              { return gcmIvLen }
func (aes256GCMSHA384) NewHash() hash.Hash      { return sha512.New384() }
func (aes256GCMSHA384) AEAD(key []byte) (cipher.AEAD, error) { return newAESGCM(key) }

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
