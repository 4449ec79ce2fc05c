// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/crypto/signaturehash"
)

// SignatureAlgorithms advertises the signature schemes the client
// accepts for CertificateVerify (RFC 8446 §4.2.3).
type SignatureAlgorithms struct {
	Algorithms []signaturehash.Algorithm
}

// Type returns the extension's wire type.
func (s *SignatureAlgorithms) Type() Type { return TypeSignatureAlgorithms }

// Marshal encodes the algorithm list with its 2-byte vector length.
func (s *SignatureAlgorithms) Marshal() ([]byte, error) {
	return marshalAlgorithmList(s.Algorithms)
}

// Unmarshal decodes the algorithm list.
func (s *SignatureAlgorithms) Unmarshal(data []byte) error {
	algs, err := unmarshalAlgorithmList(data)
	if err != nil {
		return err
	}
	s.Algorithms = algs
	return nil
}

// SignatureAlgorithmsCert optionally narrows the schemes acceptable
// specifically for certificates, when they differ from the schemes
// used for digital signatures elsewhere in the handshake (RFC 8446
// §4.2.3).
type SignatureAlgorithmsCert struct {
	Algorithms []signaturehash.Algorithm
}

// Type returns the extension's wire type.
func (s *SignatureAlgorithmsCert) Type() Type { return TypeSignatureAlgorithmsCert }

// Marshal encodes the algorithm list with its 2-byte vector length.
func (s *SignatureAlgorithmsCert) Marshal() ([]byte, error) {
	return marshalAlgorithmList(s.Algorithms)
}

// Unmarshal decodes the algorithm list.
func (s *SignatureAlgorithmsCert) Unmarshal(data []byte) error {
	algs, err := unmarshalAlgorithmList(data)
	if err != nil {
		return err
	}
	s.Algorithms = algs
	return nil
}

func marshalAlgorithmList(algs []signaturehash.Algorithm) ([]byte, error) {
	out := make([]byte, 2, 2+2*len(algs))
	binary.BigEndian.PutUint16(out, uint16(2*len(algs)))
	for _, a := range algs {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(a))
		out = append(out, b[:]...)
	}
	return out, nil
}

func unmarshalAlgorithmList(data []byte) ([]signaturehash.Algorithm, error) {
	if len(data) < 2 {
		return nil, errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) != n || n%2 != 0 {
		return nil, errInvalidLength
	}
	var out []signaturehash.Algorithm
	for i := 0; i < n; i += 2 {
		out = append(out, signaturehash.Algorithm(binary.BigEndian.Uint16(data[i:i+2])))
	}
	return out, nil
}
