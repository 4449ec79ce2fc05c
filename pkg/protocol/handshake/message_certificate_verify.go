// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/crypto/signaturehash"
)

// MessageCertificateVerify carries a signature over the transcript so
// far, proving possession of the private key for the certificate just
// sent (RFC 8446 §4.4.3).
type MessageCertificateVerify struct {
	Algorithm signaturehash.Algorithm
	Signature []byte
}

// Type returns the handshake message type.
func (m MessageCertificateVerify) Type() Type { return TypeCertificateVerify }

// Marshal encodes the message.
func (m *MessageCertificateVerify) Marshal() ([]byte, error) {
	out := make([]byte, 4, 4+len(m.Signature))
	binary.BigEndian.PutUint16(out[0:2], uint16(m.Algorithm))
	binary.BigEndian.PutUint16(out[2:4], uint16(len(m.Signature)))
	return append(out, m.Signature...), nil
}

// Unmarshal decodes the message.
func (m *MessageCertificateVerify) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return errBufferTooSmall
	}
	m.Algorithm = signaturehash.Algorithm(binary.BigEndian.Uint16(data[0:2]))
	n := int(binary.BigEndian.Uint16(data[2:4]))
	data = data[4:]
	if len(data) != n {
		return errLengthMismatch
	}
	m.Signature = append([]byte{}, data...)
	return nil
}
