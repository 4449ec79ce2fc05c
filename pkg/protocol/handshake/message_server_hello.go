// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/zmap/zcrypto/tls"

	"github.com/nanotls/tls13/pkg/protocol/extension"
)

// MessageServerHello is sent in response to a ClientHello when the
// server can agree on a set of parameters. A ServerHello whose Random
// is HelloRetryRequestRandom is actually a HelloRetryRequest asking the
// client to resend ClientHello with different parameters.
//
// https://www.rfc-editor.org/rfc/rfc8446#section-4.1.3
type MessageServerHello struct {
	Random Random

	// LegacySessionIDEcho mirrors the client's legacy_session_id; it
	// carries no meaning of its own.
	LegacySessionIDEcho []byte

	CipherSuiteID uint16

	Extensions []extension.Extension
}

// Type returns the handshake message type.
func (m MessageServerHello) Type() Type { return TypeServerHello }

// IsHelloRetryRequest reports whether this ServerHello is actually a
// HelloRetryRequest.
func (m *MessageServerHello) IsHelloRetryRequest() bool {
	return m.Random.IsHelloRetryRequest()
}

// Marshal encodes the message.
func (m *MessageServerHello) Marshal() ([]byte, error) {
	out := make([]byte, 2, 2+RandomLength)
	binary.BigEndian.PutUint16(out, legacyVersion)
	out = append(out, m.Random[:]...)

	out = append(out, byte(len(m.LegacySessionIDEcho)))
	out = append(out, m.LegacySessionIDEcho...)

	var suite [2]byte
	binary.BigEndian.PutUint16(suite[:], m.CipherSuiteID)
	out = append(out, suite[:]...)

	// legacy_compression_method: always null in TLS 1.3.
	out = append(out, 0x00)

	extBytes, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}
	return append(out, extBytes...), nil
}

// Unmarshal decodes the message.
func (m *MessageServerHello) Unmarshal(data []byte) error {
	if len(data) < 2+RandomLength+1 {
		return errBufferTooSmall
	}
	if binary.BigEndian.Uint16(data[0:2]) != legacyVersion {
		return errDecodeError
	}
	copy(m.Random[:], data[2:2+RandomLength])
	data = data[2+RandomLength:]

	n := int(data[0])
	data = data[1:]
	if len(data) < n {
		return errBufferTooSmall
	}
	m.LegacySessionIDEcho = append([]byte{}, data[:n]...)
	data = data[n:]

	if len(data) < 3 {
		return errBufferTooSmall
	}
	m.CipherSuiteID = binary.BigEndian.Uint16(data[0:2])
	data = data[2:]

	// legacy_compression_method, always 0x00 in TLS 1.3.
	if data[0] != 0x00 {
		return errDecodeError
	}
	data = data[1:]

	extensions, err := extension.Unmarshal(data)
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}

// MakeLog builds a zcrypto/tls log record for scan/audit tooling built
// against this package. zcrypto's ServerHello predates TLS 1.3's
// extension set, so only the fields with a direct TLS 1.3 analogue are
// populated; legacyVersion and the null compression method are fixed by
// RFC 8446 rather than actually negotiated.
func (m *MessageServerHello) MakeLog() *tls.ServerHello {
	ret := &tls.ServerHello{}
	ret.Version = tls.TLSVersion(legacyVersion)

	ret.Random = append([]byte{}, m.Random[:]...)

	ret.SessionID = make([]byte, len(m.LegacySessionIDEcho))
	copy(ret.SessionID, m.LegacySessionIDEcho)

	ret.CipherSuite = tls.CipherSuiteID(m.CipherSuiteID)
	ret.CompressionMethod = 0

	return ret
}
