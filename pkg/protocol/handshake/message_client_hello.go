// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/protocol/extension"
)

// legacyVersion is the fixed ClientHello/ServerHello version field RFC
// 8446 §4.1.2 requires; actual version negotiation happens entirely
// through the supported_versions extension.
const legacyVersion = 0x0303

// MessageClientHello is the first message a client endpoint sends.
//
// https://www.rfc-editor.org/rfc/rfc8446#section-4.1.2
type MessageClientHello struct {
	Random Random

	// LegacySessionID may carry 32 random bytes purely for middlebox
	// compatibility (RFC 8446 §4.1.2); it has no cryptographic meaning
	// in TLS 1.3.
	LegacySessionID []byte

	CipherSuites []uint16

	Extensions []extension.Extension
}

// Type returns the handshake message type.
func (m MessageClientHello) Type() Type { return TypeClientHello }

// Marshal encodes the message.
func (m *MessageClientHello) Marshal() ([]byte, error) {
	out := make([]byte, 2, 2+RandomLength)
	binary.BigEndian.PutUint16(out, legacyVersion)
	out = append(out, m.Random[:]...)

	out = append(out, byte(len(m.LegacySessionID)))
	out = append(out, m.LegacySessionID...)

	suites := make([]byte, 2, 2+2*len(m.CipherSuites))
	binary.BigEndian.PutUint16(suites, uint16(2*len(m.CipherSuites)))
	for _, s := range m.CipherSuites {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], s)
		suites = append(suites, b[:]...)
	}
	out = append(out, suites...)

	// legacy_compression_methods<1..2^8-1>: exactly the null method.
	out = append(out, 0x01, 0x00)

	extBytes, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}
	return append(out, extBytes...), nil
}

// Unmarshal decodes the message.
func (m *MessageClientHello) Unmarshal(data []byte) error {
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
	m.LegacySessionID = append([]byte{}, data[:n]...)
	data = data[n:]

	if len(data) < 2 {
		return errBufferTooSmall
	}
	suiteBytes := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) < suiteBytes || suiteBytes%2 != 0 {
		return errBufferTooSmall
	}
	m.CipherSuites = nil
	for i := 0; i < suiteBytes; i += 2 {
		m.CipherSuites = append(m.CipherSuites, binary.BigEndian.Uint16(data[i:i+2]))
	}
	data = data[suiteBytes:]

	if len(data) < 2 {
		return errBufferTooSmall
	}
	compLen := int(data[0])
	data = data[1:]
	if len(data) < compLen {
		return errBufferTooSmall
	}
	data = data[compLen:]

	extensions, err := extension.Unmarshal(data)
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}
