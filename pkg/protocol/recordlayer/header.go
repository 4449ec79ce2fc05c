// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package recordlayer implements TLS 1.3 record framing: the fixed
// 5-byte header (RFC 8446 §5.1) and the TLSInnerPlaintext structure
// AEAD-protected records carry (RFC 8446 §5.2).
package recordlayer

import (
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/protocol"
)

// HeaderSize is the fixed on-wire size of a record header.
const HeaderSize = 5

// MaxPlaintextLength is the largest handshake/alert/CCS plaintext record
// allowed, RFC 8446 §5.1.
const MaxPlaintextLength = 1 << 14

// MaxCiphertextLength is the largest protected record allowed: plaintext
// plus 256 bytes of expansion, which covers the inner content-type byte,
// any padding and the AEAD tag (RFC 8446 §5.2).
const MaxCiphertextLength = MaxPlaintextLength + 256

// Header is the 5-byte record header.
type Header struct {
	ContentType protocol.ContentType
	Version     protocol.Version
	Length      uint16
}

// Marshal encodes the header into a fresh 5-byte slice.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderSize)
	out[0] = byte(h.ContentType)
	binary.BigEndian.PutUint16(out[1:3], uint16(h.Version))
	binary.BigEndian.PutUint16(out[3:5], h.Length)
	return out, nil
}

// MarshalTo encodes the header into the caller-owned buffer, which must
// be at least HeaderSize bytes. No allocation is performed.
func (h *Header) MarshalTo(dst []byte) error {
	if len(dst) < HeaderSize {
		return errBufferTooSmall
	}
	dst[0] = byte(h.ContentType)
	binary.BigEndian.PutUint16(dst[1:3], uint16(h.Version))
	binary.BigEndian.PutUint16(dst[3:5], h.Length)
	return nil
}

// Unmarshal decodes a header from the first HeaderSize bytes of data.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return errBufferTooSmall
	}
	h.ContentType = protocol.ContentType(data[0])
	h.Version = protocol.Version(binary.BigEndian.Uint16(data[1:3]))
	h.Length = binary.BigEndian.Uint16(data[3:5])
	return nil
}
