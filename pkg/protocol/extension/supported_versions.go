// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

// SupportedVersions carries the client's offered versions as a vector,
// or the server's single selected version, depending on which message
// encloses it (RFC 8446 §4.2.1). A client endpoint only ever offers
// 0x0304, so the ClientHello form always has exactly one entry; that
// makes its wire length (1-byte vector length + 2 bytes) unambiguously
// distinguishable from the server's bare 2-byte selected_version, which
// Unmarshal relies on since both shapes share one extension type.
type SupportedVersions struct {
	Versions []uint16
}

// Type returns the extension's wire type.
func (s *SupportedVersions) Type() Type { return TypeSupportedVersions }

// Marshal encodes the ClientHello vector form with its 1-byte length
// prefix. Servers construct the bare selected_version form directly
// when building a ServerHello/HelloRetryRequest.
func (s *SupportedVersions) Marshal() ([]byte, error) {
	out := make([]byte, 1, 1+2*len(s.Versions))
	out[0] = byte(2 * len(s.Versions))
	for _, v := range s.Versions {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], v)
		out = append(out, b[:]...)
	}
	return out, nil
}

// Unmarshal decodes either shape: a bare 2-byte body is the server's
// selected_version; anything else is the client's versions<> vector.
func (s *SupportedVersions) Unmarshal(data []byte) error {
	if len(data) == 2 {
		s.Versions = []uint16{binary.BigEndian.Uint16(data)}
		return nil
	}
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	data = data[1:]
	if len(data) != n || n%2 != 0 {
		return errInvalidLength
	}
	s.Versions = nil
	for i := 0; i < n; i += 2 {
		s.Versions = append(s.Versions, binary.BigEndian.Uint16(data[i:i+2]))
	}
	return nil
}

// Selected returns the single version a ServerHello selected.
func (s *SupportedVersions) Selected() uint16 {
	if len(s.Versions) != 1 {
		return 0
	}
	return s.Versions[0]
}

// MarshalSelected encodes the bare selected_version form a ServerHello
// or HelloRetryRequest uses in place of the ClientHello vector.
func MarshalSelected(version uint16) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, version)
	return out
}
