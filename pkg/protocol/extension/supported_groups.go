// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/crypto/elliptic"
)

// SupportedGroups advertises the key-exchange groups the client is
// willing to negotiate (RFC 8446 §4.2.7).
type SupportedGroups struct {
	Groups []elliptic.NamedGroup
}

// Type returns the extension's wire type.
func (s *SupportedGroups) Type() Type { return TypeSupportedGroups }

// Marshal encodes the group list with its 2-byte vector length.
func (s *SupportedGroups) Marshal() ([]byte, error) {
	out := make([]byte, 2, 2+2*len(s.Groups))
	binary.BigEndian.PutUint16(out, uint16(2*len(s.Groups)))
	for _, g := range s.Groups {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(g))
		out = append(out, b[:]...)
	}
	return out, nil
}

// Unmarshal decodes the group list.
func (s *SupportedGroups) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) != n || n%2 != 0 {
		return errInvalidLength
	}
	s.Groups = nil
	for i := 0; i < n; i += 2 {
		s.Groups = append(s.Groups, elliptic.NamedGroup(binary.BigEndian.Uint16(data[i:i+2])))
	}
	return nil
}
