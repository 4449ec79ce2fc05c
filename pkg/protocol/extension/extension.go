// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package extension implements the TLS 1.3 extensions a client endpoint
// sends and parses (RFC 8446 §4.2).
package extension

import "encoding/binary"

// Type is an extension_type value, RFC 8446 §4.2.
type Type uint16

// Extension types this endpoint understands.
const (
	TypeServerName              Type = 0
	TypeMaxFragmentLength       Type = 1
	TypeSupportedGroups         Type = 10
	TypeSignatureAlgorithms     Type = 13
	TypePreSharedKey            Type = 41
	TypePSKKeyExchangeModes     Type = 45
	TypeSignatureAlgorithmsCert Type = 50
	TypeKeyShare                Type = 51
	TypeSupportedVersions       Type = 43
)

// Extension is a single TLS extension, wire-encoded as
// { extension_type(2), length(2), extension_data(length) }.
type Extension interface {
	Type() Type
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Unknown holds the raw body of an extension this endpoint does not
// implement. RFC 8446 §4.2 requires unrecognized, non-critical
// extensions to be ignored rather than rejected.
type Unknown struct {
	ExtensionType Type
	Data          []byte
}

// Type returns the raw extension_type.
func (u *Unknown) Type() Type { return u.ExtensionType }

// Marshal returns the stored body unchanged.
func (u *Unknown) Marshal() ([]byte, error) {
	return append([]byte{}, u.Data...), nil
}

// Unmarshal stores the body unchanged.
func (u *Unknown) Unmarshal(data []byte) error {
	u.Data = append([]byte{}, data...)
	return nil
}

const extensionHeaderSize = 4

// Marshal encodes a list of extensions into an
// extensions<0..2^16-1> vector, including its own 2-byte length prefix.
func Marshal(extensions []Extension) ([]byte, error) {
	var body []byte
	for _, e := range extensions {
		data, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		hdr := make([]byte, extensionHeaderSize)
		binary.BigEndian.PutUint16(hdr[0:2], uint16(e.Type()))
		binary.BigEndian.PutUint16(hdr[2:4], uint16(len(data)))
		body = append(body, hdr...)
		body = append(body, data...)
	}

	out := make([]byte, 2, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(len(body)))
	return append(out, body...), nil
}

// Unmarshal decodes an extensions<0..2^16-1> vector, including its
// 2-byte length prefix, rejecting duplicate extension types as RFC 8446
// §4.2 requires.
func Unmarshal(data []byte) ([]Extension, error) {
	if len(data) < 2 {
		return nil, errBufferTooSmall
	}
	total := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) < total {
		return nil, errBufferTooSmall
	}
	data = data[:total]

	seen := map[Type]bool{}
	var out []Extension
	for len(data) > 0 {
		if len(data) < extensionHeaderSize {
			return nil, errBufferTooSmall
		}
		extType := Type(binary.BigEndian.Uint16(data[0:2]))
		extLen := int(binary.BigEndian.Uint16(data[2:4]))
		data = data[extensionHeaderSize:]
		if len(data) < extLen {
			return nil, errBufferTooSmall
		}
		body := data[:extLen]
		data = data[extLen:]

		if seen[extType] {
			return nil, errDuplicateExtension
		}
		seen[extType] = true

		ext, err := newByType(extType)
		if err != nil {
			return nil, err
		}
		if err := ext.Unmarshal(body); err != nil {
			return nil, err
		}
		out = append(out, ext)
	}
	return out, nil
}

// UnmarshalPrefix decodes an extensions<0..2^16-1> vector that may be
// followed by more data belonging to an enclosing structure (as in a
// Certificate message's per-entry extensions), returning the number of
// bytes consumed alongside the decoded list.
func UnmarshalPrefix(data []byte) ([]Extension, int, error) {
	if len(data) < 2 {
		return nil, 0, errBufferTooSmall
	}
	total := int(binary.BigEndian.Uint16(data[0:2]))
	if len(data) < 2+total {
		return nil, 0, errBufferTooSmall
	}
	extensions, err := Unmarshal(data[:2+total])
	if err != nil {
		return nil, 0, err
	}
	return extensions, 2 + total, nil
}

func newByType(t Type) (Extension, error) {
	switch t {
	case TypeServerName:
		return new(ServerName), nil
	case TypeMaxFragmentLength:
		return &MaxFragmentLength{}, nil
	case TypeSupportedGroups:
		return &SupportedGroups{}, nil
	case TypeSignatureAlgorithms:
		return &SignatureAlgorithms{}, nil
	case TypeSignatureAlgorithmsCert:
		return &SignatureAlgorithmsCert{}, nil
	case TypeKeyShare:
		return &KeyShare{}, nil
	case TypeSupportedVersions:
		return &SupportedVersions{}, nil
	case TypePSKKeyExchangeModes:
		return &PSKKeyExchangeModes{}, nil
	case TypePreSharedKey:
		return &PreSharedKey{}, nil
	default:
		return &Unknown{ExtensionType: t}, nil
	}
}
