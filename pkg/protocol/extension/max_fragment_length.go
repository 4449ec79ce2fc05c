// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// MaxFragmentLengthCode selects a plaintext fragment size smaller than
// the default 2^14 (RFC 6066 §4), useful on memory-constrained peers.
type MaxFragmentLengthCode uint8

// Codes defined by RFC 6066 §4.
const (
	MaxFragmentLength512  MaxFragmentLengthCode = 1
	MaxFragmentLength1024 MaxFragmentLengthCode = 2
	MaxFragmentLength2048 MaxFragmentLengthCode = 3
	MaxFragmentLength4096 MaxFragmentLengthCode = 4
)

// MaxFragmentLength is the max_fragment_length extension. The client
// sends it when Config.MaxFragmentLength is set. The server's echo in
// EncryptedExtensions is not inspected, and the endpoint's own buffers
// keep the sizes the caller supplied.
type MaxFragmentLength struct {
	Code MaxFragmentLengthCode
}

// Type returns the extension's wire type.
func (m *MaxFragmentLength) Type() Type { return TypeMaxFragmentLength }

// Marshal encodes the single code byte.
func (m *MaxFragmentLength) Marshal() ([]byte, error) {
	return []byte{byte(m.Code)}, nil
}

// Unmarshal decodes the single code byte.
func (m *MaxFragmentLength) Unmarshal(data []byte) error {
	if len(data) != 1 {
		return errInvalidLength
	}
	m.Code = MaxFragmentLengthCode(data[0])
	return nil
}

// Bytes returns the plaintext fragment size the code selects, or 0 if
// the code is not one of the four defined values.
func (c MaxFragmentLengthCode) Bytes() int {
	switch c {
	case MaxFragmentLength512:
		return 512
	case MaxFragmentLength1024:
		return 1024
	case MaxFragmentLength2048:
		return 2048
	case MaxFragmentLength4096:
		return 4096
	default:
		return 0
	}
}
