// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "github.com/nanotls/tls13/pkg/protocol"

// InnerPlaintext is the structure an AEAD protects: the content, the
// real content type, and zero padding (RFC 8446 §5.2). Zeros is how many
// padding bytes Marshal appends; Unmarshal instead discovers the real
// padding length by scanning backwards for the first non-zero byte.
type InnerPlaintext struct {
	Content  []byte
	RealType protocol.ContentType
	Zeros    uint
}

// Marshal appends the real-type byte and Zeros bytes of padding after
// the content, writing into dst which must have enough spare capacity.
func (p *InnerPlaintext) Marshal(dst []byte) []byte {
	dst = append(dst, p.Content...)
	dst = append(dst, byte(p.RealType))
	for i := uint(0); i < p.Zeros; i++ {
		dst = append(dst, 0)
	}
	return dst
}

// Unmarshal strips trailing zero padding from data and reports the real
// content type carried in the last non-zero byte. An all-zero buffer is
// a decode error: RFC 8446 §5.2 requires at least the type octet.
func (p *InnerPlaintext) Unmarshal(data []byte) error {
	i := len(data) - 1
	for i >= 0 && data[i] == 0 {
		i--
	}
	if i < 0 {
		return ErrMissingInnerContentType
	}
	p.RealType = protocol.ContentType(data[i])
	p.Content = data[:i]
	p.Zeros = uint(len(data) - i - 1)
	return nil
}
