// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"github.com/nanotls/tls13/pkg/crypto/ciphersuite"
	"github.com/nanotls/tls13/pkg/protocol"
)

// SealRecord encodes one outbound record into dst. If keys is nil, the
// record is emitted as plaintext (for records sent before any handshake
// traffic key is installed); otherwise content is wrapped in a TLSInnerPlaintext
// with realType and zeroPadding bytes of padding, then sealed in place
// under keys, with the sealed record's own header as additional data
// (RFC 8446 §5.2). dst must have spare capacity for the header, the
// inner type byte, the padding, and the AEAD tag.
func SealRecord(dst []byte, keys *ciphersuite.TrafficKeys, realType protocol.ContentType, content []byte, zeroPadding uint) ([]byte, error) {
	if keys == nil {
		hdr := Header{ContentType: realType, Version: protocol.Version1_2, Length: uint16(len(content))}
		hdrBytes, err := hdr.Marshal()
		if err != nil {
			return nil, err
		}
		dst = append(dst, hdrBytes...)
		return append(dst, content...), nil
	}

	inner := InnerPlaintext{Content: content, RealType: realType, Zeros: zeroPadding}
	plaintext := inner.Marshal(nil)

	sealedLen := len(plaintext) + keys.Overhead()
	if sealedLen > MaxCiphertextLength {
		return nil, ErrRecordOverflow
	}

	hdr := Header{ContentType: protocol.ContentTypeApplicationData, Version: protocol.Version1_2, Length: uint16(sealedLen)}
	hdrBytes, err := hdr.Marshal()
	if err != nil {
		return nil, err
	}

	dst = append(dst, hdrBytes...)
	sealed := keys.Seal(dst, plaintext, hdrBytes)
	return sealed, nil
}

// OpenRecord decrypts an inbound record's payload in place. header must
// be the header that was just read alongside payload (it is used,
// re-marshaled, as the AEAD's additional data). If keys is nil, payload
// is returned unchanged with the header's own content type; callers pass
// nil for every record whose outer type is not ApplicationData
// (ServerHello, HelloRetryRequest, ChangeCipherSpec, plaintext alerts).
// On success, it returns the inner content type and the unwrapped
// content (a sub-slice of payload).
func OpenRecord(keys *ciphersuite.TrafficKeys, header Header, payload []byte) (protocol.ContentType, []byte, error) {
	if keys == nil {
		return header.ContentType, payload, nil
	}

	hdrBytes, err := header.Marshal()
	if err != nil {
		return 0, nil, err
	}

	opened, err := keys.Open(payload[:0], payload, hdrBytes)
	if err != nil {
		return 0, nil, err
	}

	var inner InnerPlaintext
	if err := inner.Unmarshal(opened); err != nil {
		return 0, nil, err
	}
	return inner.RealType, inner.Content, nil
}
