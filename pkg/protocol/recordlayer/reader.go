// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"context"

	"github.com/nanotls/tls13/pkg/protocol"
)

// ByteReader is the minimal suspendable read the record reader needs
// from the byte-stream transport capability. Read may return fewer than
// len(p) bytes; ReadRecord keeps calling it until the header or payload
// is complete, and treats a read of zero bytes with no error as a
// failure.
type ByteReader interface {
	Read(ctx context.Context, p []byte) (n int, err error)
}

func readFull(ctx context.Context, r ByteReader, buf []byte) error {
	for read := 0; read < len(buf); {
		n, err := r.Read(ctx, buf[read:])
		if n > 0 {
			read += n
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return errZeroByteRead
		}
	}
	return nil
}

// ReadRecord pulls exactly one record from the transport into buf,
// which must be large enough for HeaderSize+MaxCiphertextLength bytes.
// It returns the header and a borrow of buf spanning the record's
// opaque payload. allowLegacyVersion relaxes the legacy_version check
// to also accept 0x0301/0x0302, which RFC 8446 permits only on the very
// first record a client reads (the initial ServerHello).
func ReadRecord(ctx context.Context, r ByteReader, buf []byte, allowLegacyVersion bool) (Header, []byte, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, nil, errBufferTooSmall
	}
	if err := readFull(ctx, r, buf[:HeaderSize]); err != nil {
		return h, nil, err
	}
	if err := h.Unmarshal(buf[:HeaderSize]); err != nil {
		return h, nil, err
	}
	if h.Version != protocol.Version1_2 {
		if !allowLegacyVersion || (h.Version != protocol.Version1_0 && h.Version != protocol.Version1_1) {
			return h, nil, ErrMalformedHeader
		}
	}

	maxLen := MaxCiphertextLength
	if h.ContentType != protocol.ContentTypeApplicationData {
		maxLen = MaxPlaintextLength
	}
	if int(h.Length) > maxLen {
		return h, nil, ErrRecordOverflow
	}
	if len(buf) < HeaderSize+int(h.Length) {
		return h, nil, errBufferTooSmall
	}

	payload := buf[HeaderSize : HeaderSize+int(h.Length)]
	if err := readFull(ctx, r, payload); err != nil {
		return h, nil, err
	}
	return h, payload, nil
}
