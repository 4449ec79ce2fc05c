// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "errors"

var (
	errBufferTooSmall = errors.New("recordlayer: buffer too small")

	// ErrMalformedHeader is returned when the fixed 5-byte header is
	// internally inconsistent (bad legacy_version outside the one
	// exception RFC 8446 carves out for the first ServerHello).
	ErrMalformedHeader = errors.New("recordlayer: malformed record header")

	// ErrRecordOverflow is returned when a record's declared length
	// exceeds the bound for its phase (plaintext vs. protected).
	ErrRecordOverflow = errors.New("recordlayer: record length exceeds maximum")

	// ErrMissingInnerContentType is returned when an opened
	// TLSInnerPlaintext carries no non-zero byte to serve as its real
	// content type (RFC 8446 §5.2 requires at least the type octet).
	ErrMissingInnerContentType = errors.New("recordlayer: inner plaintext has no content type byte")

	errZeroByteRead = errors.New("recordlayer: transport read returned no bytes and no error")
)
