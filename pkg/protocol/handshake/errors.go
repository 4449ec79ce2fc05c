// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "errors"

var (
	errBufferTooSmall     = errors.New("handshake: buffer too small")
	errLengthOverflow     = errors.New("handshake: length exceeds 24 bits")
	errLengthMismatch     = errors.New("handshake: declared length does not match body")
	errCipherSuiteUnset   = errors.New("handshake: cipher suite ID unset")
	errInvalidMsgType     = errors.New("handshake: header type does not match message")
	errUnsupportedMsgType = errors.New("handshake: unsupported handshake message type")
	errDecodeError        = errors.New("handshake: malformed field")
)
