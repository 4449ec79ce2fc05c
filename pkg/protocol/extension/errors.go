// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "errors"

var (
	errBufferTooSmall     = errors.New("extension: buffer too small")
	errDuplicateExtension = errors.New("extension: duplicate extension type")
	errInvalidLength      = errors.New("extension: invalid length field")
)
