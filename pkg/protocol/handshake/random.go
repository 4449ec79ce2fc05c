// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// RandomLength is the wire size of the random field in ClientHello and
// ServerHello (RFC 8446 §4.1.2, §4.1.3).
const RandomLength = 32

// Random is the 32 opaque bytes carried in ClientHello.random and
// ServerHello.random. Unlike TLS 1.2, RFC 8446 does not split this into
// a Unix timestamp plus 28 random bytes; all 32 bytes are random,
// except that a server selects HelloRetryRequestRandom verbatim to mark
// a ServerHello as a HelloRetryRequest.
type Random [RandomLength]byte

// HelloRetryRequestRandom is the fixed value RFC 8446 §4.1.3 requires a
// server to echo as ServerHello.random when it is actually sending a
// HelloRetryRequest.
var HelloRetryRequestRandom = Random{
	0xCF, 0x21, 0xAD, 0x74, 0xE5, 0x9A, 0x61, 0x11,
	0xBE, 0x1D, 0x8C, 0x02, 0x1E, 0x65, 0xB8, 0x91,
	0xC2, 0xA2, 0x11, 0x16, 0x7A, 0xBB, 0x8C, 0x5E,
	0x07, 0x9E, 0x09, 0xE2, 0xC8, 0xA8, 0x33, 0x9C,
}

// IsHelloRetryRequest reports whether r is the HelloRetryRequest marker.
func (r Random) IsHelloRetryRequest() bool {
	return r == HelloRetryRequestRandom
}
