// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package signaturehash carries the wire identifiers for TLS 1.3
// signature_algorithms (RFC 8446 §4.2.3). Verification itself is left
// to the caller-supplied Verifier capability; this package only knows
// how to name and order the schemes a ClientHello offers.
package signaturehash

import "fmt"

// Algorithm is a SignatureScheme value, RFC 8446 §4.2.3.
type Algorithm uint16

// Algorithms a client endpoint offers by default; DefaultAlgorithms
// gives their preference order.
const (
	ECDSAWithP256AndSHA256 Algorithm = 0x0403
	ECDSAWithP384AndSHA384 Algorithm = 0x0503
	ECDSAWithP521AndSHA512 Algorithm = 0x0603
	Ed25519                Algorithm = 0x0807
	PSSWithSHA256          Algorithm = 0x0804
	PSSWithSHA384          Algorithm = 0x0805
	PSSWithSHA512          Algorithm = 0x0806
	PKCS1WithSHA256        Algorithm = 0x0401
	PKCS1WithSHA384        Algorithm = 0x0501
	PKCS1WithSHA512        Algorithm = 0x0601
)

// DefaultAlgorithms is the preference order offered when a Config does
// not narrow it.
var DefaultAlgorithms = []Algorithm{
	Ed25519,
	ECDSAWithP256AndSHA256,
	PSSWithSHA256,
	PSSWithSHA384,
	PSSWithSHA512,
	ECDSAWithP384AndSHA384,
	ECDSAWithP521AndSHA512,
	PKCS1WithSHA256,
	PKCS1WithSHA384,
	PKCS1WithSHA512,
}

// Parse validates a caller-supplied algorithm preference list, falling
// back to DefaultAlgorithms when none is given.
func Parse(requested []Algorithm) ([]Algorithm, error) {
	if len(requested) == 0 {
		return DefaultAlgorithms, nil
	}
	known := map[Algorithm]bool{}
	for _, a := range DefaultAlgorithms {
		known[a] = true
	}
	for _, a := range requested {
		if !known[a] {
			return nil, fmt.Errorf("signaturehash: unsupported algorithm %#04x", uint16(a))
		}
	}
	return requested, nil
}
