// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tls13

import (
	"context"

	"github.com/nanotls/tls13/pkg/crypto/signaturehash"
)

// Transport is the byte-stream capability a Conn drives the handshake
// and record layer over. It is deliberately narrower than net.Conn:
// timeouts, addressing, and connection setup are the caller's concern,
// not this package's. Read and Write may return less than len(p) with a
// nil error, exactly like io.Reader/io.Writer; a Conn never assumes a
// single call drains or fills its buffer.
type Transport interface {
	Read(ctx context.Context, p []byte) (n int, err error)
	Write(ctx context.Context, p []byte) (n int, err error)
}

// Verifier is supplied per-connection (see VerifierFactory) to validate
// the server's identity. AcceptCertificate receives the certificate_list
// from the server's Certificate message, leaf first, each entry still
// DER-encoded. VerifySignature is handed the exact RFC 8446 §4.4.3
// signing input (64 0x20 bytes, the context string, a 0x00 separator,
// and the transcript hash) so implementations never need to know the
// wire-format details of how that input is assembled.
type Verifier interface {
	AcceptCertificate(certificates [][]byte) error
	VerifySignature(signingInput []byte, scheme signaturehash.Algorithm, signature []byte) error
}

// VerifierFactory builds a Verifier scoped to one connection's
// server_name. Config.InsecureSkipVerify bypasses this entirely;
// otherwise a nil factory is itself a configuration error, not a
// silent accept.
type VerifierFactory func(serverName string) Verifier

// ClientCertificateSigner supplies the client's own certificate chain
// and signing capability, used only when the server sends a
// CertificateRequest. A connection configured without one still
// completes a server-authenticated-only handshake by sending an empty
// Certificate message in response, exactly as RFC 8446 §4.4.2 allows.
type ClientCertificateSigner interface {
	// Certificates returns the client's certificate chain, leaf first,
	// each entry DER-encoded.
	Certificates() [][]byte
	// Sign produces a CertificateVerify signature over signingInput
	// (assembled the same way as the server's, with the client context
	// string) and reports which scheme it used.
	Sign(signingInput []byte) (scheme signaturehash.Algorithm, signature []byte, err error)
}
