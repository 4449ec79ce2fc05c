// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tls13

import (
	"crypto/rand"
	"io"
	"net"

	"github.com/pion/logging"

	"github.com/nanotls/tls13/pkg/crypto/ciphersuite"
	"github.com/nanotls/tls13/pkg/crypto/elliptic"
	"github.com/nanotls/tls13/pkg/crypto/signaturehash"
	"github.com/nanotls/tls13/pkg/protocol/extension"
)

var defaultCipherSuites = ciphersuite.DefaultSuites

// Config bundles everything a Conn needs to open a handshake. A zero
// Config offers the built-in cipher suites, curves and signature
// schemes, but New rejects it: server authentication needs either a
// VerifierFactory or InsecureSkipVerify, and this package performs no
// certificate validation of its own.
type Config struct {
	// ServerName is sent in the server_name extension and used to build
	// the Verifier for this connection. An IP address literal is never
	// sent, per RFC 6066 §3.
	ServerName string

	// CipherSuites restricts which TLS 1.3 suites are offered, in
	// preference order. Empty selects every suite this package knows.
	CipherSuites []ciphersuite.ID

	// EllipticCurves restricts which key-exchange groups are offered, in
	// preference order. Empty selects elliptic.DefaultCurves. Only the
	// first entry's share is sent in the initial ClientHello; the rest
	// are named in supported_groups so a HelloRetryRequest can select
	// among them.
	EllipticCurves []elliptic.Curve

	// SignatureSchemes restricts which signature_algorithms are
	// offered. Empty selects signaturehash.DefaultAlgorithms.
	SignatureSchemes []signaturehash.Algorithm

	// MaxFragmentLength, if non-zero, is advertised via the
	// max_fragment_length extension.
	MaxFragmentLength extension.MaxFragmentLengthCode

	// InsecureSkipVerify disables server certificate validation
	// entirely. Using it outside of tests defeats the purpose of TLS.
	InsecureSkipVerify bool

	// VerifierFactory builds the Verifier used to validate the server's
	// certificate chain and CertificateVerify signature. Required
	// unless InsecureSkipVerify is set.
	VerifierFactory VerifierFactory

	// ClientCertificate is presented only if the server sends a
	// CertificateRequest. A nil value results in an empty Certificate
	// response, which is legal for server-authenticated-only handshakes.
	ClientCertificate ClientCertificateSigner

	// Rand supplies randomness for the client random, key shares and
	// the legacy_session_id. Defaults to crypto/rand.Reader.
	Rand io.Reader

	// LoggerFactory builds the Conn's logger in New. Defaults to
	// logging.NewDefaultLoggerFactory(). No handshake or record code
	// writes to that logger.
	LoggerFactory logging.LoggerFactory
}

func (c *Config) cipherSuites() []ciphersuite.ID {
	if len(c.CipherSuites) == 0 {
		return defaultCipherSuites
	}
	return c.CipherSuites
}

func (c *Config) curves() []elliptic.Curve {
	if len(c.EllipticCurves) == 0 {
		return elliptic.DefaultCurves
	}
	return c.EllipticCurves
}

func (c *Config) signatureSchemes() ([]signaturehash.Algorithm, error) {
	return signaturehash.Parse(c.SignatureSchemes)
}

func (c *Config) rand() io.Reader {
	if c.Rand != nil {
		return c.Rand
	}
	return rand.Reader
}

func (c *Config) loggerFactory() logging.LoggerFactory {
	if c.LoggerFactory != nil {
		return c.LoggerFactory
	}
	return logging.NewDefaultLoggerFactory()
}

// serverName returns config.ServerName with IP address literals
// suppressed, since RFC 6066 §3 forbids sending them as an SNI value.
func (c *Config) serverName() string {
	if net.ParseIP(c.ServerName) != nil {
		return ""
	}
	return c.ServerName
}

func (c *Config) verifier() (Verifier, error) {
	if c.InsecureSkipVerify {
		return nil, nil
	}
	if c.VerifierFactory == nil {
		return nil, errNoVerifierFactory
	}
	return c.VerifierFactory(c.serverName()), nil
}

func validateConfig(config *Config) error {
	if len(config.cipherSuites()) == 0 {
		return errNoCipherSuites
	}
	if len(config.curves()) == 0 {
		return errNoEllipticCurves
	}
	return nil
}
