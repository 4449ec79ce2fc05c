// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tls13

import (
	"errors"
	"fmt"

	"github.com/nanotls/tls13/pkg/protocol/alert"
)

// Kind classifies why a CORE operation failed, independent of the
// underlying Go error chain wrapped alongside it.
type Kind int

// Error kinds a connection can fail with.
const (
	Io Kind = iota
	MissingHandshake
	DecodeError
	RecordOverflow
	CryptoError
	UnexpectedMessage
	ConnectionClosed
	InternalError
)

func (k Kind) String() string {
	switch k {
	case Io:
		return "io error"
	case MissingHandshake:
		return "handshake not completed"
	case DecodeError:
		return "decode error"
	case RecordOverflow:
		return "record overflow"
	case CryptoError:
		return "crypto error"
	case UnexpectedMessage:
		return "unexpected message"
	case ConnectionClosed:
		return "connection closed"
	case InternalError:
		return "internal error"
	default:
		return "unknown error kind"
	}
}

// Error is returned by connection operations that fail for a protocol
// reason rather than a plain sentinel. Callers that need to branch on
// the failure category should use errors.As against *Error and switch on
// Kind; callers that just need to log or propagate can rely on Error().
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tls13: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("tls13: %s", e.Kind)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error { return &Error{Kind: kind, Err: err} }

// Sentinel conditions a caller tests with errors.Is, mirroring the
// teacher's mix of sentinel vars alongside richer error structs.
var (
	// ErrConnClosed is returned by operations attempted after Close.
	ErrConnClosed = errors.New("tls13: connection closed")

	errHandshakeInProgress = errors.New("tls13: open has not completed")
	errAlreadyOpened       = errors.New("tls13: connection already opened")
	errWriteBufTooSmall    = errors.New("tls13: write buffer must be larger than TLS_RECORD_OVERHEAD")
	errZeroByteWrite       = errors.New("tls13: transport write returned no bytes and no error")
	errNoVerifierFactory   = errors.New("tls13: VerifierFactory is required unless InsecureSkipVerify is set")
	errNoCipherSuites      = errors.New("tls13: no cipher suites offered")
	errNoEllipticCurves    = errors.New("tls13: no elliptic curves offered")

	errUnsupportedCipherSuite  = errors.New("tls13: server selected an unoffered cipher suite")
	errUnsupportedGroup        = errors.New("tls13: server requested an unoffered key-exchange group")
	errRepeatedHelloRetry      = errors.New("tls13: server sent a second HelloRetryRequest")
	errMissingKeyShare         = errors.New("tls13: server_hello carries no key_share extension")
	errKeyShareGroupMismatch   = errors.New("tls13: server_hello key_share group does not match the offered group")
	errUnexpectedRecordContent = errors.New("tls13: record content type not legal in this phase")
	errCertificateVerifyFailed = errors.New("tls13: certificate chain rejected by verifier")
	errSignatureVerifyFailed   = errors.New("tls13: CertificateVerify signature rejected by verifier")
	errFinishedMismatch        = errors.New("tls13: Finished verify_data mismatch")
	errNonEmptyContextOnServer = errors.New("tls13: server Certificate carries a non-empty certificate_request_context")
)

// HandshakeError wraps any error that aborted open(), mirroring the
// teacher's HandshakeError of the same name: a failed handshake leaves
// the connection unusable, so callers must discard it and start over.
type HandshakeError struct{ Err error }

func (e *HandshakeError) Error() string { return fmt.Sprintf("tls13: handshake failed: %v", e.Err) }
func (e *HandshakeError) Unwrap() error { return e.Err }

// alertError is the vehicle for a received TLS alert, exactly mirroring
// the teacher's type of the same name.
type alertError struct {
	alert *alert.Alert
}

func (e *alertError) Error() string { return e.alert.String() }

// IsFatalOrCloseNotify reports whether e must end the connection.
func (e *alertError) IsFatalOrCloseNotify() bool { return e.alert.IsFatalOrCloseNotify() }
