// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package alert implements the TLS Alert protocol content type (RFC 8446 §6).
package alert

import (
	"fmt"

	"github.com/nanotls/tls13/pkg/protocol"
)

// Level is the alert's severity.
type Level uint8

// Alert levels.
const (
	Warning Level = 1
	Fatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Fatal:
		return "Fatal"
	default:
		return "Invalid"
	}
}

// Description identifies why the alert was raised.
type Description uint8

// Alert descriptions relevant to a TLS 1.3 client, RFC 8446 §6.2.
const (
	CloseNotify            Description = 0
	UnexpectedMessage      Description = 10
	BadRecordMAC           Description = 20
	RecordOverflow         Description = 22
	HandshakeFailure       Description = 40
	BadCertificate         Description = 42
	UnsupportedCertificate Description = 43
	CertificateExpired     Description = 45
	CertificateUnknown     Description = 46
	IllegalParameter       Description = 47
	UnknownCA              Description = 48
	AccessDenied           Description = 49
	DecodeError            Description = 50
	DecryptError           Description = 51
	ProtocolVersion        Description = 70
	InsufficientSecurity   Description = 71
	InternalError          Description = 80
	MissingExtension       Description = 109
	UnrecognizedName       Description = 112
	NoApplicationProtocol  Description = 120
)

func (d Description) String() string {
	switch d {
	case CloseNotify:
		return "CloseNotify"
	case UnexpectedMessage:
		return "UnexpectedMessage"
	case BadRecordMAC:
		return "BadRecordMAC"
	case RecordOverflow:
		return "RecordOverflow"
	case HandshakeFailure:
		return "HandshakeFailure"
	case BadCertificate:
		return "BadCertificate"
	case UnsupportedCertificate:
		return "UnsupportedCertificate"
	case CertificateExpired:
		return "CertificateExpired"
	case CertificateUnknown:
		return "CertificateUnknown"
	case IllegalParameter:
		return "IllegalParameter"
	case UnknownCA:
		return "UnknownCA"
	case AccessDenied:
		return "AccessDenied"
	case DecodeError:
		return "DecodeError"
	case DecryptError:
		return "DecryptError"
	case ProtocolVersion:
		return "ProtocolVersion"
	case InsufficientSecurity:
		return "InsufficientSecurity"
	case InternalError:
		return "InternalError"
	case MissingExtension:
		return "MissingExtension"
	case UnrecognizedName:
		return "UnrecognizedName"
	case NoApplicationProtocol:
		return "NoApplicationProtocol"
	default:
		return "Unknown"
	}
}

// Alert is a TLS Alert protocol message.
type Alert struct {
	Level       Level
	Description Description
}

// ContentType implements the record content interface.
func (Alert) ContentType() protocol.ContentType { return protocol.ContentTypeAlert }

func (a *Alert) String() string {
	return fmt.Sprintf("Alert %s: %s", a.Level, a.Description)
}

// Marshal encodes the two-byte alert body.
func (a *Alert) Marshal() ([]byte, error) {
	return []byte{byte(a.Level), byte(a.Description)}, nil
}

// Unmarshal decodes the two-byte alert body.
func (a *Alert) Unmarshal(data []byte) error {
	if len(data) != 2 {
		return errBufferTooSmall
	}
	a.Level = Level(data[0])
	a.Description = Description(data[1])
	return nil
}

// IsFatalOrCloseNotify reports whether the alert must end the connection,
// either because it is fatal or because it is a graceful CloseNotify.
func (a *Alert) IsFatalOrCloseNotify() bool {
	return a.Level == Fatal || a.Description == CloseNotify
}
