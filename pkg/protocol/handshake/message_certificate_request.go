// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/nanotls/tls13/pkg/protocol/extension"

// MessageCertificateRequest asks the client to authenticate with its
// own certificate. The driver echoes CertificateRequestContext on the
// client's own Certificate message and marks that a ClientCert step is
// owed (RFC 8446 §4.3.2).
type MessageCertificateRequest struct {
	CertificateRequestContext []byte
	Extensions                []extension.Extension
}

// Type returns the handshake message type.
func (m MessageCertificateRequest) Type() Type { return TypeCertificateRequest }

// Marshal encodes the message.
func (m *MessageCertificateRequest) Marshal() ([]byte, error) {
	out := make([]byte, 1, 1+len(m.CertificateRequestContext))
	out[0] = byte(len(m.CertificateRequestContext))
	out = append(out, m.CertificateRequestContext...)

	extBytes, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}
	return append(out, extBytes...), nil
}

// Unmarshal decodes the message.
func (m *MessageCertificateRequest) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	data = data[1:]
	if len(data) < n {
		return errBufferTooSmall
	}
	m.CertificateRequestContext = append([]byte{}, data[:n]...)
	data = data[n:]

	extensions, err := extension.Unmarshal(data)
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}
