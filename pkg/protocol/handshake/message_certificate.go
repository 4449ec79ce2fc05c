// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/nanotls/tls13/pkg/protocol/extension"

// CertificateEntry is one entry in a Certificate message's chain: an
// opaque DER certificate plus any per-certificate extensions (RFC 8446
// §4.4.2). This endpoint passes CertData through to the verifier
// capability unparsed; it does not decode X.509 itself.
type CertificateEntry struct {
	CertData   []byte
	Extensions []extension.Extension
}

func marshalCertificateEntry(e CertificateEntry) ([]byte, error) {
	extBytes, err := extension.Marshal(e.Extensions)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 3, 3+len(e.CertData)+len(extBytes))
	putUint24(out, uint32(len(e.CertData)))
	out = append(out, e.CertData...)
	return append(out, extBytes...), nil
}

func unmarshalCertificateEntry(data []byte) (CertificateEntry, []byte, error) {
	if len(data) < 3 {
		return CertificateEntry{}, nil, errBufferTooSmall
	}
	certLen := int(uint24(data))
	data = data[3:]
	if len(data) < certLen {
		return CertificateEntry{}, nil, errBufferTooSmall
	}
	certData := append([]byte{}, data[:certLen]...)
	data = data[certLen:]

	extensions, n, err := extension.UnmarshalPrefix(data)
	if err != nil {
		return CertificateEntry{}, nil, err
	}
	return CertificateEntry{CertData: certData, Extensions: extensions}, data[n:], nil
}

// MessageCertificate carries the server's (or client's, if requested)
// certificate chain.
//
// https://www.rfc-editor.org/rfc/rfc8446#section-4.4.2
type MessageCertificate struct {
	// CertificateRequestContext echoes the context from a
	// CertificateRequest; empty in a server's Certificate message.
	CertificateRequestContext []byte
	CertificateList           []CertificateEntry
}

// Type returns the handshake message type.
func (m MessageCertificate) Type() Type { return TypeCertificate }

// Marshal encodes the message.
func (m *MessageCertificate) Marshal() ([]byte, error) {
	out := make([]byte, 1, 1+len(m.CertificateRequestContext))
	out[0] = byte(len(m.CertificateRequestContext))
	out = append(out, m.CertificateRequestContext...)

	var body []byte
	for _, e := range m.CertificateList {
		entry, err := marshalCertificateEntry(e)
		if err != nil {
			return nil, err
		}
		body = append(body, entry...)
	}

	listLen := make([]byte, 3)
	putUint24(listLen, uint32(len(body)))
	out = append(out, listLen...)
	return append(out, body...), nil
}

// Unmarshal decodes the message.
func (m *MessageCertificate) Unmarshal(data []byte) error {
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

	if len(data) < 3 {
		return errBufferTooSmall
	}
	listLen := int(uint24(data))
	data = data[3:]
	if len(data) != listLen {
		return errLengthMismatch
	}

	m.CertificateList = nil
	for len(data) > 0 {
		entry, rest, err := unmarshalCertificateEntry(data)
		if err != nil {
			return err
		}
		m.CertificateList = append(m.CertificateList, entry)
		data = rest
	}
	return nil
}

func putUint24(dst []byte, v uint32) {
	dst[0] = byte(v >> 16)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v)
}

func uint24(data []byte) uint32 {
	return uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
}
