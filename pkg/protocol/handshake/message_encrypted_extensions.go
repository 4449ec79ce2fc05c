// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/nanotls/tls13/pkg/protocol/extension"

// MessageEncryptedExtensions carries the ServerHello extensions that
// don't need to be known before key derivation. It is the first message
// protected under the handshake traffic keys.
//
// https://www.rfc-editor.org/rfc/rfc8446#section-4.3.1
type MessageEncryptedExtensions struct {
	Extensions []extension.Extension
}

// Type returns the handshake message type.
func (m MessageEncryptedExtensions) Type() Type { return TypeEncryptedExtensions }

// Marshal encodes the message.
func (m *MessageEncryptedExtensions) Marshal() ([]byte, error) {
	return extension.Marshal(m.Extensions)
}

// Unmarshal decodes the message.
func (m *MessageEncryptedExtensions) Unmarshal(data []byte) error {
	extensions, err := extension.Unmarshal(data)
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}
