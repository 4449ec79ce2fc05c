// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/zmap/zcrypto/tls"

// MessageFinished closes each side's handshake flight and is sent under
// the handshake traffic keys. Its VerifyData is an HMAC over the current
// transcript hash, keyed by a traffic-secret-derived finished_key;
// recipients MUST verify it matches before trusting the handshake.
//
// https://www.rfc-editor.org/rfc/rfc8446#section-4.4.4
type MessageFinished struct {
	VerifyData []byte
}

// Type returns the Handshake Type
func (m MessageFinished) Type() Type {
	return TypeFinished
}

// Marshal encodes the Handshake
func (m *MessageFinished) Marshal() ([]byte, error) {
	return append([]byte{}, m.VerifyData...), nil
}

// Unmarshal populates the message from encoded data
func (m *MessageFinished) Unmarshal(data []byte) error {
	m.VerifyData = append([]byte{}, data...)
	return nil
}

func (m *MessageFinished) MakeLog() *tls.Finished {
	ret := &tls.Finished{}
	ret.VerifyData = append([]byte{}, m.VerifyData...)
	return ret
}
