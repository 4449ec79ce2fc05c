// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/protocol/extension"
)

// MessageNewSessionTicket carries a resumption ticket (RFC 8446 §4.6.1).
// Session resumption is a declared non-goal, so the driver parses this
// message only to stay in sync with the wire and discards it;
// none of these fields are retained.
type MessageNewSessionTicket struct {
	TicketLifetime uint32
	TicketAgeAdd   uint32
	TicketNonce    []byte
	Ticket         []byte
	Extensions     []extension.Extension
}

// Type returns the handshake message type.
func (m MessageNewSessionTicket) Type() Type { return TypeNewSessionTicket }

// Marshal encodes the message.
func (m *MessageNewSessionTicket) Marshal() ([]byte, error) {
	out := make([]byte, 8)
	binary.BigEndian.PutUint32(out[0:4], m.TicketLifetime)
	binary.BigEndian.PutUint32(out[4:8], m.TicketAgeAdd)

	out = append(out, byte(len(m.TicketNonce)))
	out = append(out, m.TicketNonce...)

	ticketLen := make([]byte, 2)
	binary.BigEndian.PutUint16(ticketLen, uint16(len(m.Ticket)))
	out = append(out, ticketLen...)
	out = append(out, m.Ticket...)

	extBytes, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}
	return append(out, extBytes...), nil
}

// Unmarshal decodes the message.
func (m *MessageNewSessionTicket) Unmarshal(data []byte) error {
	if len(data) < 9 {
		return errBufferTooSmall
	}
	m.TicketLifetime = binary.BigEndian.Uint32(data[0:4])
	m.TicketAgeAdd = binary.BigEndian.Uint32(data[4:8])
	data = data[8:]

	n := int(data[0])
	data = data[1:]
	if len(data) < n {
		return errBufferTooSmall
	}
	m.TicketNonce = append([]byte{}, data[:n]...)
	data = data[n:]

	if len(data) < 2 {
		return errBufferTooSmall
	}
	ticketLen := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) < ticketLen {
		return errBufferTooSmall
	}
	m.Ticket = append([]byte{}, data[:ticketLen]...)
	data = data[ticketLen:]

	extensions, err := extension.Unmarshal(data)
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}
