// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"reflect"
	"testing"
)

func TestHandshakeMessageNewSessionTicketRoundTrip(t *testing.T) {
	in := &MessageNewSessionTicket{
		TicketLifetime: 7200,
		TicketAgeAdd:   0xdeadbeef,
		TicketNonce:    []byte{0x00},
		Ticket:         []byte("opaque-ticket-bytes"),
	}

	raw, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out := &MessageNewSessionTicket{}
	if err := out.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: got %#v, want %#v", out, in)
	}
}
