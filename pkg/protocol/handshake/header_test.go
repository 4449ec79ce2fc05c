// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"reflect"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	in := &Header{Type: TypeFinished, Length: 32}
	raw, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out := &Header{}
	if err := out.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: got %#v, want %#v", out, in)
	}
}

func TestHeaderMarshalRejectsOverlongLength(t *testing.T) {
	h := &Header{Type: TypeCertificate, Length: 1 << 24}
	if _, err := h.Marshal(); err != errLengthOverflow {
		t.Errorf("Marshal() error = %v, want errLengthOverflow", err)
	}
}

func TestRandomIsHelloRetryRequest(t *testing.T) {
	var ordinary Random
	ordinary[0] = 0x01
	if ordinary.IsHelloRetryRequest() {
		t.Error("ordinary random reported as HelloRetryRequest")
	}
	if !HelloRetryRequestRandom.IsHelloRetryRequest() {
		t.Error("HelloRetryRequestRandom not reported as HelloRetryRequest")
	}
}
