// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"reflect"
	"testing"

	"github.com/nanotls/tls13/pkg/protocol/extension"
)

func TestHandshakeMessageServerHelloRoundTrip(t *testing.T) {
	in := &MessageServerHello{
		Random:              Random{0x01, 0x02, 0x03},
		LegacySessionIDEcho: []byte{0xe0, 0xe1, 0xe2},
		CipherSuiteID:       0x1301,
		Extensions: []extension.Extension{
			&extension.Unknown{ExtensionType: extension.TypeSupportedVersions, Data: extension.MarshalSelected(0x0304)},
			&extension.KeyShare{Mode: extension.KeyShareServerHello, ServerShare: extension.KeyShareEntry{
				Group:       0x001d,
				KeyExchange: make([]byte, 32),
			}},
		},
	}

	raw, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out := &MessageServerHello{}
	if err := out.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	// The extension registry decodes type 43 as *SupportedVersions, so the
	// raw Unknown body written above comes back in its parsed form.
	want := *in
	want.Extensions = []extension.Extension{
		&extension.SupportedVersions{Versions: []uint16{0x0304}},
		in.Extensions[1],
	}
	if !reflect.DeepEqual(&want, out) {
		t.Errorf("round trip mismatch: got %#v, want %#v", out, &want)
	}
	if out.IsHelloRetryRequest() {
		t.Error("IsHelloRetryRequest() = true for an ordinary ServerHello")
	}
}

func TestHandshakeMessageServerHelloHelloRetryRequest(t *testing.T) {
	in := &MessageServerHello{
		Random:        HelloRetryRequestRandom,
		CipherSuiteID: 0x1301,
		Extensions: []extension.Extension{
			&extension.KeyShare{Mode: extension.KeyShareHelloRetryRequest, SelectedGroup: 0x0017},
		},
	}

	raw, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out := &MessageServerHello{}
	if err := out.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.IsHelloRetryRequest() {
		t.Error("IsHelloRetryRequest() = false for a HelloRetryRequest")
	}
}

func TestHandshakeMessageServerHelloRejectsBadLegacyVersion(t *testing.T) {
	raw := []byte{0x03, 0x01}
	raw = append(raw, make([]byte, RandomLength)...)
	raw = append(raw, 0x00, 0x13, 0x01, 0x00, 0x00, 0x00)

	out := &MessageServerHello{}
	if err := out.Unmarshal(raw); err != errDecodeError {
		t.Errorf("Unmarshal() error = %v, want errDecodeError", err)
	}
}
