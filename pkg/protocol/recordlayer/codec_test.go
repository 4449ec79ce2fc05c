// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"bytes"
	"testing"

	"github.com/nanotls/tls13/pkg/crypto/ciphersuite"
	"github.com/nanotls/tls13/pkg/protocol"
)

func newKeyPair(t *testing.T) (client, server *ciphersuite.KeySchedule) {
	t.Helper()
	suite, ok := ciphersuite.ByID(ciphersuite.TLS_AES_128_GCM_SHA256)
	if !ok {
		t.Fatal("suite not registered")
	}
	client = ciphersuite.New(suite)
	server = ciphersuite.New(suite)
	client.TranscriptHashUpdate([]byte("ch"))
	server.TranscriptHashUpdate([]byte("ch"))
	client.InitializeEarlySecret(nil)
	server.InitializeEarlySecret(nil)
	client.DeriveHandshakeSecret(bytes.Repeat([]byte{0x09}, 32))
	server.DeriveHandshakeSecret(bytes.Repeat([]byte{0x09}, 32))
	// Both instances hold Write=client secret, Read=server secret; swap
	// the server's directions so it is the other endpoint of the pair.
	server.Write, server.Read = server.Read, server.Write
	return client, server
}

func TestSealOpenRecordRoundTrip(t *testing.T) {
	client, server := newKeyPair(t)

	record, err := SealRecord(nil, &client.Write, protocol.ContentTypeHandshake, []byte("finished message bytes"), 0)
	if err != nil {
		t.Fatalf("SealRecord: %v", err)
	}

	var hdr Header
	if err := hdr.Unmarshal(record[:HeaderSize]); err != nil {
		t.Fatalf("Unmarshal header: %v", err)
	}
	payload := record[HeaderSize:]

	contentType, content, err := OpenRecord(&server.Read, hdr, payload)
	if err != nil {
		t.Fatalf("OpenRecord: %v", err)
	}
	if contentType != protocol.ContentTypeHandshake {
		t.Errorf("contentType = %v, want Handshake", contentType)
	}
	if string(content) != "finished message bytes" {
		t.Errorf("content = %q", content)
	}
}

func TestSealRecordPlaintextWhenNoKeys(t *testing.T) {
	record, err := SealRecord(nil, nil, protocol.ContentTypeHandshake, []byte("client hello bytes"), 0)
	if err != nil {
		t.Fatalf("SealRecord: %v", err)
	}

	var hdr Header
	if err := hdr.Unmarshal(record[:HeaderSize]); err != nil {
		t.Fatalf("Unmarshal header: %v", err)
	}
	if hdr.ContentType != protocol.ContentTypeHandshake {
		t.Errorf("ContentType = %v, want Handshake", hdr.ContentType)
	}
	if string(record[HeaderSize:]) != "client hello bytes" {
		t.Errorf("payload = %q", record[HeaderSize:])
	}
}

func TestOpenRecordRejectsTamperedCiphertext(t *testing.T) {
	client, server := newKeyPair(t)

	record, err := SealRecord(nil, &client.Write, protocol.ContentTypeApplicationData, []byte("hello"), 0)
	if err != nil {
		t.Fatalf("SealRecord: %v", err)
	}
	record[len(record)-1] ^= 0xFF

	var hdr Header
	if err := hdr.Unmarshal(record[:HeaderSize]); err != nil {
		t.Fatalf("Unmarshal header: %v", err)
	}

	if _, _, err := OpenRecord(&server.Read, hdr, record[HeaderSize:]); err == nil {
		t.Error("OpenRecord succeeded on a tampered record")
	}
}

func TestSealRecordSizeBound(t *testing.T) {
	client, _ := newKeyPair(t)

	plaintext := make([]byte, 1000)
	record, err := SealRecord(nil, &client.Write, protocol.ContentTypeApplicationData, plaintext, 0)
	if err != nil {
		t.Fatalf("SealRecord: %v", err)
	}

	overhead := len(record) - len(plaintext)
	const tlsRecordOverhead = 128
	if overhead > tlsRecordOverhead {
		t.Errorf("overhead = %d, want <= %d", overhead, tlsRecordOverhead)
	}
}
