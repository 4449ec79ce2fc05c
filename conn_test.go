// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tls13

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/nanotls/tls13/pkg/crypto/ciphersuite"
	"github.com/nanotls/tls13/pkg/crypto/elliptic"
	"github.com/nanotls/tls13/pkg/crypto/signaturehash"
	"github.com/nanotls/tls13/pkg/protocol"
	"github.com/nanotls/tls13/pkg/protocol/extension"
	"github.com/nanotls/tls13/pkg/protocol/handshake"
	"github.com/nanotls/tls13/pkg/protocol/recordlayer"
)

// pipeTransport adapts a net.Conn (from net.Pipe) to the Transport
// capability, ignoring ctx cancellation since net.Pipe has no deadlines
// set in these tests.
type pipeTransport struct{ conn net.Conn }

func (p pipeTransport) Read(_ context.Context, b []byte) (int, error)  { return p.conn.Read(b) }
func (p pipeTransport) Write(_ context.Context, b []byte) (int, error) { return p.conn.Write(b) }

func newTestConn(t *testing.T, transport Transport, writeBufLen int) *Conn {
	t.Helper()
	c, err := New(transport, &Config{InsecureSkipVerify: true}, make([]byte, 18*1024), make([]byte, writeBufLen))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// newApplicationDataPair builds two Conns already past the handshake,
// wired over a net.Pipe, sharing symmetric application traffic keys the
// same way keyschedule_test.go's pair helper does: this exercises the
// record/buffer/façade layer directly without driving a full handshake
// against a fake peer.
func newApplicationDataPair(t *testing.T) (client, peer *Conn, closePipe func()) {
	t.Helper()
	suite, ok := ciphersuite.ByID(ciphersuite.TLS_AES_128_GCM_SHA256)
	if !ok {
		t.Fatal("suite not registered")
	}

	clientKS := ciphersuite.New(suite)
	peerKS := ciphersuite.New(suite)
	transcript := []byte("pretend-full-handshake-transcript")
	clientKS.TranscriptHashUpdate(transcript)
	peerKS.TranscriptHashUpdate(transcript)

	sharedECDHE := bytes.Repeat([]byte{0x11}, 32)
	clientKS.InitializeEarlySecret(nil)
	peerKS.InitializeEarlySecret(nil)
	clientKS.DeriveHandshakeSecret(sharedECDHE)
	peerKS.DeriveHandshakeSecret(sharedECDHE)
	clientKS.DeriveMasterSecret()
	peerKS.DeriveMasterSecret()
	clientKS.RotateApplicationKeys()
	peerKS.RotateApplicationKeys()
	// Both instances just installed Write=clientAppSecret, Read=serverAppSecret,
	// since both derived identical secrets as the same logical side would.
	// Swapping peer's directions makes it the other endpoint of the pair:
	// its Write now matches what client.Read expects, and vice versa.
	peerKS.Write, peerKS.Read = peerKS.Read, peerKS.Write

	a, b := net.Pipe()
	client = newTestConn(t, pipeTransport{a}, 256)
	peer = newTestConn(t, pipeTransport{b}, 256)
	client.ks = clientKS
	peer.ks = peerKS
	client.opened = true
	peer.opened = true
	client.state = stateApplicationData
	peer.state = stateApplicationData

	return client, peer, func() { a.Close(); b.Close() }
}

func TestConnWriteReturnsBytesBufferedNotFullInput(t *testing.T) {
	client, peer, closePipe := newApplicationDataPair(t)
	defer closePipe()
	_ = peer

	small, err := New(client.transport, &Config{InsecureSkipVerify: true}, make([]byte, 4096), make([]byte, 200))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	small.ks = client.ks
	small.opened = true

	plaintext := make([]byte, 1000)
	n, err := small.Write(context.Background(), plaintext)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := 200 - TLSRecordOverhead; n != want {
		t.Errorf("Write() = %d, want %d", n, want)
	}
}

func TestConnWriteFlushReadRoundTrip(t *testing.T) {
	client, peer, closePipe := newApplicationDataPair(t)
	defer closePipe()

	ctx := context.Background()
	payload := []byte("hello from the client side")

	done := make(chan error, 1)
	go func() {
		n, err := client.Write(ctx, payload)
		if err != nil {
			done <- err
			return
		}
		if n != len(payload) {
			done <- errors.New("short write buffered")
			return
		}
		done <- client.Flush(ctx)
	}()

	out := make([]byte, len(payload))
	got := 0
	for got < len(payload) {
		n, err := peer.Read(ctx, out[got:])
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got += n
	}
	if err := <-done; err != nil {
		t.Fatalf("client side: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Errorf("Read() = %q, want %q", out, payload)
	}
}

func TestConnReadSplitAcrossMultipleCalls(t *testing.T) {
	client, peer, closePipe := newApplicationDataPair(t)
	defer closePipe()

	ctx := context.Background()
	payload := bytes.Repeat([]byte{0}, 50)
	for i := range payload {
		payload[i] = byte(i)
	}

	go func() {
		_, _ = client.Write(ctx, payload)
		_ = client.Flush(ctx)
	}()

	var got []byte
	for _, want := range []int{20, 20, 10} {
		buf := make([]byte, want)
		n, err := peer.Read(ctx, buf)
		if err != nil {
			t.Fatalf("Read(%d): %v", want, err)
		}
		if n != want {
			t.Fatalf("Read(%d) = %d", want, n)
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("reassembled = %v, want %v", got, payload)
	}
	if !peer.decrypted.isEmpty() {
		t.Error("decrypted buffer not drained after exact-sized reads")
	}
}

func TestConnReadBufferedPeeksWithoutConsuming(t *testing.T) {
	client, peer, closePipe := newApplicationDataPair(t)
	defer closePipe()

	ctx := context.Background()
	payload := []byte("peek me")
	go func() {
		_, _ = client.Write(ctx, payload)
		_ = client.Flush(ctx)
	}()

	// Force one record to be pulled and buffered.
	first := make([]byte, 1)
	if _, err := peer.Read(ctx, first); err != nil {
		t.Fatalf("Read: %v", err)
	}

	rb := peer.ReadBuffered()
	if string(rb.Bytes()) != string(payload[1:]) {
		t.Errorf("ReadBuffered() = %q, want %q", rb.Bytes(), payload[1:])
	}
	if peer.decrypted.isEmpty() {
		t.Error("ReadBuffered must not consume")
	}
}

func TestConnCloseSendsCloseNotify(t *testing.T) {
	client, peer, closePipe := newApplicationDataPair(t)
	defer closePipe()

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- client.Close(ctx) }()

	buf := make([]byte, 16)
	_, err := peer.Read(ctx, buf)
	if err == nil {
		t.Fatal("Read succeeded after peer sent close_notify")
	}
	var tlsErr *Error
	if !errors.As(err, &tlsErr) || tlsErr.Kind != ConnectionClosed {
		t.Errorf("err = %v, want Kind=ConnectionClosed", err)
	}
	if !errors.Is(err, ErrConnClosed) {
		t.Errorf("errors.Is(err, ErrConnClosed) = false")
	}
	if err := <-done; err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestConnReadRejectsTamperedRecord(t *testing.T) {
	client, peer, closePipe := newApplicationDataPair(t)
	defer closePipe()

	ctx := context.Background()
	done := make(chan error, 1)
	go func() {
		_, err := client.Write(ctx, []byte("tamper target"))
		if err != nil {
			done <- err
			return
		}
		// Flip a byte after sealing but before the peer reads it, by
		// corrupting the write buffer directly; the record has already
		// been sealed into client.writeBuf at this point.
		client.writeBuf[client.writePos-1] ^= 0xFF
		done <- client.Flush(ctx)
	}()

	buf := make([]byte, 32)
	_, err := peer.Read(ctx, buf)
	if err == nil {
		t.Fatal("Read succeeded on a tampered record")
	}
	var tlsErr *Error
	if !errors.As(err, &tlsErr) || tlsErr.Kind != CryptoError {
		t.Errorf("err = %v, want Kind=CryptoError", err)
	}
	<-done
}

func TestBuildClientHelloProducesParseableMessage(t *testing.T) {
	c := newTestConn(t, pipeTransport{}, 512)
	hc := &handshakeContext{
		curves:  []elliptic.Curve{elliptic.DefaultCurves[0]},
		suites:  ciphersuite.DefaultSuites,
		sigAlgs: signaturehash.DefaultAlgorithms,
	}
	hc.offeredGroup = hc.curves[0].Group()

	pub, _, err := hc.curves[0].GenerateKeyPair(nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	raw, err := c.buildClientHello(hc, pub)
	if err != nil {
		t.Fatalf("buildClientHello: %v", err)
	}

	var hs handshake.Handshake
	if err := hs.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	ch, ok := hs.Message.(*handshake.MessageClientHello)
	if !ok {
		t.Fatalf("message type = %T, want *MessageClientHello", hs.Message)
	}
	if len(ch.CipherSuites) != len(ciphersuite.DefaultSuites) {
		t.Errorf("CipherSuites = %v", ch.CipherSuites)
	}

	var sawKeyShare, sawSupportedVersions bool
	for _, ext := range ch.Extensions {
		switch v := ext.(type) {
		case *extension.KeyShare:
			sawKeyShare = true
			if len(v.ClientShares) != 1 || v.ClientShares[0].Group != hc.offeredGroup {
				t.Errorf("key_share = %+v", v)
			}
		case *extension.SupportedVersions:
			sawSupportedVersions = true
			if v.Selected() != uint16(0x0304) {
				t.Errorf("supported_versions = %+v", v)
			}
		}
	}
	if !sawKeyShare || !sawSupportedVersions {
		t.Error("ClientHello missing key_share or supported_versions")
	}
}

func TestSigningInputShape(t *testing.T) {
	hash := bytes.Repeat([]byte{0xAB}, 32)
	input := signingInput(certificateVerifyContextServer, hash)

	for i := 0; i < 64; i++ {
		if input[i] != 0x20 {
			t.Fatalf("byte %d = %#x, want 0x20", i, input[i])
		}
	}
	rest := input[64:]
	if string(rest[:len(certificateVerifyContextServer)]) != certificateVerifyContextServer {
		t.Errorf("context string mismatch")
	}
	rest = rest[len(certificateVerifyContextServer):]
	if rest[0] != 0 {
		t.Errorf("missing zero separator")
	}
	if !bytes.Equal(rest[1:], hash) {
		t.Errorf("transcript hash not appended correctly")
	}
}

func TestExtractHRRGroupAndServerShare(t *testing.T) {
	hrrShare := &extension.KeyShare{Mode: extension.KeyShareHelloRetryRequest, SelectedGroup: elliptic.P256}
	group, err := extractHRRGroup([]extension.Extension{hrrShare})
	if err != nil || group != elliptic.P256 {
		t.Fatalf("extractHRRGroup() = %v, %v", group, err)
	}
	if _, err := extractHRRGroup(nil); err != errMissingKeyShare {
		t.Errorf("extractHRRGroup(nil) = %v, want errMissingKeyShare", err)
	}

	entry := extension.KeyShareEntry{Group: elliptic.X25519, KeyExchange: []byte{1, 2, 3}}
	serverShare := &extension.KeyShare{Mode: extension.KeyShareServerHello, ServerShare: entry}
	got, err := extractServerShare([]extension.Extension{serverShare})
	if err != nil || got.Group != entry.Group || !bytes.Equal(got.KeyExchange, entry.KeyExchange) {
		t.Fatalf("extractServerShare() = %+v, %v", got, err)
	}
}

// The remaining tests drive Conn.Open to completion against an in-test
// fake TLS 1.3 server speaking the real wire protocol over a net.Pipe,
// rather than injecting keys directly: this exercises runHandshake,
// serverVerifyPhase and, for the HelloRetryRequest variant, the retry
// loop in handleHelloRetryRequest.

func readPlaintextHandshakeMessage(ctx context.Context, transport pipeTransport, buf []byte) ([]byte, error) {
	hdr, payload, err := recordlayer.ReadRecord(ctx, transport, buf, false)
	if err != nil {
		return nil, err
	}
	if hdr.ContentType != protocol.ContentTypeHandshake {
		return nil, fmt.Errorf("fake server: content type %v, want handshake", hdr.ContentType)
	}
	return append([]byte{}, payload...), nil
}

func parseClientHello(raw []byte) (*handshake.MessageClientHello, error) {
	var hs handshake.Handshake
	if err := hs.Unmarshal(raw); err != nil {
		return nil, err
	}
	ch, ok := hs.Message.(*handshake.MessageClientHello)
	if !ok {
		return nil, fmt.Errorf("fake server: message type %T, want ClientHello", hs.Message)
	}
	return ch, nil
}

func clientKeyShare(ch *handshake.MessageClientHello) (elliptic.NamedGroup, []byte, error) {
	for _, e := range ch.Extensions {
		if ks, ok := e.(*extension.KeyShare); ok && ks.Mode == extension.KeyShareClientHello && len(ks.ClientShares) > 0 {
			entry := ks.ClientShares[0]
			return entry.Group, entry.KeyExchange, nil
		}
	}
	return 0, nil, errors.New("fake server: ClientHello missing key_share")
}

func buildHelloRetryRequest(ch *handshake.MessageClientHello, group elliptic.NamedGroup) ([]byte, error) {
	hrr := &handshake.MessageServerHello{
		Random:               handshake.HelloRetryRequestRandom,
		LegacySessionIDEcho:  ch.LegacySessionID,
		CipherSuiteID:        ch.CipherSuites[0],
		Extensions: []extension.Extension{
			&extension.SupportedVersions{Versions: []uint16{0x0304}},
			&extension.KeyShare{Mode: extension.KeyShareHelloRetryRequest, SelectedGroup: group},
		},
	}
	return (&handshake.Handshake{Message: hrr}).Marshal()
}

func writeHandshakeRecord(conn net.Conn, keys *ciphersuite.TrafficKeys, raw []byte) error {
	record, err := recordlayer.SealRecord(nil, keys, protocol.ContentTypeHandshake, raw, 0)
	if err != nil {
		return err
	}
	_, err = conn.Write(record)
	return err
}

// runFakeServer plays the server side of exactly one handshake over
// conn. If forceHRRGroup is non-zero, it first sends a
// HelloRetryRequest naming that group before completing the handshake
// with a real ServerHello; otherwise it completes directly. It signals
// errors through its return value rather than t.Fatalf/t.Errorf, since
// it runs on its own goroutine.
func runFakeServer(ctx context.Context, conn net.Conn, forceHRRGroup elliptic.NamedGroup) error {
	transport := pipeTransport{conn}
	buf := make([]byte, 18*1024)

	ch1Raw, err := readPlaintextHandshakeMessage(ctx, transport, buf)
	if err != nil {
		return fmt.Errorf("reading CH1: %w", err)
	}
	ch1, err := parseClientHello(ch1Raw)
	if err != nil {
		return err
	}

	finalRaw, final := ch1Raw, ch1
	var hrrRaw []byte
	if forceHRRGroup != 0 {
		hrrRaw, err = buildHelloRetryRequest(ch1, forceHRRGroup)
		if err != nil {
			return err
		}
		if err := writeHandshakeRecord(conn, nil, hrrRaw); err != nil {
			return fmt.Errorf("writing HelloRetryRequest: %w", err)
		}

		ch2Raw, err := readPlaintextHandshakeMessage(ctx, transport, buf)
		if err != nil {
			return fmt.Errorf("reading CH2: %w", err)
		}
		ch2, err := parseClientHello(ch2Raw)
		if err != nil {
			return err
		}
		finalRaw, final = ch2Raw, ch2
	}

	suite, ok := ciphersuite.ByID(ciphersuite.ID(final.CipherSuites[0]))
	if !ok {
		return fmt.Errorf("unsupported cipher suite %#04x", final.CipherSuites[0])
	}

	group, clientPub, err := clientKeyShare(final)
	if err != nil {
		return err
	}
	curve, ok := elliptic.ByGroup(elliptic.DefaultCurves, group)
	if !ok {
		return fmt.Errorf("unsupported group %#04x", uint16(group))
	}
	serverPub, serverPriv, err := curve.GenerateKeyPair(nil)
	if err != nil {
		return fmt.Errorf("GenerateKeyPair: %w", err)
	}
	shared, err := curve.SharedSecret(serverPriv, clientPub)
	if err != nil {
		return fmt.Errorf("SharedSecret: %w", err)
	}

	ks := ciphersuite.New(suite)
	ks.TranscriptHashUpdate(ch1Raw)
	if forceHRRGroup != 0 {
		ks.ResetTranscriptForHelloRetryRequest()
		ks.TranscriptHashUpdate(hrrRaw)
		ks.TranscriptHashUpdate(finalRaw)
	}

	sh := &handshake.MessageServerHello{
		LegacySessionIDEcho: final.LegacySessionID,
		CipherSuiteID:       final.CipherSuites[0],
		Extensions: []extension.Extension{
			&extension.SupportedVersions{Versions: []uint16{0x0304}},
			&extension.KeyShare{Mode: extension.KeyShareServerHello, ServerShare: extension.KeyShareEntry{Group: group, KeyExchange: serverPub}},
		},
	}
	copy(sh.Random[:], bytes.Repeat([]byte{0x42}, handshake.RandomLength))
	shRaw, err := (&handshake.Handshake{Message: sh}).Marshal()
	if err != nil {
		return err
	}
	if err := writeHandshakeRecord(conn, nil, shRaw); err != nil {
		return fmt.Errorf("writing ServerHello: %w", err)
	}
	ks.TranscriptHashUpdate(shRaw)

	ks.InitializeEarlySecret(nil)
	ks.DeriveHandshakeSecret(shared)
	// DeriveHandshakeSecret installs Write=clientHSSecret, Read=serverHSSecret
	// for whichever side calls it; swapping makes this instance the
	// other endpoint of the pair, matching the client's own directions.
	ks.Write, ks.Read = ks.Read, ks.Write

	ee := &handshake.MessageEncryptedExtensions{}
	eeRaw, err := (&handshake.Handshake{Message: ee}).Marshal()
	if err != nil {
		return err
	}
	if err := writeHandshakeRecord(conn, &ks.Write, eeRaw); err != nil {
		return fmt.Errorf("writing EncryptedExtensions: %w", err)
	}
	ks.TranscriptHashUpdate(eeRaw)

	cert := &handshake.MessageCertificate{}
	certRaw, err := (&handshake.Handshake{Message: cert}).Marshal()
	if err != nil {
		return err
	}
	if err := writeHandshakeRecord(conn, &ks.Write, certRaw); err != nil {
		return fmt.Errorf("writing Certificate: %w", err)
	}
	ks.TranscriptHashUpdate(certRaw)

	// The client is configured with InsecureSkipVerify, so neither the
	// certificate chain's contents nor this signature are ever checked;
	// only the wire shape needs to be valid.
	verify := &handshake.MessageCertificateVerify{
		Algorithm: signaturehash.ECDSAWithP256AndSHA256,
		Signature: bytes.Repeat([]byte{0xAB}, 64),
	}
	verifyRaw, err := (&handshake.Handshake{Message: verify}).Marshal()
	if err != nil {
		return err
	}
	if err := writeHandshakeRecord(conn, &ks.Write, verifyRaw); err != nil {
		return fmt.Errorf("writing CertificateVerify: %w", err)
	}
	ks.TranscriptHashUpdate(verifyRaw)

	finished := &handshake.MessageFinished{VerifyData: ks.CreateServerFinished()}
	finishedRaw, err := (&handshake.Handshake{Message: finished}).Marshal()
	if err != nil {
		return err
	}
	if err := writeHandshakeRecord(conn, &ks.Write, finishedRaw); err != nil {
		return fmt.Errorf("writing server Finished: %w", err)
	}

	// Drain the client's own Finished so its final write doesn't block
	// forever on this synchronous pipe.
	if _, _, err := recordlayer.ReadRecord(ctx, transport, buf, false); err != nil {
		return fmt.Errorf("reading client Finished: %w", err)
	}
	return nil
}

func TestConnOpenBasicHandshake(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ctx := context.Background()
	serverErr := make(chan error, 1)
	go func() { serverErr <- runFakeServer(ctx, b, 0) }()

	client := newTestConn(t, pipeTransport{a}, 4096)
	if err := client.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !client.opened || client.state != stateApplicationData {
		t.Errorf("client left in state %v, opened=%v", client.state, client.opened)
	}
	if err := <-serverErr; err != nil {
		t.Errorf("fake server: %v", err)
	}
}

func TestConnOpenHelloRetryRequest(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ctx := context.Background()
	serverErr := make(chan error, 1)
	go func() { serverErr <- runFakeServer(ctx, b, elliptic.P256) }()

	client := newTestConn(t, pipeTransport{a}, 4096)
	if err := client.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !client.opened || client.state != stateApplicationData {
		t.Errorf("client left in state %v, opened=%v", client.state, client.opened)
	}
	if err := <-serverErr; err != nil {
		t.Errorf("fake server: %v", err)
	}
}
