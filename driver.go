// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tls13

import (
	"bytes"
	"context"

	"github.com/nanotls/tls13/pkg/crypto/ciphersuite"
	"github.com/nanotls/tls13/pkg/crypto/elliptic"
	"github.com/nanotls/tls13/pkg/crypto/signaturehash"
	"github.com/nanotls/tls13/pkg/protocol"
	"github.com/nanotls/tls13/pkg/protocol/alert"
	"github.com/nanotls/tls13/pkg/protocol/extension"
	"github.com/nanotls/tls13/pkg/protocol/handshake"
)

// driverState tags where the handshake currently stands, purely for
// diagnostics: the transitions themselves are few and closed enough
// that a dispatch table over this type would just be indirection around
// the straight-line sequence runHandshake already is.
type driverState int

// Handshake phases, in the order a client endpoint moves through them.
// stateHelloRetry is transient: it is entered and left within a single
// iteration of runHandshake's ServerHello loop.
const (
	stateClientHello driverState = iota
	stateServerHello
	stateHelloRetry
	stateServerVerify
	stateClientCert
	stateClientFinished
	stateApplicationData
)

func (s driverState) String() string {
	switch s {
	case stateClientHello:
		return "ClientHello"
	case stateServerHello:
		return "ServerHello"
	case stateHelloRetry:
		return "HelloRetry"
	case stateServerVerify:
		return "ServerVerify"
	case stateClientCert:
		return "ClientCert"
	case stateClientFinished:
		return "ClientFinished"
	case stateApplicationData:
		return "ApplicationData"
	default:
		return "Unknown"
	}
}

// handshakeContext carries state that only exists for the duration of
// one handshake: the offered group and its ephemeral private key, which
// extension list was actually offered, and whatever the server asked
// for along the way. None of it survives into steady-state ApplicationData.
type handshakeContext struct {
	curves  []elliptic.Curve
	suites  []ciphersuite.ID
	sigAlgs []signaturehash.Algorithm

	offeredGroup elliptic.NamedGroup
	privateKey   []byte
	helloRetried bool

	ch1Raw []byte

	needClientCert     bool
	certRequestContext []byte
}

// Open drives the full client handshake to completion: ClientHello,
// an optional single HelloRetryRequest round trip, the server's
// EncryptedExtensions/Certificate/CertificateVerify/Finished flight, an
// optional client Certificate/CertificateVerify, and the client
// Finished. On success c.ks holds live application traffic keys in both
// directions and c.state is stateApplicationData. Any handshake failure
// is reported as a *HandshakeError and leaves c unusable; calling Open
// on a Conn that is already open returns errAlreadyOpened.
func (c *Conn) Open(ctx context.Context) error {
	if c.opened {
		return errAlreadyOpened
	}

	hc := &handshakeContext{
		curves: c.config.curves(),
		suites: c.config.cipherSuites(),
	}

	var err error
	if hc.sigAlgs, err = c.config.signatureSchemes(); err != nil {
		return &HandshakeError{Err: err}
	}

	if err := c.runHandshake(ctx, hc); err != nil {
		return &HandshakeError{Err: err}
	}

	c.opened = true
	c.state = stateApplicationData
	return nil
}

func (c *Conn) runHandshake(ctx context.Context, hc *handshakeContext) error {
	c.state = stateClientHello
	if err := c.sendClientHello(ctx, hc); err != nil {
		return err
	}

	c.state = stateServerHello
	for {
		sh, raw, err := c.recvServerHelloShaped(ctx)
		if err != nil {
			return err
		}
		if err := c.negotiateSuite(ctx, hc, sh); err != nil {
			return err
		}

		if sh.IsHelloRetryRequest() {
			if hc.helloRetried {
				return c.fail(ctx, alert.UnexpectedMessage, errRepeatedHelloRetry)
			}
			hc.helloRetried = true
			c.state = stateHelloRetry
			if err := c.handleHelloRetryRequest(ctx, hc, sh, raw); err != nil {
				return err
			}
			c.state = stateServerHello
			continue
		}

		c.ks.TranscriptHashUpdate(raw)
		if err := c.completeServerHello(ctx, hc, sh); err != nil {
			return err
		}
		break
	}

	c.state = stateServerVerify
	if err := c.serverVerifyPhase(ctx, hc); err != nil {
		return err
	}

	if hc.needClientCert {
		c.state = stateClientCert
		if err := c.sendClientCertificate(ctx, hc); err != nil {
			return err
		}
	}

	c.state = stateClientFinished
	return c.sendClientFinished(ctx)
}

// sendClientHello builds and sends CH1, offering exactly one key_share
// (the first configured curve) alongside the full supported_groups list,
// and remembers its raw bytes for the transcript, which cannot be hashed
// until the cipher suite (and thus hash function) is known from the
// server's reply.
func (c *Conn) sendClientHello(ctx context.Context, hc *handshakeContext) error {
	curve := hc.curves[0]
	pub, priv, err := curve.GenerateKeyPair(c.config.rand())
	if err != nil {
		return c.failInternal(err)
	}
	hc.offeredGroup = curve.Group()
	hc.privateKey = priv

	raw, err := c.buildClientHello(hc, pub)
	if err != nil {
		return c.failInternal(err)
	}
	hc.ch1Raw = raw

	return c.sendHandshakeRecord(ctx, raw)
}

func (c *Conn) buildClientHello(hc *handshakeContext, pub []byte) ([]byte, error) {
	random, err := c.randomBytes(handshake.RandomLength)
	if err != nil {
		return nil, err
	}
	var r handshake.Random
	copy(r[:], random)

	sessionID, err := c.randomBytes(32)
	if err != nil {
		return nil, err
	}

	suites := make([]uint16, len(hc.suites))
	for i, id := range hc.suites {
		suites[i] = uint16(id)
	}

	groups := make([]elliptic.NamedGroup, len(hc.curves))
	for i, crv := range hc.curves {
		groups[i] = crv.Group()
	}

	serverName := extension.ServerName(c.config.serverName())
	exts := []extension.Extension{
		&extension.SupportedVersions{Versions: []uint16{uint16(protocol.Version1_3)}},
		&extension.SupportedGroups{Groups: groups},
		&extension.SignatureAlgorithms{Algorithms: hc.sigAlgs},
		&extension.KeyShare{
			Mode:         extension.KeyShareClientHello,
			ClientShares: []extension.KeyShareEntry{{Group: hc.offeredGroup, KeyExchange: pub}},
		},
	}
	if serverName != "" {
		exts = append(exts, &serverName)
	}
	if c.config.MaxFragmentLength != 0 {
		exts = append(exts, &extension.MaxFragmentLength{Code: c.config.MaxFragmentLength})
	}

	ch := &handshake.MessageClientHello{
		Random:          r,
		LegacySessionID: sessionID,
		CipherSuites:    suites,
		Extensions:      exts,
	}
	hs := handshake.Handshake{Message: ch}
	return hs.Marshal()
}

// recvServerHelloShaped reads one plaintext handshake message and
// decodes it as a ServerHello/HelloRetryRequest (the two share a wire
// shape; IsHelloRetryRequest disambiguates). Any other message type at
// this point in the handshake is a protocol violation.
func (c *Conn) recvServerHelloShaped(ctx context.Context) (*handshake.MessageServerHello, []byte, error) {
	hs, raw, err := c.nextHandshakeMessage(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	sh, ok := hs.Message.(*handshake.MessageServerHello)
	if !ok {
		return nil, nil, c.fail(ctx, alert.UnexpectedMessage, errUnexpectedMessage(hs.Header.Type, handshake.TypeServerHello))
	}
	return sh, raw, nil
}

func (c *Conn) negotiateSuite(ctx context.Context, hc *handshakeContext, sh *handshake.MessageServerHello) error {
	if c.ks != nil {
		return nil
	}
	suite, ok := ciphersuite.ByID(ciphersuite.ID(sh.CipherSuiteID))
	if !ok || !containsSuite(hc.suites, ciphersuite.ID(sh.CipherSuiteID)) {
		return c.fail(ctx, alert.HandshakeFailure, errUnsupportedCipherSuite)
	}
	c.suite = suite
	c.ks = ciphersuite.New(suite)
	c.ks.TranscriptHashUpdate(hc.ch1Raw)
	return nil
}

func containsSuite(offered []ciphersuite.ID, id ciphersuite.ID) bool {
	for _, o := range offered {
		if o == id {
			return true
		}
	}
	return false
}

// handleHelloRetryRequest resets the transcript to the synthetic
// message_hash entry RFC 8446 §4.4.1 requires, hashes in the retry
// request, regenerates a key share for whichever single group the
// server selected, and sends the re-offered ClientHello.
func (c *Conn) handleHelloRetryRequest(ctx context.Context, hc *handshakeContext, hrr *handshake.MessageServerHello, raw []byte) error {
	c.ks.ResetTranscriptForHelloRetryRequest()
	c.ks.TranscriptHashUpdate(raw)

	group, err := extractHRRGroup(hrr.Extensions)
	if err != nil {
		return c.fail(ctx, alert.MissingExtension, err)
	}
	curve, ok := elliptic.ByGroup(hc.curves, group)
	if !ok {
		return c.fail(ctx, alert.IllegalParameter, errUnsupportedGroup)
	}

	pub, priv, err := curve.GenerateKeyPair(c.config.rand())
	if err != nil {
		return c.failInternal(err)
	}
	hc.offeredGroup = group
	hc.privateKey = priv

	ch2, err := c.buildClientHello(hc, pub)
	if err != nil {
		return c.failInternal(err)
	}
	c.ks.TranscriptHashUpdate(ch2)
	return c.sendHandshakeRecord(ctx, ch2)
}

func extractHRRGroup(exts []extension.Extension) (elliptic.NamedGroup, error) {
	for _, e := range exts {
		if ks, ok := e.(*extension.KeyShare); ok && ks.Mode == extension.KeyShareHelloRetryRequest {
			return ks.SelectedGroup, nil
		}
	}
	return 0, errMissingKeyShare
}

// completeServerHello extracts the server's key_share and derives the
// handshake traffic secrets, installing both directions' handshake
// traffic keys.
func (c *Conn) completeServerHello(ctx context.Context, hc *handshakeContext, sh *handshake.MessageServerHello) error {
	share, err := extractServerShare(sh.Extensions)
	if err != nil {
		return c.fail(ctx, alert.MissingExtension, err)
	}
	if share.Group != hc.offeredGroup {
		return c.fail(ctx, alert.IllegalParameter, errKeyShareGroupMismatch)
	}

	curve, ok := elliptic.ByGroup(hc.curves, hc.offeredGroup)
	if !ok {
		return c.fail(ctx, alert.InternalError, errUnsupportedGroup)
	}
	shared, err := curve.SharedSecret(hc.privateKey, share.KeyExchange)
	if err != nil {
		return c.fail(ctx, alert.DecryptError, err)
	}

	c.ks.InitializeEarlySecret(nil)
	c.ks.DeriveHandshakeSecret(shared)
	return nil
}

func extractServerShare(exts []extension.Extension) (extension.KeyShareEntry, error) {
	for _, e := range exts {
		if ks, ok := e.(*extension.KeyShare); ok && ks.Mode == extension.KeyShareServerHello {
			return ks.ServerShare, nil
		}
	}
	return extension.KeyShareEntry{}, errMissingKeyShare
}

// serverVerifyPhase reads EncryptedExtensions, an optional
// CertificateRequest, Certificate, CertificateVerify, and Finished, in
// that order, verifying the certificate chain and signature as they
// arrive. On success the read direction is rotated onto the
// application traffic key.
func (c *Conn) serverVerifyPhase(ctx context.Context, hc *handshakeContext) error {
	if err := c.expectMessage(ctx, handshake.TypeEncryptedExtensions); err != nil {
		return err
	}

	hs, raw, err := c.nextHandshakeMessage(ctx, false)
	if err != nil {
		return err
	}

	if cr, ok := hs.Message.(*handshake.MessageCertificateRequest); ok {
		hc.needClientCert = true
		hc.certRequestContext = cr.CertificateRequestContext
		c.ks.TranscriptHashUpdate(raw)
		hs, raw, err = c.nextHandshakeMessage(ctx, false)
		if err != nil {
			return err
		}
	}

	cert, ok := hs.Message.(*handshake.MessageCertificate)
	if !ok {
		return c.fail(ctx, alert.UnexpectedMessage, errUnexpectedMessage(hs.Header.Type, handshake.TypeCertificate))
	}
	if len(cert.CertificateRequestContext) != 0 {
		return c.fail(ctx, alert.IllegalParameter, errNonEmptyContextOnServer)
	}
	if err := c.verifyServerCertificate(ctx, cert); err != nil {
		return err
	}
	c.ks.TranscriptHashUpdate(raw)
	certTranscript := c.ks.TranscriptHashSnapshot()

	hs, raw, err = c.nextHandshakeMessage(ctx, false)
	if err != nil {
		return err
	}
	verify, ok := hs.Message.(*handshake.MessageCertificateVerify)
	if !ok {
		return c.fail(ctx, alert.UnexpectedMessage, errUnexpectedMessage(hs.Header.Type, handshake.TypeCertificateVerify))
	}
	if err := c.verifyServerSignature(ctx, verify, certTranscript); err != nil {
		return err
	}
	c.ks.TranscriptHashUpdate(raw)

	hs, raw, err = c.nextHandshakeMessage(ctx, false)
	if err != nil {
		return err
	}
	finished, ok := hs.Message.(*handshake.MessageFinished)
	if !ok {
		return c.fail(ctx, alert.UnexpectedMessage, errUnexpectedMessage(hs.Header.Type, handshake.TypeFinished))
	}
	if !c.ks.VerifyServerFinished(finished.VerifyData) {
		return c.fail(ctx, alert.DecryptError, errFinishedMismatch)
	}
	c.ks.TranscriptHashUpdate(raw)
	c.ks.DeriveMasterSecret()
	c.ks.RotateReadApplicationKeys()
	return nil
}

func (c *Conn) expectMessage(ctx context.Context, want handshake.Type) error {
	hs, raw, err := c.nextHandshakeMessage(ctx, false)
	if err != nil {
		return err
	}
	if hs.Header.Type != want {
		return c.fail(ctx, alert.UnexpectedMessage, errUnexpectedMessage(hs.Header.Type, want))
	}
	c.ks.TranscriptHashUpdate(raw)
	return nil
}

func (c *Conn) verifyServerCertificate(ctx context.Context, cert *handshake.MessageCertificate) error {
	if c.verifier == nil {
		return nil
	}
	certs := make([][]byte, len(cert.CertificateList))
	for i, entry := range cert.CertificateList {
		certs[i] = entry.CertData
	}
	if err := c.verifier.AcceptCertificate(certs); err != nil {
		return c.fail(ctx, alert.BadCertificate, errCertificateVerifyFailed)
	}
	return nil
}

const certificateVerifyContextServer = "TLS 1.3, server CertificateVerify"

func (c *Conn) verifyServerSignature(ctx context.Context, verify *handshake.MessageCertificateVerify, transcriptHash []byte) error {
	if c.verifier == nil {
		return nil
	}
	input := signingInput(certificateVerifyContextServer, transcriptHash)
	if err := c.verifier.VerifySignature(input, verify.Algorithm, verify.Signature); err != nil {
		return c.fail(ctx, alert.DecryptError, errSignatureVerifyFailed)
	}
	return nil
}

// signingInput assembles the RFC 8446 §4.4.3 CertificateVerify signing
// content: 64 space bytes, the context string, a zero separator, and
// the transcript hash.
func signingInput(label string, transcriptHash []byte) []byte {
	input := bytes.Repeat([]byte{0x20}, 64)
	input = append(input, label...)
	input = append(input, 0)
	input = append(input, transcriptHash...)
	return input
}

// sendClientCertificate answers a CertificateRequest. Without a
// configured ClientCertificate, it sends an empty Certificate message
// and no CertificateVerify, exactly as RFC 8446 §4.4.2 allows for a
// client with no suitable certificate.
func (c *Conn) sendClientCertificate(ctx context.Context, hc *handshakeContext) error {
	cert := &handshake.MessageCertificate{CertificateRequestContext: hc.certRequestContext}
	if c.config.ClientCertificate != nil {
		for _, der := range c.config.ClientCertificate.Certificates() {
			cert.CertificateList = append(cert.CertificateList, handshake.CertificateEntry{CertData: der})
		}
	}

	hs := handshake.Handshake{Message: cert}
	raw, err := hs.Marshal()
	if err != nil {
		return c.failInternal(err)
	}
	c.ks.TranscriptHashUpdate(raw)
	if err := c.sendHandshakeRecord(ctx, raw); err != nil {
		return err
	}

	if c.config.ClientCertificate == nil || len(cert.CertificateList) == 0 {
		return nil
	}

	input := signingInput("TLS 1.3, client CertificateVerify", c.ks.TranscriptHashSnapshot())
	scheme, signature, err := c.config.ClientCertificate.Sign(input)
	if err != nil {
		return c.failInternal(err)
	}
	verify := &handshake.MessageCertificateVerify{Algorithm: scheme, Signature: signature}
	hs = handshake.Handshake{Message: verify}
	raw, err = hs.Marshal()
	if err != nil {
		return c.failInternal(err)
	}
	c.ks.TranscriptHashUpdate(raw)
	return c.sendHandshakeRecord(ctx, raw)
}

// sendClientFinished computes and sends the client Finished under the
// still-active handshake traffic key, then rotates the write direction
// onto the application traffic key. The read direction was already
// rotated in serverVerifyPhase; the two directions deliberately rotate
// at different points in the handshake.
func (c *Conn) sendClientFinished(ctx context.Context) error {
	tag := c.ks.CreateClientFinished()
	finished := &handshake.MessageFinished{VerifyData: tag}
	hs := handshake.Handshake{Message: finished}
	raw, err := hs.Marshal()
	if err != nil {
		return c.failInternal(err)
	}
	c.ks.TranscriptHashUpdate(raw)
	if err := c.sendHandshakeRecord(ctx, raw); err != nil {
		return err
	}
	c.ks.RotateWriteApplicationKeys()
	return nil
}

func (c *Conn) randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := c.config.rand().Read(buf); err != nil {
		return nil, c.failInternal(err)
	}
	return buf, nil
}

func errUnexpectedMessage(got, want handshake.Type) error {
	return &unexpectedMessageError{got: got, want: want}
}

type unexpectedMessageError struct{ got, want handshake.Type }

func (e *unexpectedMessageError) Error() string {
	return "tls13: unexpected handshake message " + e.got.String() + ", want " + e.want.String()
}
