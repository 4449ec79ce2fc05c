// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/cipher"
	"crypto/hmac"
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/crypto/kdf"
)

// Direction distinguishes the two independently keyed traffic
// directions of a connection.
type Direction int

// The two traffic directions.
const (
	DirectionWrite Direction = iota
	DirectionRead
)

// TrafficKeys is one direction's active AEAD, nonce-generating IV, and
// monotonically increasing record sequence counter (RFC 8446 §5.3).
// The counter resets to zero on every call to installTrafficSecret;
// implementations must never reuse a nonce within an epoch.
type TrafficKeys struct {
	aead    cipher.AEAD
	iv      []byte
	counter uint64
}

// Nonce returns iv XOR BE64(counter) without mutating the counter.
func (tk *TrafficKeys) Nonce() []byte {
	nonce := append([]byte{}, tk.iv...)
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], tk.counter)
	off := len(nonce) - 8
	for i := 0; i < 8; i++ {
		nonce[off+i] ^= counterBytes[i]
	}
	return nonce
}

// Seal seals plaintext in place under the current nonce and advances
// the counter. dst and plaintext may overlap exactly as cipher.AEAD.Seal
// allows.
func (tk *TrafficKeys) Seal(dst, plaintext, aad []byte) []byte {
	out := tk.aead.Seal(dst, tk.Nonce(), plaintext, aad)
	tk.counter++
	return out
}

// Open opens ciphertext under the current nonce and advances the
// counter, regardless of success, since a failed open still consumed a
// record from the peer's sequence.
func (tk *TrafficKeys) Open(dst, ciphertext, aad []byte) ([]byte, error) {
	nonce := tk.Nonce()
	tk.counter++
	return tk.aead.Open(dst, nonce, ciphertext, aad)
}

// Overhead returns the AEAD's authentication tag length.
func (tk *TrafficKeys) Overhead() int { return tk.aead.Overhead() }

// KeySchedule implements RFC 8446 §7.1's secret derivation schedule for
// a client endpoint: early secret through master secret, per-direction
// traffic secrets and keys, and the running transcript hash those
// derivations are bound to.
type KeySchedule struct {
	suite Suite
	th    hashState

	earlySecret     []byte
	handshakeSecret []byte
	masterSecret    []byte
	clientHSSecret  []byte
	serverHSSecret  []byte
	clientAppSecret []byte
	serverAppSecret []byte

	Write TrafficKeys
	Read  TrafficKeys
}

// hashState is the minimal incremental-hash surface KeySchedule needs;
// satisfied by hash.Hash.
type hashState interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
	Reset()
}

// New creates a KeySchedule for the given negotiated suite.
func New(suite Suite) *KeySchedule {
	return &KeySchedule{suite: suite, th: suite.NewHash()}
}

// TranscriptHashUpdate feeds additional handshake message bytes into
// the running transcript hash. Callers must do this for every
// handshake message sent or received, in wire order.
func (ks *KeySchedule) TranscriptHashUpdate(data []byte) {
	_, _ = ks.th.Write(data)
}

// TranscriptHashSnapshot returns the transcript hash over all messages
// seen so far without disturbing further accumulation.
func (ks *KeySchedule) TranscriptHashSnapshot() []byte {
	return ks.th.Sum(nil)
}

// ResetTranscriptForHelloRetryRequest implements the special transcript
// reset RFC 8446 §4.4.1 requires after a HelloRetryRequest: the
// original ClientHello is replaced by a synthetic
// message_hash(Hash(CH1)) entry before HRR and CH2 are hashed in.
func (ks *KeySchedule) ResetTranscriptForHelloRetryRequest() {
	ch1Hash := ks.th.Sum(nil)
	ks.th.Reset()
	// message_hash header: { msg_type=254, length=HashLen }.
	ks.th.Write([]byte{254, 0, 0, byte(len(ch1Hash))}) //nolint:errcheck
	ks.th.Write(ch1Hash)                               //nolint:errcheck
}

func (ks *KeySchedule) zeros() []byte {
	return make([]byte, ks.suite.HashLen())
}

// InitializeEarlySecret derives the early secret. psk is nil when no
// external/resumption PSK is in use, in which case Extract(0, 0) is
// used exactly as RFC 8446 §7.1 specifies.
func (ks *KeySchedule) InitializeEarlySecret(psk []byte) {
	if psk == nil {
		psk = ks.zeros()
	}
	ks.earlySecret = kdf.Extract(ks.suite.NewHash, ks.zeros(), psk)
}

// DeriveHandshakeSecret derives the handshake secret and both
// handshake traffic secrets from the ECDHE shared secret and the
// transcript hash at the point ServerHello has just been processed.
func (ks *KeySchedule) DeriveHandshakeSecret(sharedECDHE []byte) {
	derivedEarly := kdf.DeriveSecret(ks.suite.NewHash, ks.earlySecret, "derived", ks.emptyHash())
	ks.handshakeSecret = kdf.Extract(ks.suite.NewHash, derivedEarly, sharedECDHE)

	th := ks.TranscriptHashSnapshot()
	ks.clientHSSecret = kdf.DeriveSecret(ks.suite.NewHash, ks.handshakeSecret, "c hs traffic", th)
	ks.serverHSSecret = kdf.DeriveSecret(ks.suite.NewHash, ks.handshakeSecret, "s hs traffic", th)

	ks.installTrafficSecret(DirectionWrite, ks.clientHSSecret)
	ks.installTrafficSecret(DirectionRead, ks.serverHSSecret)
}

// DeriveMasterSecret derives the master secret and both application
// traffic secrets from the transcript hash at the point the server's
// Finished has just been processed. Traffic keys are not installed
// until RotateApplicationKeys is called, per spec.
func (ks *KeySchedule) DeriveMasterSecret() {
	derivedHS := kdf.DeriveSecret(ks.suite.NewHash, ks.handshakeSecret, "derived", ks.emptyHash())
	ks.masterSecret = kdf.Extract(ks.suite.NewHash, derivedHS, ks.zeros())

	th := ks.TranscriptHashSnapshot()
	ks.clientAppSecret = kdf.DeriveSecret(ks.suite.NewHash, ks.masterSecret, "c ap traffic", th)
	ks.serverAppSecret = kdf.DeriveSecret(ks.suite.NewHash, ks.masterSecret, "s ap traffic", th)
}

// RotateApplicationKeys installs the application traffic secrets in both
// directions at once, resetting both counters. Prefer
// RotateReadApplicationKeys/RotateWriteApplicationKeys for a client
// endpoint, which rotates each direction at its own point in the
// handshake; this combined form remains for callers (and tests) that
// don't need the asymmetry.
func (ks *KeySchedule) RotateApplicationKeys() {
	ks.RotateReadApplicationKeys()
	ks.RotateWriteApplicationKeys()
}

// RotateReadApplicationKeys installs the server application traffic
// secret for the read direction. A client calls this as soon as it has
// verified the server's Finished, before it has necessarily sent its
// own.
func (ks *KeySchedule) RotateReadApplicationKeys() {
	ks.installTrafficSecret(DirectionRead, ks.serverAppSecret)
}

// RotateWriteApplicationKeys installs the client application traffic
// secret for the write direction. A client calls this after sending its
// own Finished under the handshake traffic key.
func (ks *KeySchedule) RotateWriteApplicationKeys() {
	ks.installTrafficSecret(DirectionWrite, ks.clientAppSecret)
}

func (ks *KeySchedule) installTrafficSecret(dir Direction, secret []byte) {
	key := kdf.ExpandLabel(ks.suite.NewHash, secret, "key", nil, ks.suite.KeyLen())
	iv := kdf.ExpandLabel(ks.suite.NewHash, secret, "iv", nil, ks.suite.IvLen())
	aead, err := ks.suite.AEAD(key)
	if err != nil {
		// Only reachable if a Suite implementation reports a KeyLen its
		// own AEAD constructor rejects, which would be a programming
		// error in this package, not a runtime condition callers handle.
		panic(err)
	}

	tk := TrafficKeys{aead: aead, iv: iv}
	switch dir {
	case DirectionWrite:
		ks.Write = tk
	case DirectionRead:
		ks.Read = tk
	}
}

// finishedKey derives finished_key = HKDF-Expand-Label(BaseKey,
// "finished", "", Hash.length) per RFC 8446 §4.4.4.
func (ks *KeySchedule) finishedKey(baseKey []byte) []byte {
	return kdf.ExpandLabel(ks.suite.NewHash, baseKey, "finished", nil, ks.suite.HashLen())
}

// CreateClientFinished computes the client Finished's VerifyData over
// the current transcript hash, using the client handshake secret as
// BaseKey.
func (ks *KeySchedule) CreateClientFinished() []byte {
	return ks.finishedMAC(ks.clientHSSecret, ks.TranscriptHashSnapshot())
}

// CreateServerFinished computes the server Finished's VerifyData over
// the current transcript hash, using the server handshake secret as
// BaseKey. A client endpoint never calls this itself; it exists so a
// KeySchedule can stand in for either side of a handshake, e.g. a test
// double playing the server half of a loopback connection.
func (ks *KeySchedule) CreateServerFinished() []byte {
	return ks.finishedMAC(ks.serverHSSecret, ks.TranscriptHashSnapshot())
}

// VerifyServerFinished reports whether tag matches the expected
// server Finished VerifyData over the current transcript hash.
func (ks *KeySchedule) VerifyServerFinished(tag []byte) bool {
	expected := ks.finishedMAC(ks.serverHSSecret, ks.TranscriptHashSnapshot())
	return hmac.Equal(expected, tag)
}

func (ks *KeySchedule) finishedMAC(baseKey, transcriptHash []byte) []byte {
	mac := hmac.New(ks.suite.NewHash, ks.finishedKey(baseKey))
	mac.Write(transcriptHash) //nolint:errcheck
	return mac.Sum(nil)
}

// emptyHash returns Hash("") as RFC 8446 §7.1's Derive-Secret(Secret,
// Label, "") transitions require.
func (ks *KeySchedule) emptyHash() []byte {
	h := ks.suite.NewHash()
	return h.Sum(nil)
}
