// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package tls13 implements a TLS 1.3 client endpoint (RFC 8446) suited
// to embedded and other single-threaded hosts: one goroutine drives the
// handshake and record layer in lockstep with a caller-supplied
// Transport, with no internal goroutines, channels, or locks.
package tls13

import (
	"context"
	"errors"

	"github.com/pion/logging"

	"github.com/nanotls/tls13/pkg/crypto/ciphersuite"
	"github.com/nanotls/tls13/pkg/protocol"
	"github.com/nanotls/tls13/pkg/protocol/alert"
	"github.com/nanotls/tls13/pkg/protocol/handshake"
	"github.com/nanotls/tls13/pkg/protocol/recordlayer"
)

// TLSRecordOverhead bounds the worst-case difference between a write's
// plaintext length and the record bytes it produces: a 5-byte header,
// a 1-byte inner content type, and the AEAD's authentication tag, with
// headroom for the larger suites this package offers.
const TLSRecordOverhead = 128

// Conn is a single-threaded TLS 1.3 client endpoint. All of its methods
// must be called from one goroutine; Conn does no internal
// synchronization, trusting the caller's own scheduling the way an
// embedded host's single task loop would.
type Conn struct {
	transport Transport
	config    *Config
	log       logging.LeveledLogger

	readBuf  []byte
	writeBuf []byte
	writePos int

	suite    ciphersuite.Suite
	ks       *ciphersuite.KeySchedule
	verifier Verifier

	state  driverState
	opened bool
	closed bool

	hsBuf     []byte
	decrypted decryptedBuffer
}

// New creates a Conn bound to transport, using readBuf/writeBuf as the
// record-layer scratch space for reads and writes respectively. readBuf
// must hold the largest record the peer sends, which for a full-size
// record is recordlayer.HeaderSize+recordlayer.MaxCiphertextLength bytes.
// writeBuf must be longer than TLSRecordOverhead; Write sizes each record
// to fit the space left in it. Call Open before any Write/Read.
func New(transport Transport, config *Config, readBuf, writeBuf []byte) (*Conn, error) {
	if config == nil {
		config = &Config{}
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if len(writeBuf) <= TLSRecordOverhead {
		return nil, errWriteBufTooSmall
	}

	verifier, err := config.verifier()
	if err != nil {
		return nil, err
	}

	return &Conn{
		transport: transport,
		config:    config,
		log:       config.loggerFactory().NewLogger("tls13"),
		readBuf:   readBuf,
		writeBuf:  writeBuf,
		verifier:  verifier,
	}, nil
}

// Write seals as much of plaintext as fits into one record within the
// remaining space of the internal write buffer, appends the sealed
// record to that buffer, and returns the number of plaintext bytes it
// actually consumed — which may be less than len(plaintext). Callers
// loop until all of their data has been buffered, calling Flush when
// Write returns 0 with no error. Write never blocks on the transport;
// only Flush does.
func (c *Conn) Write(ctx context.Context, plaintext []byte) (int, error) {
	if c.closed {
		return 0, ErrConnClosed
	}
	if !c.opened {
		return 0, newError(MissingHandshake, errHandshakeInProgress)
	}

	avail := len(c.writeBuf) - c.writePos
	if avail <= TLSRecordOverhead {
		return 0, nil
	}

	chunk := avail - TLSRecordOverhead
	if chunk > recordlayer.MaxPlaintextLength {
		chunk = recordlayer.MaxPlaintextLength
	}
	if chunk > len(plaintext) {
		chunk = len(plaintext)
	}
	if chunk == 0 {
		return 0, nil
	}

	sealed, err := recordlayer.SealRecord(c.writeBuf[:c.writePos], &c.ks.Write, protocol.ContentTypeApplicationData, plaintext[:chunk], 0)
	if err != nil {
		return 0, c.failInternal(err)
	}
	c.writePos = len(sealed)
	return chunk, nil
}

// Flush sends every record buffered by Write since the last Flush.
func (c *Conn) Flush(ctx context.Context) error {
	if c.closed {
		return ErrConnClosed
	}
	if err := c.writeAll(ctx, c.writeBuf[:c.writePos]); err != nil {
		return err
	}
	c.writePos = 0
	return nil
}

// Read copies decrypted application data into out, pulling and
// decrypting further records from the transport as needed, and returns
// the number of bytes copied. It transparently consumes and discards
// NewSessionTicket messages; a ChangeCipherSpec record arriving at this
// stage fails the connection with an unexpected_message alert.
func (c *Conn) Read(ctx context.Context, out []byte) (int, error) {
	if c.closed {
		return 0, ErrConnClosed
	}
	if !c.opened {
		return 0, newError(MissingHandshake, errHandshakeInProgress)
	}
	if len(out) == 0 {
		return 0, nil
	}

	if c.decrypted.isEmpty() {
		if err := c.pullApplicationRecord(ctx); err != nil {
			return 0, err
		}
	}
	return c.decrypted.popInto(out), nil
}

// ReadBuffered borrows whatever decrypted application data is currently
// buffered without consuming it or touching the transport. The returned
// ReadBuffer is only valid until the next Read or Close call.
func (c *Conn) ReadBuffered() ReadBuffer {
	return c.decrypted.createReadBuffer()
}

// Close sends a close_notify alert and marks the connection unusable.
// On a Conn whose Open has not completed it only marks the connection
// closed and sends nothing. It is idempotent.
func (c *Conn) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	if !c.opened {
		return nil
	}

	a := &alert.Alert{Level: alert.Warning, Description: alert.CloseNotify}
	body, err := a.Marshal()
	if err != nil {
		return c.failInternal(err)
	}
	record, err := recordlayer.SealRecord(nil, &c.ks.Write, protocol.ContentTypeAlert, body, 0)
	if err != nil {
		return c.failInternal(err)
	}
	return c.writeAll(ctx, record)
}

// pullApplicationRecord reads and opens records from the transport
// until one carries application data, handling any interleaved
// handshake (NewSessionTicket only), ChangeCipherSpec, or Alert content
// along the way.
func (c *Conn) pullApplicationRecord(ctx context.Context) error {
	for {
		hdr, payload, err := recordlayer.ReadRecord(ctx, c.transport, c.readBuf, false)
		if err != nil {
			return c.failRead(err)
		}

		var keys *ciphersuite.TrafficKeys
		if hdr.ContentType == protocol.ContentTypeApplicationData {
			keys = &c.ks.Read
		}
		contentType, content, err := recordlayer.OpenRecord(keys, hdr, payload)
		if err != nil {
			return c.failOpen(err)
		}

		switch contentType {
		case protocol.ContentTypeApplicationData:
			c.decrypted.set(content)
			return nil
		case protocol.ContentTypeHandshake:
			if err := c.handlePostHandshakeMessage(ctx, content); err != nil {
				return err
			}
		case protocol.ContentTypeChangeCipherSpec:
			// Only legal between ClientHello and ApplicationData; this
			// function runs strictly after that window, so any CCS
			// reaching it is a protocol violation.
			return c.fail(ctx, alert.UnexpectedMessage, errUnexpectedRecordContent)
		case protocol.ContentTypeAlert:
			if err := c.handleInboundAlert(content); err != nil {
				return err
			}
		default:
			return c.failDecode(errUnexpectedRecordContent)
		}
	}
}

// handlePostHandshakeMessage accepts only NewSessionTicket on the
// application-data plane, decoding it just far enough to stay in sync
// with the wire before discarding it: session resumption is not
// implemented, so nothing about the ticket is retained.
func (c *Conn) handlePostHandshakeMessage(ctx context.Context, raw []byte) error {
	var hs handshake.Handshake
	if err := hs.Unmarshal(raw); err != nil {
		return c.failDecode(err)
	}
	if _, ok := hs.Message.(*handshake.MessageNewSessionTicket); !ok {
		return c.fail(ctx, alert.UnexpectedMessage, errUnexpectedMessage(hs.Header.Type, handshake.TypeNewSessionTicket))
	}
	return nil
}

func (c *Conn) handleInboundAlert(content []byte) error {
	var a alert.Alert
	if err := a.Unmarshal(content); err != nil {
		return c.failDecode(err)
	}
	if a.Description == alert.CloseNotify {
		c.closed = true
		return newError(ConnectionClosed, ErrConnClosed)
	}
	c.closed = true
	return newError(InternalError, &alertError{alert: &a})
}

// nextHandshakeMessage returns the next complete handshake message,
// pulling and decrypting further records as needed, and feeds each
// record's handshake-plane bytes into c.hsBuf in wire order. Callers
// are responsible for hashing the returned raw bytes into the
// transcript once they know it's appropriate to do so (deferred during
// ServerHello/HelloRetryRequest processing until the suite, and thus
// the transcript hash function, is known).
func (c *Conn) nextHandshakeMessage(ctx context.Context, allowLegacyVersion bool) (*handshake.Handshake, []byte, error) {
	for {
		if len(c.hsBuf) >= handshake.HeaderSize {
			var hdr handshake.Header
			if err := hdr.Unmarshal(c.hsBuf); err == nil {
				total := handshake.HeaderSize + int(hdr.Length)
				if len(c.hsBuf) >= total {
					raw := append([]byte{}, c.hsBuf[:total]...)
					c.hsBuf = c.hsBuf[total:]
					var hs handshake.Handshake
					if err := hs.Unmarshal(raw); err != nil {
						return nil, nil, c.failDecode(err)
					}
					return &hs, raw, nil
				}
			}
		}
		if err := c.pullHandshakeRecord(ctx, allowLegacyVersion); err != nil {
			return nil, nil, err
		}
	}
}

func (c *Conn) pullHandshakeRecord(ctx context.Context, allowLegacyVersion bool) error {
	hdr, payload, err := recordlayer.ReadRecord(ctx, c.transport, c.readBuf, allowLegacyVersion)
	if err != nil {
		return c.failRead(err)
	}

	var keys *ciphersuite.TrafficKeys
	if c.ks != nil && hdr.ContentType == protocol.ContentTypeApplicationData {
		keys = &c.ks.Read
	}
	contentType, content, err := recordlayer.OpenRecord(keys, hdr, payload)
	if err != nil {
		return c.failOpen(err)
	}

	switch contentType {
	case protocol.ContentTypeHandshake:
		c.hsBuf = append(c.hsBuf, content...)
		return nil
	case protocol.ContentTypeChangeCipherSpec:
		var ccs protocol.ChangeCipherSpec
		if err := ccs.Unmarshal(content); err != nil {
			return c.failDecode(err)
		}
		return nil
	case protocol.ContentTypeAlert:
		return c.handleInboundAlert(content)
	default:
		return c.failDecode(errUnexpectedRecordContent)
	}
}

// sendHandshakeRecord seals raw (an already-marshaled Handshake) under
// the current write key, or sends it as plaintext while no handshake
// traffic key is installed yet (the ClientHello, and the ClientHello
// resent after a HelloRetryRequest), and writes it straight to the
// transport: handshake messages are never buffered the way application
// data is.
func (c *Conn) sendHandshakeRecord(ctx context.Context, raw []byte) error {
	var keys *ciphersuite.TrafficKeys
	if c.ks != nil && c.state >= stateServerVerify {
		keys = &c.ks.Write
	}
	record, err := recordlayer.SealRecord(nil, keys, protocol.ContentTypeHandshake, raw, 0)
	if err != nil {
		return c.failInternal(err)
	}
	return c.writeAll(ctx, record)
}

func (c *Conn) writeAll(ctx context.Context, buf []byte) error {
	for len(buf) > 0 {
		n, err := c.transport.Write(ctx, buf)
		if err != nil {
			return c.failIO(err)
		}
		if n == 0 {
			return c.failIO(errZeroByteWrite)
		}
		buf = buf[n:]
	}
	return nil
}

func (c *Conn) failIO(err error) error       { return newError(Io, err) }
func (c *Conn) failDecode(err error) error   { return newError(DecodeError, err) }
func (c *Conn) failCrypto(err error) error   { return newError(CryptoError, err) }
func (c *Conn) failInternal(err error) error { return newError(InternalError, err) }

// failRead classifies an error from recordlayer.ReadRecord: a malformed
// header and an oversize record are both decode-time protocol
// violations distinct from a short/failed transport read.
func (c *Conn) failRead(err error) error {
	switch {
	case errors.Is(err, recordlayer.ErrMalformedHeader):
		return newError(DecodeError, err)
	case errors.Is(err, recordlayer.ErrRecordOverflow):
		return newError(RecordOverflow, err)
	default:
		return newError(Io, err)
	}
}

// failOpen classifies an error from recordlayer.OpenRecord: a missing
// inner content type byte is a decode failure in the already-decrypted
// plaintext, not an AEAD authentication failure.
func (c *Conn) failOpen(err error) error {
	if errors.Is(err, recordlayer.ErrMissingInnerContentType) {
		return newError(DecodeError, err)
	}
	return newError(CryptoError, err)
}

// fail sends desc as a fatal alert, best-effort, and returns the
// *Error a caller should propagate. A failure to send the alert itself
// is swallowed: the connection is already being torn down over the
// error that triggered this call.
func (c *Conn) fail(ctx context.Context, desc alert.Description, cause error) error {
	c.closed = true
	a := &alert.Alert{Level: alert.Fatal, Description: desc}
	if body, err := a.Marshal(); err == nil {
		var keys *ciphersuite.TrafficKeys
		if c.ks != nil && c.state >= stateServerVerify {
			keys = &c.ks.Write
		}
		if record, err := recordlayer.SealRecord(nil, keys, protocol.ContentTypeAlert, body, 0); err == nil {
			_ = c.writeAll(ctx, record)
		}
	}
	return newError(kindForAlert(desc), cause)
}

func kindForAlert(desc alert.Description) Kind {
	switch desc {
	case alert.DecodeError:
		return DecodeError
	case alert.DecryptError, alert.BadRecordMAC, alert.BadCertificate:
		return CryptoError
	case alert.UnexpectedMessage:
		return UnexpectedMessage
	case alert.RecordOverflow:
		return RecordOverflow
	default:
		return InternalError
	}
}
