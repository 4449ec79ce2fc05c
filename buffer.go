// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tls13

// decryptedBuffer tracks the unread tail of the most recently opened
// ApplicationData record. A Go slice already carries the
// offset/length/consumed triple a lower-level language would need to
// spell out explicitly, so this is just a named holder for one: set
// installs a fresh record's content as a zero-copy borrow of the
// caller-supplied read buffer, and popInto/createReadBuffer consume or
// peek at what's left of it.
type decryptedBuffer struct {
	data []byte
}

// isEmpty reports whether every decrypted byte has been consumed.
func (d *decryptedBuffer) isEmpty() bool { return len(d.data) == 0 }

// set installs a freshly decrypted record's content as the unread
// window, discarding whatever was left of the previous one.
func (d *decryptedBuffer) set(content []byte) { d.data = content }

// popInto copies as much of the unread window as fits in out, advances
// past the copied bytes, and returns the number copied.
func (d *decryptedBuffer) popInto(out []byte) int {
	n := copy(out, d.data)
	d.data = d.data[n:]
	return n
}

// ReadBuffer is a zero-copy borrow of the unread tail of a connection's
// decrypted data, valid only until the next Read or Close call on that
// connection.
type ReadBuffer struct {
	data []byte
}

// Bytes returns the borrowed slice.
func (r ReadBuffer) Bytes() []byte { return r.data }

// createReadBuffer borrows the entire unread window without consuming
// it; callers that want to actually advance the cursor still need Read.
func (d *decryptedBuffer) createReadBuffer() ReadBuffer {
	return ReadBuffer{data: d.data}
}
