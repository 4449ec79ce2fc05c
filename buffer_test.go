// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tls13

import "testing"

func TestDecryptedBufferPopIntoPartial(t *testing.T) {
	var d decryptedBuffer
	d.set([]byte("hello world"))

	out := make([]byte, 5)
	n := d.popInto(out)
	if n != 5 || string(out) != "hello" {
		t.Fatalf("popInto = %d, %q", n, out)
	}
	if d.isEmpty() {
		t.Fatal("buffer reported empty with 6 bytes remaining")
	}

	out2 := make([]byte, 20)
	n2 := d.popInto(out2)
	if n2 != 6 || string(out2[:n2]) != " world" {
		t.Fatalf("popInto = %d, %q", n2, out2[:n2])
	}
	if !d.isEmpty() {
		t.Fatal("buffer reported non-empty after draining")
	}
}

func TestDecryptedBufferSetReplacesPreviousWindow(t *testing.T) {
	var d decryptedBuffer
	d.set([]byte("first"))
	d.set([]byte("econd"))

	if got := string(d.createReadBuffer().Bytes()); got != "econd" {
		t.Fatalf("createReadBuffer() = %q, want %q", got, "econd")
	}
}

func TestDecryptedBufferCreateReadBufferDoesNotConsume(t *testing.T) {
	var d decryptedBuffer
	d.set([]byte("abc"))

	rb := d.createReadBuffer()
	if string(rb.Bytes()) != "abc" {
		t.Fatalf("createReadBuffer() = %q", rb.Bytes())
	}
	if d.isEmpty() {
		t.Fatal("createReadBuffer must not consume")
	}
}
