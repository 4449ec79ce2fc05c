// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package protocol holds the wire-level constants shared by the record
// layer and the handshake codecs.
package protocol

// Version is the two-byte legacy_record_version / legacy_version field
// carried on the wire. TLS 1.3 freezes this at Version1_2 everywhere
// except the very first ServerHello, which may still echo 0x0301/0x0302
// from old middleboxes.
type Version uint16

// Wire versions seen in TLS 1.3 records and hellos.
const (
	Version1_0 Version = 0x0301
	Version1_1 Version = 0x0302
	Version1_2 Version = 0x0303
	Version1_3 Version = 0x0304
)

// ContentType is the record layer's content_type field.
type ContentType uint8

// Record content types defined by RFC 8446 §5.1.
const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

func (c ContentType) String() string {
	switch c {
	case ContentTypeChangeCipherSpec:
		return "ChangeCipherSpec"
	case ContentTypeAlert:
		return "Alert"
	case ContentTypeHandshake:
		return "Handshake"
	case ContentTypeApplicationData:
		return "ApplicationData"
	default:
		return "Unknown"
	}
}

// ChangeCipherSpec is the single-byte legacy message still sent by
// middlebox-compatible clients; TLS 1.3 peers MUST ignore its content
// but the content type still has to be recognized by the dispatcher.
type ChangeCipherSpec struct{}

// ContentType implements the record content interface.
func (ChangeCipherSpec) ContentType() ContentType { return ContentTypeChangeCipherSpec }

// Marshal encodes the single legacy byte.
func (ChangeCipherSpec) Marshal() ([]byte, error) {
	return []byte{0x01}, nil
}

// Unmarshal validates the single legacy byte.
func (c *ChangeCipherSpec) Unmarshal(data []byte) error {
	if len(data) != 1 || data[0] != 0x01 {
		return errInvalidChangeCipherSpec
	}
	return nil
}

// ApplicationData wraps an opaque application-data payload.
type ApplicationData struct {
	Data []byte
}

// ContentType implements the record content interface.
func (ApplicationData) ContentType() ContentType { return ContentTypeApplicationData }

// Marshal returns the payload unchanged.
func (a *ApplicationData) Marshal() ([]byte, error) {
	return append([]byte{}, a.Data...), nil
}

// Unmarshal stores the payload unchanged.
func (a *ApplicationData) Unmarshal(data []byte) error {
	a.Data = append([]byte{}, data...)
	return nil
}
