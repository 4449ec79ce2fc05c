// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

// PSKKeyExchangeMode is a value from RFC 8446 §4.2.9.
type PSKKeyExchangeMode uint8

// Modes this endpoint can offer.
const (
	PSKModeKE    PSKKeyExchangeMode = 0
	PSKModeDHEKE PSKKeyExchangeMode = 1
)

// PSKKeyExchangeModes is offered whenever pre_shared_key is offered; it
// MUST be present for a server to select a PSK.
type PSKKeyExchangeModes struct {
	Modes []PSKKeyExchangeMode
}

// Type returns the extension's wire type.
func (p *PSKKeyExchangeModes) Type() Type { return TypePSKKeyExchangeModes }

// Marshal encodes the mode list with its 1-byte vector length.
func (p *PSKKeyExchangeModes) Marshal() ([]byte, error) {
	out := make([]byte, 1, 1+len(p.Modes))
	out[0] = byte(len(p.Modes))
	for _, m := range p.Modes {
		out = append(out, byte(m))
	}
	return out, nil
}

// Unmarshal decodes the mode list.
func (p *PSKKeyExchangeModes) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	data = data[1:]
	if len(data) != n {
		return errInvalidLength
	}
	p.Modes = nil
	for _, b := range data {
		p.Modes = append(p.Modes, PSKKeyExchangeMode(b))
	}
	return nil
}

// PSKIdentity is one identity offered in pre_shared_key.
type PSKIdentity struct {
	Identity            []byte
	ObfuscatedTicketAge uint32
}

// PreSharedKey is the pre_shared_key extension (RFC 8446 §4.2.11). This
// endpoint never offers it, since session tickets are not stored; the
// type exists so that a received pre_shared_key extension decodes
// through Unmarshal's registry instead of falling through to Unknown.
type PreSharedKey struct {
	Identities []PSKIdentity
	Binders    [][]byte
}

// Type returns the extension's wire type.
func (p *PreSharedKey) Type() Type { return TypePreSharedKey }

// Marshal encodes identities<> followed by binders<>.
func (p *PreSharedKey) Marshal() ([]byte, error) {
	var idBody []byte
	for _, id := range p.Identities {
		entry := make([]byte, 2+len(id.Identity)+4)
		binary.BigEndian.PutUint16(entry[0:2], uint16(len(id.Identity)))
		copy(entry[2:], id.Identity)
		binary.BigEndian.PutUint32(entry[2+len(id.Identity):], id.ObfuscatedTicketAge)
		idBody = append(idBody, entry...)
	}
	var binderBody []byte
	for _, b := range p.Binders {
		binderBody = append(binderBody, byte(len(b)))
		binderBody = append(binderBody, b...)
	}

	out := make([]byte, 2, 4+len(idBody)+len(binderBody))
	binary.BigEndian.PutUint16(out, uint16(len(idBody)))
	out = append(out, idBody...)
	binderLenPos := len(out)
	out = append(out, 0, 0)
	out = append(out, binderBody...)
	binary.BigEndian.PutUint16(out[binderLenPos:binderLenPos+2], uint16(len(binderBody)))
	return out, nil
}

// Unmarshal decodes identities<> followed by binders<>.
func (p *PreSharedKey) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	idLen := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) < idLen {
		return errBufferTooSmall
	}
	idData := data[:idLen]
	data = data[idLen:]

	p.Identities = nil
	for len(idData) > 0 {
		if len(idData) < 2 {
			return errBufferTooSmall
		}
		n := int(binary.BigEndian.Uint16(idData[0:2]))
		idData = idData[2:]
		if len(idData) < n+4 {
			return errBufferTooSmall
		}
		identity := append([]byte{}, idData[:n]...)
		age := binary.BigEndian.Uint32(idData[n : n+4])
		idData = idData[n+4:]
		p.Identities = append(p.Identities, PSKIdentity{Identity: identity, ObfuscatedTicketAge: age})
	}

	if len(data) < 2 {
		return errBufferTooSmall
	}
	binderLen := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) != binderLen {
		return errInvalidLength
	}
	p.Binders = nil
	for len(data) > 0 {
		n := int(data[0])
		data = data[1:]
		if len(data) < n {
			return errBufferTooSmall
		}
		p.Binders = append(p.Binders, append([]byte{}, data[:n]...))
		data = data[n:]
	}
	return nil
}
