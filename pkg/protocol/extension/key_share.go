// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import (
	"encoding/binary"

	"github.com/nanotls/tls13/pkg/crypto/elliptic"
)

// KeyShareEntry is one (group, key_exchange) pair, RFC 8446 §4.2.8.
type KeyShareEntry struct {
	Group       elliptic.NamedGroup
	KeyExchange []byte
}

// KeyShareMode distinguishes the three shapes the key_share extension
// takes depending on which handshake message carries it.
type KeyShareMode uint8

// Modes the key_share extension can be marshaled/parsed as.
const (
	KeyShareClientHello KeyShareMode = iota
	KeyShareServerHello
	KeyShareHelloRetryRequest
)

// KeyShare carries ECDHE public keys. A ClientHello carries a list of
// offered shares; a ServerHello carries exactly one selected share; a
// HelloRetryRequest carries only the NamedGroup it wants resent.
type KeyShare struct {
	Mode          KeyShareMode
	ClientShares  []KeyShareEntry
	ServerShare   KeyShareEntry
	SelectedGroup elliptic.NamedGroup
}

// Type returns the extension's wire type.
func (k *KeyShare) Type() Type { return TypeKeyShare }

// Marshal encodes according to k.Mode.
func (k *KeyShare) Marshal() ([]byte, error) {
	switch k.Mode {
	case KeyShareHelloRetryRequest:
		out := make([]byte, 2)
		binary.BigEndian.PutUint16(out, uint16(k.SelectedGroup))
		return out, nil
	case KeyShareServerHello:
		return marshalEntry(k.ServerShare), nil
	default:
		var body []byte
		for _, e := range k.ClientShares {
			body = append(body, marshalEntry(e)...)
		}
		out := make([]byte, 2, 2+len(body))
		binary.BigEndian.PutUint16(out, uint16(len(body)))
		return append(out, body...), nil
	}
}

func marshalEntry(e KeyShareEntry) []byte {
	out := make([]byte, 4, 4+len(e.KeyExchange))
	binary.BigEndian.PutUint16(out[0:2], uint16(e.Group))
	binary.BigEndian.PutUint16(out[2:4], uint16(len(e.KeyExchange)))
	return append(out, e.KeyExchange...)
}

// Unmarshal disambiguates the three wire shapes by length: an exact
// 2-byte body is a HelloRetryRequest's selected group; a body that is
// exactly one (group, key) entry with no outer vector is a ServerHello
// share; anything else is a ClientHello's client_shares<> vector.
func (k *KeyShare) Unmarshal(data []byte) error {
	if len(data) == 2 {
		k.Mode = KeyShareHelloRetryRequest
		k.SelectedGroup = elliptic.NamedGroup(binary.BigEndian.Uint16(data))
		return nil
	}

	if entry, ok, err := tryParseSingleEntry(data); err != nil {
		return err
	} else if ok {
		k.Mode = KeyShareServerHello
		k.ServerShare = entry
		return nil
	}

	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) != n {
		return errInvalidLength
	}
	k.Mode = KeyShareClientHello
	k.ClientShares = nil
	for len(data) > 0 {
		entry, rest, err := parseEntry(data)
		if err != nil {
			return err
		}
		k.ClientShares = append(k.ClientShares, entry)
		data = rest
	}
	return nil
}

func tryParseSingleEntry(data []byte) (KeyShareEntry, bool, error) {
	entry, rest, err := parseEntry(data)
	if err != nil {
		return KeyShareEntry{}, false, nil //nolint:nilerr // fall through to client_shares parse
	}
	return entry, len(rest) == 0, nil
}

func parseEntry(data []byte) (KeyShareEntry, []byte, error) {
	if len(data) < 4 {
		return KeyShareEntry{}, nil, errBufferTooSmall
	}
	group := elliptic.NamedGroup(binary.BigEndian.Uint16(data[0:2]))
	keLen := int(binary.BigEndian.Uint16(data[2:4]))
	data = data[4:]
	if len(data) < keLen {
		return KeyShareEntry{}, nil, errBufferTooSmall
	}
	return KeyShareEntry{Group: group, KeyExchange: append([]byte{}, data[:keLen]...)}, data[keLen:], nil
}
