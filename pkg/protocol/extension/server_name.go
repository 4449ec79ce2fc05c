// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

const serverNameTypeHostName = 0

// ServerName is the SNI extension (RFC 6066 §3). Only the host_name
// name type is offered; servers never echo the hostname back.
type ServerName string

// Type returns the extension's wire type.
func (ServerName) Type() Type { return TypeServerName }

// Marshal encodes the server_name_list with one host_name entry.
func (s ServerName) Marshal() ([]byte, error) {
	name := []byte(s)
	entry := make([]byte, 3+len(name))
	entry[0] = serverNameTypeHostName
	binary.BigEndian.PutUint16(entry[1:3], uint16(len(name)))
	copy(entry[3:], name)

	out := make([]byte, 2, 2+len(entry))
	binary.BigEndian.PutUint16(out, uint16(len(entry)))
	return append(out, entry...), nil
}

// Unmarshal decodes the first host_name entry in the server_name_list.
func (s *ServerName) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data[0:2]))
	data = data[2:]
	if len(data) != n {
		return errInvalidLength
	}
	if len(data) < 3 {
		return errBufferTooSmall
	}
	nameType := data[0]
	nameLen := int(binary.BigEndian.Uint16(data[1:3]))
	data = data[3:]
	if len(data) < nameLen {
		return errBufferTooSmall
	}
	if nameType != serverNameTypeHostName {
		return nil
	}
	*s = ServerName(data[:nameLen])
	return nil
}
