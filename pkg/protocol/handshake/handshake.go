// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// Message is a single handshake message body, without its envelope.
type Message interface {
	Type() Type
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Handshake couples a Message with the 4-byte header that frames it on
// the wire, mirroring how a Record couples a body to its record header.
type Handshake struct {
	Header  Header
	Message Message
}

// Marshal encodes the header followed by the message body. The header's
// Length field is computed from the marshaled body, so callers need not
// set it themselves.
func (h *Handshake) Marshal() ([]byte, error) {
	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	hdr := Header{Type: h.Message.Type(), Length: uint32(len(body))}
	hdrBytes, err := hdr.Marshal()
	if err != nil {
		return nil, err
	}
	h.Header = hdr

	return append(hdrBytes, body...), nil
}

// Unmarshal decodes the header, allocates the message via newByType,
// and unmarshals the body into it.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}
	body := data[HeaderSize:]
	if uint32(len(body)) != h.Header.Length {
		return errLengthMismatch
	}

	msg, err := newByType(h.Header.Type)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(body); err != nil {
		return err
	}
	h.Message = msg
	return nil
}

func newByType(t Type) (Message, error) {
	switch t {
	case TypeClientHello:
		return &MessageClientHello{}, nil
	case TypeServerHello:
		return &MessageServerHello{}, nil
	case TypeNewSessionTicket:
		return &MessageNewSessionTicket{}, nil
	case TypeEncryptedExtensions:
		return &MessageEncryptedExtensions{}, nil
	case TypeCertificate:
		return &MessageCertificate{}, nil
	case TypeCertificateRequest:
		return &MessageCertificateRequest{}, nil
	case TypeCertificateVerify:
		return &MessageCertificateVerify{}, nil
	case TypeFinished:
		return &MessageFinished{}, nil
	default:
		return nil, errUnsupportedMsgType
	}
}
