package protocol

import "fmt"

// DecodeUpstream decodes the payload of a packet the server can
// legitimately receive (opcodes tagged Upstream or Both in Catalog).
// It returns ErrShortRead, unmodified, when the reader does not yet
// hold a complete frame — the caller is expected to wait for more
// bytes and retry decoding from the start of the frame.
func DecodeUpstream(op Opcode, r *Reader) (Packet, error) {
	spec, ok := Lookup(op)
	if !ok || spec.Direction == Downstream {
		return nil, fmt.Errorf("%w: opcode 0x%02X", ErrBadOpcode, op)
	}

	switch op {
	case OpKeepAlive:
		p, err := DecodeKeepAlive(r)
		return p, err
	case OpLoginRequest:
		p, err := DecodeLoginRequestC2S(r)
		return p, err
	case OpHandshake:
		p, err := DecodeHandshakeC2S(r)
		return p, err
	case OpChatMessage:
		p, err := DecodeChatMessage(r)
		return p, err
	case OpPlayerOnGround:
		p, err := DecodePlayerOnGround(r)
		return p, err
	case OpPlayerPosition:
		p, err := DecodePlayerPosition(r)
		return p, err
	case OpPlayerLook:
		p, err := DecodePlayerLook(r)
		return p, err
	case OpPlayerPosLook:
		p, err := DecodePlayerPosLook(r)
		return p, err
	case OpPlayerDigging:
		p, err := DecodePlayerDigging(r)
		return p, err
	case OpHoldItem:
		p, err := DecodeHoldItem(r)
		return p, err
	case OpEntityAnimation:
		p, err := DecodeEntityAnimation(r)
		return p, err
	case OpBlockChange:
		p, err := DecodeBlockChange(r)
		return p, err
	default:
		return nil, fmt.Errorf("%w: opcode 0x%02X has no upstream decoder", ErrBadOpcode, op)
	}
}
