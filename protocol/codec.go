package protocol

import (
	"encoding/binary"
	"fmt"
)

// Decode parses one message.
//
// Message structure:
//
//	[COMMAND][SEQNUM][CAUSE][PAYLOAD...]
//
// Only the command is validated; payload fields are taken at their fixed
// sizes. Bytes beyond the payload layout are ignored. The returned message
// owns its data and does not alias b.
func Decode(b []byte) (*Message, error) {
	if len(b) < HeaderSize {
		return nil, &DecodeError{Err: ErrShortHeader}
	}

	msg := &Message{
		Command: Command(b[0]),
		Seq:     b[1],
		Cause:   Cause(b[2]),
	}
	fail := func(err error) (*Message, error) {
		return nil, &DecodeError{Command: msg.Command, Seq: msg.Seq, Err: err}
	}

	if !msg.Command.Known() {
		return fail(ErrUnknownCommand)
	}

	body := b[HeaderSize:]

	switch msg.Command {
	case CmdSwitchApp:
		if len(body) < SwitchAppPayloadSize {
			return fail(ErrShortPayload)
		}
		msg.Payload = SwitchApp{Mode: BootMode(body[0])}

	case CmdGetVersion, CmdGetChipInfo, CmdSwitchAppResponse, CmdWriteMemoryResponse:
		msg.Payload = Empty{}

	case CmdReadMemory:
		if len(body) < MemoryRequestHeaderSize {
			return fail(ErrShortPayload)
		}
		req := ReadRequest{
			Address: binary.LittleEndian.Uint16(body[0:2]),
			Kind:    MemoryKind(body[2]),
			Size:    body[3],
		}
		if req.Size > MaxDataSize {
			return fail(ErrPayloadTooLarge)
		}
		msg.Payload = req

	case CmdWriteMemory:
		if len(body) < MemoryRequestHeaderSize {
			return fail(ErrShortPayload)
		}
		size := int(body[3])
		if size > MaxDataSize {
			return fail(ErrPayloadTooLarge)
		}
		if len(body) < MemoryRequestHeaderSize+size {
			return fail(ErrShortPayload)
		}
		req := WriteRequest{
			Address: binary.LittleEndian.Uint16(body[0:2]),
			Kind:    MemoryKind(body[2]),
			Data:    make([]byte, size),
		}
		copy(req.Data, body[MemoryRequestHeaderSize:])
		msg.Payload = req

	case CmdGetVersionResponse:
		if msg.Cause != CauseSuccess && len(body) == 0 {
			msg.Payload = Empty{}
			break
		}
		if len(body) < VersionSize {
			return fail(ErrShortPayload)
		}
		var v Version
		copy(v[:], body)
		msg.Payload = v

	case CmdGetChipInfoResponse:
		if msg.Cause != CauseSuccess && len(body) == 0 {
			msg.Payload = Empty{}
			break
		}
		if len(body) < ChipInfoSize {
			return fail(ErrShortPayload)
		}
		info := ChipInfo{
			PageSize:        body[3],
			BootloaderStart: binary.BigEndian.Uint16(body[4:6]),
			EEPROMSize:      binary.BigEndian.Uint16(body[6:8]),
		}
		copy(info.Signature[:], body[0:3])
		msg.Payload = info

	case CmdReadMemoryResponse:
		if len(body) > MaxDataSize {
			return fail(ErrPayloadTooLarge)
		}
		msg.Payload = ReadResponse{Data: append([]byte(nil), body...)}
	}

	return msg, nil
}

// Encode serializes m. A nil payload encodes as Empty.
// The encoded length is HeaderSize plus the size of the payload arm.
func Encode(m *Message) ([]byte, error) {
	payload := m.Payload
	if payload == nil {
		payload = Empty{}
	}
	if err := checkPayload(m.Command, m.Cause, payload); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Command, err)
	}

	frame := make([]byte, 0, HeaderSize+payload.size())
	frame = append(frame, byte(m.Command), m.Seq, byte(m.Cause))
	return payload.appendTo(frame), nil
}

// EncodeHeader returns a message consisting of the header only. It is used
// for failed responses, which carry no payload, including answers to
// commands outside the command table.
func EncodeHeader(cmd Command, seq uint8, cause Cause) []byte {
	return []byte{byte(cmd), seq, byte(cause)}
}

// checkPayload verifies that p is the arm selected by cmd.
func checkPayload(cmd Command, cause Cause, p Payload) error {
	if !cmd.Known() {
		return ErrUnknownCommand
	}

	// failed responses may omit their body
	if _, empty := p.(Empty); empty && cmd.IsResponse() && cause != CauseSuccess {
		return nil
	}

	var ok bool
	switch cmd {
	case CmdSwitchApp:
		_, ok = p.(SwitchApp)
	case CmdGetVersion, CmdGetChipInfo, CmdSwitchAppResponse, CmdWriteMemoryResponse:
		_, ok = p.(Empty)
	case CmdReadMemory:
		var r ReadRequest
		if r, ok = p.(ReadRequest); ok && r.Size > MaxDataSize {
			return ErrPayloadTooLarge
		}
	case CmdWriteMemory:
		var w WriteRequest
		if w, ok = p.(WriteRequest); ok && len(w.Data) > MaxDataSize {
			return ErrPayloadTooLarge
		}
	case CmdGetVersionResponse:
		_, ok = p.(Version)
	case CmdGetChipInfoResponse:
		_, ok = p.(ChipInfo)
	case CmdReadMemoryResponse:
		var r ReadResponse
		if r, ok = p.(ReadResponse); ok && len(r.Data) > MaxDataSize {
			return ErrPayloadTooLarge
		}
	}
	if !ok {
		return fmt.Errorf("%w: %T", ErrPayloadMismatch, p)
	}
	return nil
}
