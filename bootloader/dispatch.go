package bootloader

import (
	"errors"

	"github.com/moffa90/go-funkboot/memory"
	"github.com/moffa90/go-funkboot/protocol"
)

// handle answers req into the free send slot rsp.
func (b *Bootloader) handle(req, rsp *protocol.Packet) {
	if len(req.Data) < protocol.HeaderSize {
		b.logDebug("dropping short packet", "source", req.Source, "length", len(req.Data))
		b.transport.ConsumeReceive()
		return
	}

	cmd := protocol.Command(req.Data[0])
	seq := req.Data[1]

	// any request cancels a pending application start
	b.bootWait = BootWaitHeld

	if b.isRetransmission(req.Source, cmd, seq) {
		b.logDebug("retransmitting response", "source", req.Source, "command", cmd, "seq", seq)
		rsp.Dest = b.last.Dest
		rsp.Data = append(rsp.Data[:0], b.last.Data...)
		b.transport.ConsumeReceive()
		b.transmit()
		return
	}

	payload, cause := b.execute(req.Data)

	var frame []byte
	if cause == protocol.CauseSuccess {
		var err error
		frame, err = protocol.Encode(&protocol.Message{
			Command: cmd.Response(),
			Seq:     seq,
			Cause:   cause,
			Payload: payload,
		})
		if err != nil {
			b.logError("encode response", "command", cmd, "error", err)
			cause = protocol.CauseUnspecifiedError
		}
	}
	if cause != protocol.CauseSuccess {
		frame = protocol.EncodeHeader(cmd.Response(), seq, cause)
	}

	b.logDebug("request handled",
		"source", req.Source,
		"command", cmd,
		"seq", seq,
		"cause", cause,
	)

	rsp.Dest = req.Source
	rsp.Data = append(rsp.Data[:0], frame...)

	b.transport.ConsumeReceive()
	b.last = rsp.Clone()
	b.transmit()
}

// isRetransmission reports whether the request repeats the last answered one.
func (b *Bootloader) isRetransmission(source uint8, cmd protocol.Command, seq uint8) bool {
	if b.last == nil {
		return false
	}
	last := protocol.Command(b.last.Data[0])
	return source == b.last.Dest &&
		cmd.Operation() == last.Operation() &&
		seq == b.last.Data[1]
}

func (b *Bootloader) transmit() {
	if b.transport.BeginTransmit() {
		b.pulse(IndicatorTX)
	}
}

// execute runs the request and returns the response payload and cause.
func (b *Bootloader) execute(data []byte) (protocol.Payload, protocol.Cause) {
	if !protocol.Command(data[0]).IsRequest() {
		return nil, protocol.CauseNotSupported
	}

	msg, err := protocol.Decode(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownCommand) {
			return nil, protocol.CauseNotSupported
		}
		return nil, protocol.CauseInvalidParameter
	}

	switch p := msg.Payload.(type) {
	case protocol.SwitchApp:
		switch p.Mode {
		case protocol.ModeApplication:
			b.bootWait = BootWaitExpired
		case protocol.ModeBootloader:
		default:
			return nil, protocol.CauseInvalidParameter
		}
		return protocol.Empty{}, protocol.CauseSuccess

	case protocol.ReadRequest:
		mem := b.memory(p.Kind)
		if mem == nil {
			return nil, protocol.CauseInvalidParameter
		}
		buf := make([]byte, p.Size)
		if err := mem.Read(buf, p.Address); err != nil {
			return nil, b.causeOf("read", p.Kind, p.Address, err)
		}
		return protocol.ReadResponse{Data: buf}, protocol.CauseSuccess

	case protocol.WriteRequest:
		mem := b.memory(p.Kind)
		if mem == nil {
			return nil, protocol.CauseInvalidParameter
		}
		if err := mem.Write(p.Data, p.Address); err != nil {
			return nil, b.causeOf("write", p.Kind, p.Address, err)
		}
		return protocol.Empty{}, protocol.CauseSuccess
	}

	switch msg.Command {
	case protocol.CmdGetVersion:
		return b.config.Version, protocol.CauseSuccess
	case protocol.CmdGetChipInfo:
		return b.config.ChipInfo, protocol.CauseSuccess
	}
	return nil, protocol.CauseNotSupported
}

func (b *Bootloader) memory(kind protocol.MemoryKind) Memory {
	switch kind {
	case protocol.MemoryFlash:
		return b.flash
	case protocol.MemoryEEPROM:
		return b.eeprom
	default:
		return nil
	}
}

// causeOf maps a memory programmer error to the cause reported to the host.
func (b *Bootloader) causeOf(op string, kind protocol.MemoryKind, addr uint16, err error) protocol.Cause {
	b.logError("memory "+op+" failed", "memory", kind, "address", addr, "error", err)

	var seqErr *memory.SequenceError
	switch {
	case errors.As(err, &seqErr):
		return protocol.CauseUnspecifiedError
	case errors.Is(err, memory.ErrOutOfRange),
		errors.Is(err, memory.ErrProtected),
		errors.Is(err, memory.ErrTooLarge),
		errors.Is(err, memory.ErrOddLength):
		return protocol.CauseInvalidParameter
	default:
		return protocol.CauseUnspecifiedError
	}
}
