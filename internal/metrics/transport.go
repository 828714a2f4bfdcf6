package metrics

import (
	"fmt"

	"github.com/moffa90/go-funkboot/bootloader"
	"github.com/moffa90/go-funkboot/protocol"
)

// Transport counts the traffic a bootloader moves through the wrapped
// transport. It must be driven by the same single tick loop as the
// bootloader.
type Transport struct {
	bootloader.Transport

	node     string
	received *protocol.Packet
}

var _ bootloader.Transport = (*Transport)(nil)

// InstrumentTransport wraps t; addr labels the counters.
func InstrumentTransport(t bootloader.Transport, addr uint8) *Transport {
	RegisterMetrics()
	return &Transport{
		Transport: t,
		node:      fmt.Sprintf("0x%02X", addr),
	}
}

func (t *Transport) ReceivePacket() *protocol.Packet {
	t.received = t.Transport.ReceivePacket()
	return t.received
}

// ConsumeReceive counts the packet being released. A packet consumed while
// no send slot is free was dropped.
func (t *Transport) ConsumeReceive() {
	if p := t.received; p != nil {
		t.received = nil
		RecordRequest(t.node, commandLabel(p.Data))
		if t.Transport.SendSlot() == nil {
			RecordDrop(t.node)
		}
	}
	t.Transport.ConsumeReceive()
}

func (t *Transport) BeginTransmit() bool {
	slot := t.Transport.SendSlot()
	if !t.Transport.BeginTransmit() {
		return false
	}
	if slot != nil && len(slot.Data) >= protocol.HeaderSize {
		RecordResponse(t.node,
			protocol.Command(slot.Data[0]).String(),
			protocol.Cause(slot.Data[2]).String(),
		)
	}
	return true
}

func commandLabel(data []byte) string {
	if len(data) < protocol.HeaderSize {
		return "short"
	}
	return protocol.Command(data[0]).String()
}
