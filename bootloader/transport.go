package bootloader

import "github.com/moffa90/go-funkboot/protocol"

// Transport is the packet radio driver as seen by the bootloader.
//
// Packets returned by SendSlot and ReceivePacket stay owned by the
// transport; the bootloader only uses them until the end of the tick.
type Transport interface {
	// Tick runs the periodic driver work. A pending transmission starts only
	// after the channel was quiet for silence ticks.
	Tick(silence uint8)

	// SendSlot returns the transmit buffer, or nil while a transmission is pending
	SendSlot() *protocol.Packet

	// ReceivePacket returns the oldest received packet, or nil
	ReceivePacket() *protocol.Packet

	// ConsumeReceive releases the packet returned by ReceivePacket
	ConsumeReceive()

	// BeginTransmit queues the send slot for transmission and reports
	// whether the transport accepted it
	BeginTransmit() bool
}

// Memory is one of the two programmable stores.
// memory.Flash and memory.EEPROM implement it.
type Memory interface {
	Read(dst []byte, addr uint16) error
	Write(src []byte, addr uint16) error
}
