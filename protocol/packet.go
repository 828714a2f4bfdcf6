package protocol

// Packet is the transport frame that carries one encoded Message.
// Packets are owned by the transport; the bootloader borrows them for a
// single tick.
type Packet struct {
	// Dest is the address of the receiving peer
	Dest uint8

	// Source is the address of the sending peer
	Source uint8

	// Data holds the encoded message; len(Data) is the payload length
	Data []byte
}

// Clone returns a deep copy of p.
func (p *Packet) Clone() *Packet {
	c := &Packet{Dest: p.Dest, Source: p.Source}
	c.Data = append(make([]byte, 0, len(p.Data)), p.Data...)
	return c
}
