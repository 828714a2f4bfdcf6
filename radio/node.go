package radio

import (
	"sync"

	"github.com/moffa90/go-funkboot/protocol"
)

// RxQueueSize is the number of received packets a Node holds.
const RxQueueSize = 4

// Node is a device-side radio. It implements bootloader.Transport.
//
// The transmit slot and the head of the receive queue are lent to the
// bootloader for one tick; deliveries from other goroutines only append to
// the queue.
type Node struct {
	air  *Air
	addr uint8

	mu      sync.Mutex
	rx      []*protocol.Packet
	tx      protocol.Packet
	pending bool
	quiet   uint8

	// statistics
	sent, received, overruns int
}

// Address returns the node address.
func (n *Node) Address() uint8 { return n.addr }

// Tick advances the channel quiet time and sends the pending packet once the
// channel has been quiet for silence ticks.
func (n *Node) Tick(silence uint8) {
	n.mu.Lock()
	if n.quiet < 0xFF {
		n.quiet++
	}
	if !n.pending || n.quiet < silence {
		n.mu.Unlock()
		return
	}
	p := n.tx.Clone()
	p.Source = n.addr
	n.pending = false
	n.sent++
	n.mu.Unlock()

	// unroutable responses are lost like any other packet
	_ = n.air.deliver(p)
}

// SendSlot returns the transmit buffer, or nil while a packet is pending.
func (n *Node) SendSlot() *protocol.Packet {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending {
		return nil
	}
	return &n.tx
}

// ReceivePacket returns the oldest received packet, or nil.
func (n *Node) ReceivePacket() *protocol.Packet {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.rx) == 0 {
		return nil
	}
	return n.rx[0]
}

// ConsumeReceive releases the packet returned by ReceivePacket.
func (n *Node) ConsumeReceive() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.rx) > 0 {
		n.rx[0] = nil
		n.rx = n.rx[1:]
	}
}

// BeginTransmit queues the transmit buffer. It returns false if a packet is
// already pending.
func (n *Node) BeginTransmit() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending {
		return false
	}
	n.pending = true
	return true
}

// Stats returns the number of packets sent, received and dropped because
// the receive queue was full.
func (n *Node) Stats() (sent, received, overruns int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent, n.received, n.overruns
}

func (n *Node) enqueue(p *protocol.Packet) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.quiet = 0
	if len(n.rx) >= RxQueueSize {
		n.overruns++
		return
	}
	n.received++
	n.rx = append(n.rx, p)
}
