package radio

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/moffa90/go-funkboot/protocol"
)

// EndpointQueueSize is the number of packets an Endpoint buffers.
const EndpointQueueSize = 16

// ErrUnknownPeer is returned when a packet is addressed to no attached peer.
var ErrUnknownPeer = errors.New("unknown peer address")

// Air is the shared medium. It is safe for concurrent use.
type Air struct {
	mu        sync.Mutex
	nodes     map[uint8]*Node
	endpoints map[uint8]*Endpoint
	config    Config
}

// Config holds the medium configuration.
type Config struct {
	// Loss reports whether a packet is lost in transit (optional)
	Loss func(p protocol.Packet) bool
}

// Option is a functional option for configuring the Air.
type Option func(*Config)

// WithLoss installs a packet loss function. It is called once per packet,
// with the medium locked, and must not block.
func WithLoss(loss func(p protocol.Packet) bool) Option {
	return func(c *Config) {
		c.Loss = loss
	}
}

// DropEvery returns a loss function that drops every n-th packet.
func DropEvery(n int) func(protocol.Packet) bool {
	count := 0
	return func(protocol.Packet) bool {
		if n <= 0 {
			return false
		}
		count++
		return count%n == 0
	}
}

// RandomLoss returns a loss function that drops packets with probability rate.
func RandomLoss(rate float64, seed int64) func(protocol.Packet) bool {
	rng := rand.New(rand.NewSource(seed))
	return func(protocol.Packet) bool {
		return rng.Float64() < rate
	}
}

// NewAir creates an empty medium.
func NewAir(opts ...Option) *Air {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Air{
		nodes:     make(map[uint8]*Node),
		endpoints: make(map[uint8]*Endpoint),
		config:    cfg,
	}
}

// Node returns the device-side transport for addr, attaching it on first use.
func (a *Air) Node(addr uint8) *Node {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n, ok := a.nodes[addr]; ok {
		return n
	}
	n := &Node{air: a, addr: addr}
	a.nodes[addr] = n
	return n
}

// Endpoint returns the host-side transport for addr, attaching it on first use.
func (a *Air) Endpoint(addr uint8) *Endpoint {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.endpoints[addr]; ok {
		return e
	}
	e := &Endpoint{air: a, addr: addr, rx: make(chan *protocol.Packet, EndpointQueueSize)}
	a.endpoints[addr] = e
	return e
}

// deliver hands p to its destination. Lost packets and full queues are not
// errors, as on a real radio.
func (a *Air) deliver(p *protocol.Packet) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n, ok := a.nodes[p.Dest]; ok {
		if !a.lost(p) {
			n.enqueue(p)
		}
		return nil
	}
	if e, ok := a.endpoints[p.Dest]; ok {
		if !a.lost(p) {
			select {
			case e.rx <- p:
			default:
			}
		}
		return nil
	}
	return ErrUnknownPeer
}

func (a *Air) lost(p *protocol.Packet) bool {
	return a.config.Loss != nil && a.config.Loss(*p)
}
