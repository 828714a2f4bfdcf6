package radio

import (
	"context"

	"github.com/moffa90/go-funkboot/protocol"
)

// Endpoint is a host-side radio. Send and Receive may be called from
// different goroutines.
type Endpoint struct {
	air  *Air
	addr uint8
	rx   chan *protocol.Packet
}

// Address returns the endpoint address.
func (e *Endpoint) Address() uint8 { return e.addr }

// Send transmits a copy of p with the endpoint address as source.
func (e *Endpoint) Send(ctx context.Context, p *protocol.Packet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := p.Clone()
	out.Source = e.addr
	return e.air.deliver(out)
}

// Receive waits for the next packet addressed to the endpoint.
func (e *Endpoint) Receive(ctx context.Context) (*protocol.Packet, error) {
	select {
	case p := <-e.rx:
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
