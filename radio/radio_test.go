package radio

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moffa90/go-funkboot/bootloader"
	"github.com/moffa90/go-funkboot/protocol"
)

var _ bootloader.Transport = (*Node)(nil)

func TestEndpointToNode(t *testing.T) {
	air := NewAir()
	node := air.Node(0x11)
	host := air.Endpoint(0x01)

	err := host.Send(context.Background(), &protocol.Packet{Dest: 0x11, Source: 0x99, Data: []byte{0x21, 0x01, 0x00}})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	p := node.ReceivePacket()
	if p == nil {
		t.Fatal("ReceivePacket() = nil")
	}
	if p.Source != 0x01 || p.Dest != 0x11 {
		t.Errorf("addresses = 0x%02X -> 0x%02X, want 0x01 -> 0x11", p.Source, p.Dest)
	}
	if !bytes.Equal(p.Data, []byte{0x21, 0x01, 0x00}) {
		t.Errorf("Data = % X", p.Data)
	}

	node.ConsumeReceive()
	if node.ReceivePacket() != nil {
		t.Error("packet still queued after ConsumeReceive()")
	}
}

func TestNodeSilence(t *testing.T) {
	air := NewAir()
	node := air.Node(0x11)
	host := air.Endpoint(0x01)

	slot := node.SendSlot()
	slot.Dest = 0x01
	slot.Data = append(slot.Data[:0], 0x61, 0x01, 0x00)
	if !node.BeginTransmit() {
		t.Fatal("BeginTransmit() = false")
	}
	if node.SendSlot() != nil {
		t.Error("SendSlot() returned the pending buffer")
	}
	if node.BeginTransmit() {
		t.Error("second BeginTransmit() = true")
	}

	for i := 0; i < 2; i++ {
		node.Tick(3)
	}
	select {
	case <-host.rx:
		t.Fatal("sent before the channel was quiet")
	default:
	}

	node.Tick(3)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p, err := host.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if p.Source != 0x11 || !bytes.Equal(p.Data, []byte{0x61, 0x01, 0x00}) {
		t.Errorf("received %+v", p)
	}
	if node.SendSlot() == nil {
		t.Error("SendSlot() = nil after the packet was sent")
	}
}

func TestReceptionResetsQuietTime(t *testing.T) {
	air := NewAir()
	node := air.Node(0x11)
	host := air.Endpoint(0x01)

	node.SendSlot().Dest = 0x01
	node.BeginTransmit()

	node.Tick(2)
	host.Send(context.Background(), &protocol.Packet{Dest: 0x11, Data: []byte{0x21, 0x02, 0x00}})
	node.Tick(2)
	if sent, _, _ := node.Stats(); sent != 0 {
		t.Fatal("sent right after a reception")
	}
	node.Tick(2)
	if sent, _, _ := node.Stats(); sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
}

func TestRxQueueOverrun(t *testing.T) {
	air := NewAir()
	node := air.Node(0x11)
	host := air.Endpoint(0x01)

	for i := 0; i < RxQueueSize+2; i++ {
		host.Send(context.Background(), &protocol.Packet{Dest: 0x11, Data: []byte{0x21, byte(i), 0x00}})
	}

	_, received, overruns := node.Stats()
	if received != RxQueueSize || overruns != 2 {
		t.Errorf("received = %d overruns = %d, want %d and 2", received, overruns, RxQueueSize)
	}
	if seq := node.ReceivePacket().Data[1]; seq != 0 {
		t.Errorf("head seq = %d, want 0", seq)
	}
}

func TestLoss(t *testing.T) {
	air := NewAir(WithLoss(DropEvery(2)))
	node := air.Node(0x11)
	host := air.Endpoint(0x01)

	for i := 0; i < 4; i++ {
		host.Send(context.Background(), &protocol.Packet{Dest: 0x11, Data: []byte{0x21, byte(i), 0x00}})
	}

	var seqs []byte
	for p := node.ReceivePacket(); p != nil; p = node.ReceivePacket() {
		seqs = append(seqs, p.Data[1])
		node.ConsumeReceive()
	}
	if !bytes.Equal(seqs, []byte{0, 2}) {
		t.Errorf("received seqs = %v, want [0 2]", seqs)
	}
}

func TestLossFunctions(t *testing.T) {
	tests := []struct {
		name string
		loss func(protocol.Packet) bool
		want int
	}{
		{"drop every third", DropEvery(3), 3},
		{"never drop", DropEvery(0), 0},
		{"always drop", RandomLoss(1, 1), 10},
		{"no random loss", RandomLoss(0, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dropped := 0
			for i := 0; i < 10; i++ {
				if tt.loss(protocol.Packet{}) {
					dropped++
				}
			}
			if dropped != tt.want {
				t.Errorf("dropped = %d, want %d", dropped, tt.want)
			}
		})
	}
}

func TestSendErrors(t *testing.T) {
	air := NewAir()
	host := air.Endpoint(0x01)

	err := host.Send(context.Background(), &protocol.Packet{Dest: 0x55})
	if !errors.Is(err, ErrUnknownPeer) {
		t.Errorf("Send() to unknown peer = %v, want ErrUnknownPeer", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	air.Node(0x11)
	if err := host.Send(ctx, &protocol.Packet{Dest: 0x11}); !errors.Is(err, context.Canceled) {
		t.Errorf("Send() with cancelled context = %v", err)
	}
	if _, err := host.Receive(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Receive() with cancelled context = %v", err)
	}
}

func TestAttachReturnsSamePeer(t *testing.T) {
	air := NewAir()
	if air.Node(0x11) != air.Node(0x11) {
		t.Error("Node() attached twice")
	}
	if air.Endpoint(0x01) != air.Endpoint(0x01) {
		t.Error("Endpoint() attached twice")
	}
}
