package bootloader

import (
	"context"
	"time"

	"github.com/moffa90/go-funkboot/protocol"
)

// BootWait counts the ticks left before the application starts.
type BootWait uint16

const (
	// BootWaitExpired starts the application once no transmission is pending
	BootWaitExpired BootWait = 0x0000

	// BootWaitHeld keeps the bootloader running until told to switch
	BootWaitHeld BootWait = 0xFFFF
)

// Expired reports whether the application should start.
func (w BootWait) Expired() bool { return w == BootWaitExpired }

// Held reports whether the countdown was cancelled.
func (w BootWait) Held() bool { return w == BootWaitHeld }

// Bootloader answers funkboot requests received over a Transport and
// decides when to leave for the application.
//
// Bootloader is not safe for concurrent use; it is driven by a single tick
// loop, and owns the last response for retransmissions.
type Bootloader struct {
	transport Transport
	flash     Memory
	eeprom    Memory
	config    Config

	bootWait BootWait
	timers   [2]uint8
	last     *protocol.Packet
}

// New creates a Bootloader that answers requests from transport and programs
// flash and eeprom.
//
// Example:
//
//	bl := bootloader.New(radio, memory.NewFlash(ctrl, layout), memory.NewEEPROM(ee, 512),
//	    bootloader.WithVersion("FUNKBOOTm168v1.0"),
//	    bootloader.WithChipInfo(info),
//	)
func New(transport Transport, flash, eeprom Memory, opts ...Option) *Bootloader {
	if transport == nil {
		panic("transport cannot be nil")
	}
	if flash == nil || eeprom == nil {
		panic("memories cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Bootloader{
		transport: transport,
		flash:     flash,
		eeprom:    eeprom,
		config:    cfg,
		bootWait:  BootWait(cfg.BootTimeout),
	}
}

// BootWait returns the current countdown state.
func (b *Bootloader) BootWait() BootWait { return b.bootWait }

// Tick runs one scheduler step:
//  1. Update the activity indicators
//  2. Run the transport housekeeping
//  3. Leave if the countdown expired and nothing is being transmitted,
//     otherwise count down
//  4. Answer at most one received request
//
// It returns true when the caller should start the application.
func (b *Bootloader) Tick() (leave bool) {
	b.updateIndicators()

	b.transport.Tick(b.config.SilenceTicks)

	rsp := b.transport.SendSlot()

	switch {
	case b.bootWait.Expired():
		if rsp != nil {
			b.logInfo("leaving bootloader")
			return true
		}
	case !b.bootWait.Held():
		b.bootWait--
		if uint16(b.bootWait)%b.config.HeartbeatTicks == 0 {
			b.pulse(IndicatorTX)
		}
	}

	req := b.transport.ReceivePacket()
	if req == nil {
		return false
	}

	b.pulse(IndicatorRX)

	if rsp == nil {
		b.logDebug("no send slot, dropping request", "source", req.Source)
		b.transport.ConsumeReceive()
		return false
	}

	b.handle(req, rsp)
	return false
}

// Run calls Tick for every value received from ticks until the bootloader
// decides to start the application, in which case it switches the
// indicators off and returns nil. Ticks that arrive while a previous tick
// is still running are coalesced by the channel.
//
// Example:
//
//	ticker := time.NewTicker(time.Millisecond)
//	defer ticker.Stop()
//	if err := bl.Run(ctx, ticker.C); err == nil {
//	    jumpToApplication()
//	}
func (b *Bootloader) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			if b.Tick() {
				b.indicatorsOff()
				return nil
			}
		}
	}
}

func (b *Bootloader) pulse(ch Channel) {
	b.timers[ch] = b.config.IndicatorTicks
}

func (b *Bootloader) updateIndicators() {
	for ch := range b.timers {
		on := b.timers[ch] > 0
		if on {
			b.timers[ch]--
		}
		if b.config.Indicator != nil {
			b.config.Indicator.Set(Channel(ch), on)
		}
	}
}

func (b *Bootloader) indicatorsOff() {
	b.timers = [2]uint8{}
	if b.config.Indicator != nil {
		b.config.Indicator.Set(IndicatorRX, false)
		b.config.Indicator.Set(IndicatorTX, false)
	}
}

// logDebug logs a debug message if a logger is configured.
func (b *Bootloader) logDebug(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (b *Bootloader) logInfo(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (b *Bootloader) logError(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Error(msg, keysAndValues...)
	}
}
