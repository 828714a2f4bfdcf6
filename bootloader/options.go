package bootloader

import "github.com/moffa90/go-funkboot/protocol"

// Config holds the bootloader configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// Indicator drives the RX/TX activity LEDs (optional)
	Indicator Indicator

	// Version is returned by get-version
	Version protocol.Version

	// ChipInfo is returned by get-chip-info
	ChipInfo protocol.ChipInfo

	// BootTimeout is the number of ticks to wait for a request before
	// starting the application. Default is 1000 (1 s at a 1 ms tick).
	BootTimeout uint16

	// SilenceTicks is the quiet time the transport waits before transmitting
	SilenceTicks uint8

	// IndicatorTicks is how long an indicator stays on after an event
	IndicatorTicks uint8

	// HeartbeatTicks is the countdown interval between waiting heartbeats
	HeartbeatTicks uint16
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Version:        protocol.NewVersion("FUNKBOOT"),
		BootTimeout:    1000,
		SilenceTicks:   5,
		IndicatorTicks: 5,
		HeartbeatTicks: 64,
	}
}

// Option is a functional option for configuring the Bootloader.
type Option func(*Config)

// WithLogger sets a logger for the bootloader.
//
// Example:
//
//	bl := bootloader.New(radio, flash, eeprom, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithIndicator sets the activity indicator driver.
//
// Example:
//
//	bl := bootloader.New(radio, flash, eeprom,
//	    bootloader.WithIndicator(bootloader.IndicatorFunc(func(ch bootloader.Channel, on bool) {
//	        leds[ch].Set(on)
//	    })),
//	)
func WithIndicator(ind Indicator) Option {
	return func(c *Config) {
		c.Indicator = ind
	}
}

// WithVersion sets the version string, truncated to protocol.VersionSize bytes.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = protocol.NewVersion(version)
	}
}

// WithChipInfo sets the chip descriptor reported to hosts.
//
// Example:
//
//	bl := bootloader.New(radio, flash, eeprom, bootloader.WithChipInfo(protocol.ChipInfo{
//	    Signature:       [3]byte{0x1E, 0x94, 0x06},
//	    PageSize:        128,
//	    BootloaderStart: 0x3C00,
//	    EEPROMSize:      512,
//	}))
func WithChipInfo(info protocol.ChipInfo) Option {
	return func(c *Config) {
		c.ChipInfo = info
	}
}

// WithBootTimeout sets the number of ticks before the application starts.
// Values outside 1..0xFFFE are ignored because 0 and 0xFFFF are the
// expired and held markers.
func WithBootTimeout(ticks uint16) Option {
	return func(c *Config) {
		if ticks != uint16(BootWaitExpired) && ticks != uint16(BootWaitHeld) {
			c.BootTimeout = ticks
		}
	}
}

// WithSilenceTicks sets the quiet time passed to Transport.Tick.
func WithSilenceTicks(ticks uint8) Option {
	return func(c *Config) {
		c.SilenceTicks = ticks
	}
}

// WithIndicatorTicks sets how many ticks an indicator stays on after an event.
func WithIndicatorTicks(ticks uint8) Option {
	return func(c *Config) {
		c.IndicatorTicks = ticks
	}
}

// WithHeartbeatTicks sets the interval of the waiting heartbeat; 0 is ignored.
func WithHeartbeatTicks(ticks uint16) Option {
	return func(c *Config) {
		if ticks > 0 {
			c.HeartbeatTicks = ticks
		}
	}
}
