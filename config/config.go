// Package config describes a funkboot target: the radio address, the
// bootloader timing and the memory geometry of the chip.
//
// Target profiles are TOML or YAML files. Keys that are not present keep
// the values of Default.
//
//	name = "funkstuff168"
//	address = 0x11
//	boot_timeout = 1000
//	tick = "1ms"
//	version = "FUNKBOOTm168v1.0"
//	signature = [0x1E, 0x94, 0x06]
//	page_size = 128
//	bootloader_start = 0x3C00
//	flash_size = 16384
//	eeprom_size = 512
//	silence_ticks = 5
package config

import (
	"time"

	"github.com/moffa90/go-funkboot/bootloader"
	"github.com/moffa90/go-funkboot/memory"
	"github.com/moffa90/go-funkboot/protocol"
)

// Target is the profile of one device type.
type Target struct {
	Name string

	// Address is the radio address of the device
	Address uint8

	// BootTimeout is the number of ticks before the application starts
	BootTimeout uint16

	// Tick is the scheduler period
	Tick time.Duration

	// Version is reported by get-version
	Version string

	// Signature is the chip signature reported by get-chip-info
	Signature [3]byte

	// PageSize is the flash erase page size in bytes
	PageSize int

	// BootloaderStart is the first flash address of the bootloader section
	BootloaderStart uint16

	// FlashSize and EEPROMSize are the memory sizes in bytes
	FlashSize  int
	EEPROMSize int

	// SilenceTicks is the quiet time before the radio transmits
	SilenceTicks uint8
}

// Default returns the profile of the funkstuff168 board (ATmega168).
func Default() Target {
	return Target{
		Name:            "funkstuff168",
		Address:         0x11,
		BootTimeout:     1000,
		Tick:            time.Millisecond,
		Version:         "FUNKBOOTm168v1.0",
		Signature:       [3]byte{0x1E, 0x94, 0x06},
		PageSize:        128,
		BootloaderStart: 0x3C00,
		FlashSize:       16384,
		EEPROMSize:      512,
		SilenceTicks:    5,
	}
}

// ChipInfo returns the chip descriptor reported to hosts.
func (t Target) ChipInfo() protocol.ChipInfo {
	return protocol.ChipInfo{
		Signature:       t.Signature,
		PageSize:        uint8(t.PageSize),
		BootloaderStart: t.BootloaderStart,
		EEPROMSize:      uint16(t.EEPROMSize),
	}
}

// Layout returns the flash geometry. The bootloader section is protected.
func (t Target) Layout() memory.Layout {
	return memory.Layout{
		PageSize:    t.PageSize,
		Size:        t.FlashSize,
		ProtectFrom: int(t.BootloaderStart),
	}
}

// BootloaderOptions returns the bootloader options for the target.
func (t Target) BootloaderOptions() []bootloader.Option {
	return []bootloader.Option{
		bootloader.WithVersion(t.Version),
		bootloader.WithChipInfo(t.ChipInfo()),
		bootloader.WithBootTimeout(t.BootTimeout),
		bootloader.WithSilenceTicks(t.SilenceTicks),
	}
}
