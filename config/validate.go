package config

import (
	"fmt"

	"github.com/moffa90/go-funkboot/protocol"
)

// Validate checks the profile for values the bootloader cannot serve.
// It does not modify the profile.
func (t Target) Validate() error {
	if len(t.Version) > protocol.VersionSize {
		return fmt.Errorf("target %q: version %q is longer than %d bytes", t.Name, t.Version, protocol.VersionSize)
	}

	// the page size travels as one byte in the chip descriptor, and a full
	// transfer must fit in one page
	if t.PageSize < protocol.MaxDataSize || t.PageSize > 128 || t.PageSize&(t.PageSize-1) != 0 {
		return fmt.Errorf("target %q: page_size %d must be a power of two from %d to 128",
			t.Name, t.PageSize, protocol.MaxDataSize)
	}

	if t.FlashSize <= 0 || t.FlashSize > 0x10000 || t.FlashSize%t.PageSize != 0 {
		return fmt.Errorf("target %q: flash_size %d must be a multiple of the page size up to 65536", t.Name, t.FlashSize)
	}

	if int(t.BootloaderStart)%t.PageSize != 0 {
		return fmt.Errorf("target %q: bootloader_start 0x%04X is not page aligned", t.Name, t.BootloaderStart)
	}
	// memory.Layout reads a zero ProtectFrom as an unprotected flash
	if t.BootloaderStart == 0 {
		return fmt.Errorf("target %q: bootloader_start must be above 0x0000", t.Name)
	}
	if int(t.BootloaderStart) >= t.FlashSize {
		return fmt.Errorf("target %q: bootloader_start 0x%04X is outside the flash", t.Name, t.BootloaderStart)
	}

	if t.EEPROMSize < 0 || t.EEPROMSize > 0xFFFF {
		return fmt.Errorf("target %q: eeprom_size %d must fit in 16 bits", t.Name, t.EEPROMSize)
	}

	// 0x0000 and 0xFFFF mark the expired and held states
	if t.BootTimeout == 0 || t.BootTimeout == 0xFFFF {
		return fmt.Errorf("target %q: boot_timeout %d must be between 1 and 65534", t.Name, t.BootTimeout)
	}

	if t.Tick <= 0 {
		return fmt.Errorf("target %q: tick %s must be positive", t.Name, t.Tick)
	}

	return nil
}
