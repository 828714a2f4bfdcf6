// Package memory programs the two non-volatile stores of the target device.
//
// # Flash
//
// Code memory is erased and programmed in whole pages. Flash.Write accepts
// the page in word-aligned chunks of at most MaxTransfer bytes:
//
//	flash := memory.NewFlash(ctrl, memory.Layout{PageSize: 128, Size: 16384, ProtectFrom: 0x3C00})
//	for off := 0; off < 128; off += 32 {
//	    if err := flash.Write(page[off:off+32], uint16(base+off)); err != nil {
//	        return err
//	    }
//	}
//
// A write to a page-aligned address erases that page and opens a page
// cursor. Every following chunk must continue at the next address. When the
// last word of the page is staged the page is programmed and read access to
// the application section is re-enabled. Chunks that do not follow this
// order are rejected with a *SequenceError before any hardware access.
//
// # EEPROM
//
// Configuration memory is written one byte at a time with EEPROM.Write; it
// has no pages and needs no erase.
//
// # Hardware Independence
//
// The package never touches registers. Callers inject a FlashController and
// an EEPROMController; SimFlash and SimEEPROM are in-memory implementations
// used by tests and by the simulator, and can be persisted with
// SaveSnapshot and LoadSnapshot.
package memory
