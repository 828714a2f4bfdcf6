// Package bootloader implements the device side of the funkboot protocol.
//
// # Overview
//
// A Bootloader is driven by a fixed-period tick. On every tick it:
//   - Updates the RX/TX activity indicators
//   - Runs the transport housekeeping
//   - Counts down towards the application start
//   - Answers at most one received request
//
// Requests are decoded with the protocol package and served from the flash
// and EEPROM programmers of the memory package. Every answered request
// cancels the pending application start; a switch-application request with
// mode protocol.ModeApplication re-arms it, and the bootloader leaves once the
// confirmation has been handed to the radio.
//
// # Retransmissions
//
// The last response is kept. A request from the same peer with the same
// operation and sequence number is answered by sending that response again,
// without touching memory. Writes and mode switches are therefore executed
// at most once per (peer, operation, sequence) triple.
//
// # Basic Usage
//
//	flash := memory.NewFlash(ctrl, memory.Layout{PageSize: 128, Size: 16384, ProtectFrom: 0x3C00})
//	eeprom := memory.NewEEPROM(ee, 512)
//
//	bl := bootloader.New(radioNode, flash, eeprom,
//	    bootloader.WithVersion("FUNKBOOTm168v1.0"),
//	    bootloader.WithChipInfo(info),
//	    bootloader.WithBootTimeout(1000),
//	)
//
//	ticker := time.NewTicker(time.Millisecond)
//	defer ticker.Stop()
//	if err := bl.Run(ctx, ticker.C); err != nil {
//	    return err
//	}
//	startApplication()
//
// # Thread Safety
//
// A Bootloader is not safe for concurrent use. Tick and Run must be called
// from a single goroutine.
package bootloader
