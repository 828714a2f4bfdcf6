package memory

// FlashController is the self-programming interface of the code memory.
// Erase and write block until the hardware reports completion.
type FlashController interface {
	// ReadByte returns the byte at addr
	ReadByte(addr uint16) byte

	// ErasePage erases the page containing addr
	ErasePage(addr uint16)

	// FillWord stages a little-endian word into the temporary page buffer
	FillWord(addr uint16, word uint16)

	// WritePage programs the page buffer into the page containing addr
	WritePage(addr uint16)

	// EnableRWW re-enables reads of the application section after a write
	EnableRWW()
}

// EEPROMController is the byte interface of the configuration memory.
type EEPROMController interface {
	// ReadByte returns the byte at addr
	ReadByte(addr uint16) byte

	// WriteByte arms a write of v at addr with interrupts held off for the
	// arming sequence only, then blocks until the write completes
	WriteByte(addr uint16, v byte)
}
