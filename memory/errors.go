package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrOddLength means a flash write is not a whole number of words
	ErrOddLength = errors.New("flash write length is not a multiple of 2")

	// ErrTooLarge means a transfer exceeds MaxTransfer bytes
	ErrTooLarge = errors.New("transfer exceeds maximum size")

	// ErrOutOfRange means the transfer does not fit inside the memory
	ErrOutOfRange = errors.New("address range outside memory")

	// ErrProtected means a flash write targets the bootloader section
	ErrProtected = errors.New("address range inside protected bootloader section")
)

// SequenceError reports a flash write that does not continue the open page.
type SequenceError struct {
	// Address is the start of the rejected write
	Address uint16

	// Expected is the next address of the open page, valid when Open is true
	Expected uint16

	// Open reports whether a page cursor was open
	Open bool

	// Overflow is set when the write would run past the end of the page
	Overflow bool
}

func (e *SequenceError) Error() string {
	switch {
	case e.Overflow:
		return fmt.Sprintf("flash write at 0x%04X runs past the end of the page", e.Address)
	case e.Open:
		return fmt.Sprintf("flash write at 0x%04X out of order: expected 0x%04X", e.Address, e.Expected)
	default:
		return fmt.Sprintf("flash write at 0x%04X does not start a page", e.Address)
	}
}
