package protocol

import (
	"errors"
	"fmt"
)

// Decode and encode failures. DecodeError wraps one of these.
var (
	// ErrShortHeader means the buffer cannot hold COMMAND, SEQNUM and CAUSE
	ErrShortHeader = errors.New("message shorter than header")

	// ErrUnknownCommand means the command byte is not in the command table
	ErrUnknownCommand = errors.New("unknown command")

	// ErrShortPayload means the payload is shorter than the layout of its command
	ErrShortPayload = errors.New("payload too short")

	// ErrPayloadTooLarge means a read or write size exceeds MaxDataSize
	ErrPayloadTooLarge = errors.New("payload exceeds maximum data size")

	// ErrPayloadMismatch means the payload arm does not belong to the command
	ErrPayloadMismatch = errors.New("payload does not match command")
)

// DecodeError describes a message that could not be decoded.
// Command and Seq are valid whenever Err is not ErrShortHeader, so the
// receiver can still address a response to the request.
type DecodeError struct {
	Command Command
	Seq     uint8
	Err     error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrShortHeader) {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %s (0x%02X) seq %d: %v", e.Command, byte(e.Command), e.Seq, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CauseError represents a response whose cause is not CauseSuccess.
type CauseError struct {
	// Operation is the command that failed
	Operation string

	// Cause is the result code from the bootloader
	Cause Cause
}

func (e *CauseError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)", e.Operation, e.Cause, byte(e.Cause))
}

// IsCauseError returns true if err is or wraps a CauseError.
func IsCauseError(err error) bool {
	var ce *CauseError
	return errors.As(err, &ce)
}
