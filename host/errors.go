package host

import (
	"fmt"
)

// DeviceMismatchError indicates that the device chip signature doesn't match the expected one.
type DeviceMismatchError struct {
	Expected [3]byte
	Actual   [3]byte
}

func (e *DeviceMismatchError) Error() string {
	return fmt.Sprintf("device mismatch: expected signature % X, device has % X",
		e.Expected[:], e.Actual[:])
}

// VerifyError indicates that memory read back from the device differs from what was written.
type VerifyError struct {
	Kind     string
	Address  uint16
	Expected byte
	Actual   byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s verification failed at 0x%04X: expected 0x%02X, got 0x%02X",
		e.Kind, e.Address, e.Expected, e.Actual)
}

// TimeoutError indicates that a request was not answered after all retransmissions.
type TimeoutError struct {
	Operation string
	Attempts  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response after %d attempts", e.Operation, e.Attempts)
}
