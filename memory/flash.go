package memory

import "fmt"

// MaxTransfer is the largest read or write handled in one call.
const MaxTransfer = 32

// Layout describes the code memory geometry.
type Layout struct {
	// PageSize is the erase page size in bytes (a power of two)
	PageSize int

	// Size is the flash size in bytes; 0 means the full 64 KiB address space
	Size int

	// ProtectFrom is the first address that must never be written,
	// usually the bootloader start; 0 disables protection
	ProtectFrom int
}

// Flash is the page-buffered code memory programmer.
// It owns the page cursor, so exactly one Flash must exist per device.
type Flash struct {
	hw     FlashController
	layout Layout

	// page cursor
	pageStart uint16
	remaining int
}

// NewFlash creates a Flash programmer on top of hw.
func NewFlash(hw FlashController, layout Layout) *Flash {
	if hw == nil {
		panic("flash controller cannot be nil")
	}
	if layout.PageSize <= 0 || layout.PageSize&(layout.PageSize-1) != 0 {
		panic(fmt.Sprintf("invalid flash page size %d", layout.PageSize))
	}
	if layout.Size == 0 {
		layout.Size = 1 << 16
	}
	if layout.ProtectFrom == 0 {
		layout.ProtectFrom = layout.Size
	}

	return &Flash{hw: hw, layout: layout}
}

// Layout returns the flash geometry.
func (f *Flash) Layout() Layout { return f.layout }

// Read copies len(dst) bytes starting at addr. It has no side effects.
func (f *Flash) Read(dst []byte, addr uint16) error {
	if len(dst) > MaxTransfer {
		return ErrTooLarge
	}
	if int(addr)+len(dst) > f.layout.Size {
		return ErrOutOfRange
	}

	for i := range dst {
		dst[i] = f.hw.ReadByte(addr + uint16(i))
	}
	return nil
}

// Write stages src at addr into the page buffer.
//
// A page-aligned addr erases the page and opens the cursor; otherwise addr
// must continue the open page. The page is programmed when its last word is
// staged. All checks happen before the hardware is touched.
func (f *Flash) Write(src []byte, addr uint16) error {
	if len(src)%2 != 0 {
		return ErrOddLength
	}
	if len(src) > MaxTransfer {
		return ErrTooLarge
	}
	end := int(addr) + len(src)
	if end > f.layout.Size {
		return ErrOutOfRange
	}
	if end > f.layout.ProtectFrom {
		return ErrProtected
	}
	if len(src) == 0 {
		return nil
	}

	aligned := int(addr)&(f.layout.PageSize-1) == 0
	if !aligned {
		if f.remaining == 0 {
			return &SequenceError{Address: addr}
		}
		if next := f.next(); addr != next {
			return &SequenceError{Address: addr, Expected: next, Open: true}
		}
	}

	available := f.remaining
	if aligned {
		available = f.layout.PageSize
	}
	if len(src) > available {
		return &SequenceError{Address: addr, Overflow: true}
	}

	if aligned {
		f.pageStart = addr
		f.remaining = f.layout.PageSize
		f.hw.ErasePage(f.pageStart)
	}

	for i := 0; i < len(src); i += 2 {
		word := uint16(src[i]) | uint16(src[i+1])<<8
		f.hw.FillWord(addr, word)
		addr += 2
		f.remaining -= 2
	}

	if f.remaining == 0 {
		f.hw.WritePage(f.pageStart)
		f.hw.EnableRWW()
	}
	return nil
}

// Cursor reports the open page and the bytes still missing from it.
func (f *Flash) Cursor() (pageStart uint16, remaining int, open bool) {
	return f.pageStart, f.remaining, f.remaining > 0
}

func (f *Flash) next() uint16 {
	return f.pageStart + uint16(f.layout.PageSize-f.remaining)
}
