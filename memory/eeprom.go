package memory

// EEPROM is the byte-wise configuration memory programmer.
type EEPROM struct {
	hw   EEPROMController
	size int
}

// NewEEPROM creates an EEPROM programmer for size bytes of configuration memory.
func NewEEPROM(hw EEPROMController, size int) *EEPROM {
	if hw == nil {
		panic("eeprom controller cannot be nil")
	}
	return &EEPROM{hw: hw, size: size}
}

// Size returns the configuration memory size in bytes.
func (e *EEPROM) Size() int { return e.size }

// Read copies len(dst) bytes starting at addr.
func (e *EEPROM) Read(dst []byte, addr uint16) error {
	if err := e.check(addr, len(dst)); err != nil {
		return err
	}

	for i := range dst {
		dst[i] = e.hw.ReadByte(addr + uint16(i))
	}
	return nil
}

// Write programs src starting at addr, one byte at a time.
func (e *EEPROM) Write(src []byte, addr uint16) error {
	if err := e.check(addr, len(src)); err != nil {
		return err
	}

	for i, v := range src {
		e.hw.WriteByte(addr+uint16(i), v)
	}
	return nil
}

func (e *EEPROM) check(addr uint16, n int) error {
	if n > MaxTransfer {
		return ErrTooLarge
	}
	if int(addr)+n > e.size {
		return ErrOutOfRange
	}
	return nil
}
