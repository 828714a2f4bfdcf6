package memory

import "sync"

// Erased is the value of an erased flash or EEPROM cell.
const Erased = 0xFF

// SimFlash is an in-memory FlashController.
//
// Programming follows the hardware: a page write can only clear bits, so
// pages must be erased first. The erase of a page becomes visible together
// with its programming, because the application section cannot be read
// while it is being rewritten; until then reads return the old content.
type SimFlash struct {
	mu       sync.Mutex
	mem      []byte
	buf      []byte
	pageSize int
	erased   int // base of the erased page awaiting programming, -1 if none
	rwwBusy  bool

	// operation counters
	Reads, Erases, Fills, PageWrites int
}

// NewSimFlash returns an erased flash of size bytes.
func NewSimFlash(size, pageSize int) *SimFlash {
	f := &SimFlash{
		mem:      make([]byte, size),
		buf:      make([]byte, pageSize),
		pageSize: pageSize,
		erased:   -1,
	}
	fill(f.mem, Erased)
	fill(f.buf, Erased)
	return f
}

func (f *SimFlash) ReadByte(addr uint16) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	return f.mem[int(addr)%len(f.mem)]
}

func (f *SimFlash) ErasePage(addr uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Erases++
	f.erased = f.base(addr)
	f.rwwBusy = true
}

func (f *SimFlash) FillWord(addr uint16, word uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fills++
	off := int(addr) & (f.pageSize - 1) &^ 1
	f.buf[off] = byte(word)
	f.buf[off+1] = byte(word >> 8)
}

func (f *SimFlash) WritePage(addr uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PageWrites++
	base := f.base(addr)
	page := f.mem[base : base+f.pageSize]
	if f.erased == base {
		fill(page, Erased)
		f.erased = -1
	}
	for i := range page {
		page[i] &= f.buf[i]
	}
	fill(f.buf, Erased)
	f.rwwBusy = true
}

func (f *SimFlash) EnableRWW() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rwwBusy = false
}

// RWWBusy reports whether the application section is still locked by an
// erase or write that was not followed by EnableRWW.
func (f *SimFlash) RWWBusy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rwwBusy
}

// Load copies data into the flash at addr, bypassing the page logic.
func (f *SimFlash) Load(addr int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.mem[addr:], data)
}

// Bytes returns a copy of the flash contents.
func (f *SimFlash) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.mem...)
}

// ResetCounters zeroes the operation counters.
func (f *SimFlash) ResetCounters() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads, f.Erases, f.Fills, f.PageWrites = 0, 0, 0, 0
}

func (f *SimFlash) base(addr uint16) int {
	return int(addr) &^ (f.pageSize - 1) % len(f.mem)
}

// SimEEPROM is an in-memory EEPROMController.
type SimEEPROM struct {
	mu  sync.Mutex
	mem []byte

	// operation counters
	Reads, Writes int
}

// NewSimEEPROM returns an erased EEPROM of size bytes.
func NewSimEEPROM(size int) *SimEEPROM {
	e := &SimEEPROM{mem: make([]byte, size)}
	fill(e.mem, Erased)
	return e
}

func (e *SimEEPROM) ReadByte(addr uint16) byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Reads++
	return e.mem[int(addr)%len(e.mem)]
}

func (e *SimEEPROM) WriteByte(addr uint16, v byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Writes++
	e.mem[int(addr)%len(e.mem)] = v
}

// Load copies data into the EEPROM at addr.
func (e *SimEEPROM) Load(addr int, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	copy(e.mem[addr:], data)
}

// Bytes returns a copy of the EEPROM contents.
func (e *SimEEPROM) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.mem...)
}

// ResetCounters zeroes the operation counters.
func (e *SimEEPROM) ResetCounters() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Reads, e.Writes = 0, 0
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
