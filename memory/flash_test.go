package memory

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// MockFlash records every controller call in order.
type MockFlash struct {
	mem   map[uint16]byte
	calls []string
}

func NewMockFlash() *MockFlash {
	return &MockFlash{mem: make(map[uint16]byte)}
}

func (m *MockFlash) ReadByte(addr uint16) byte {
	m.calls = append(m.calls, fmt.Sprintf("read %04X", addr))
	return m.mem[addr]
}

func (m *MockFlash) ErasePage(addr uint16) {
	m.calls = append(m.calls, fmt.Sprintf("erase %04X", addr))
}

func (m *MockFlash) FillWord(addr uint16, word uint16) {
	m.calls = append(m.calls, fmt.Sprintf("fill %04X=%04X", addr, word))
}

func (m *MockFlash) WritePage(addr uint16) {
	m.calls = append(m.calls, fmt.Sprintf("write %04X", addr))
}

func (m *MockFlash) EnableRWW() {
	m.calls = append(m.calls, "rww")
}

func (m *MockFlash) Reset() { m.calls = nil }

func TestFlashWriteSequence(t *testing.T) {
	hw := NewMockFlash()
	flash := NewFlash(hw, Layout{PageSize: 8, Size: 64})

	if err := flash.Write([]byte{0x01, 0x02, 0x03, 0x04}, 0x0008); err != nil {
		t.Fatalf("first chunk: %v", err)
	}
	if err := flash.Write([]byte{0x05, 0x06, 0x07, 0x08}, 0x000C); err != nil {
		t.Fatalf("second chunk: %v", err)
	}

	want := []string{
		"erase 0008",
		"fill 0008=0201",
		"fill 000A=0403",
		"fill 000C=0605",
		"fill 000E=0807",
		"write 0008",
		"rww",
	}
	if len(hw.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", hw.calls, want)
	}
	for i := range want {
		if hw.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, hw.calls[i], want[i])
		}
	}

	if _, _, open := flash.Cursor(); open {
		t.Error("cursor still open after the page was committed")
	}
}

func TestFlashWriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   [][2]int // {addr, len} writes that must succeed first
		addr    uint16
		size    int
		wantErr error
		wantSeq bool
	}{
		{name: "odd length", addr: 0x0000, size: 3, wantErr: ErrOddLength},
		{name: "too large", addr: 0x0000, size: 34, wantErr: ErrTooLarge},
		{name: "past end of flash", addr: 0x00FC, size: 8, wantErr: ErrOutOfRange},
		{name: "bootloader section", addr: 0x00C0, size: 4, wantErr: ErrProtected},
		{name: "misaligned first write", addr: 0x0004, size: 4, wantSeq: true},
		{name: "gap in page", setup: [][2]int{{0x0000, 4}}, addr: 0x0008, size: 4, wantSeq: true},
		{name: "rewind in page", setup: [][2]int{{0x0000, 8}}, addr: 0x0004, size: 4, wantSeq: true},
		{name: "overflow page", setup: [][2]int{{0x0020, 28}}, addr: 0x003C, size: 8, wantSeq: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hw := NewMockFlash()
			flash := NewFlash(hw, Layout{PageSize: 32, Size: 0x100, ProtectFrom: 0xC0})

			for _, w := range tt.setup {
				if err := flash.Write(make([]byte, w[1]), uint16(w[0])); err != nil {
					t.Fatalf("setup write at 0x%04X: %v", w[0], err)
				}
			}
			hw.Reset()

			err := flash.Write(make([]byte, tt.size), tt.addr)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if tt.wantSeq {
				var se *SequenceError
				if !errors.As(err, &se) {
					t.Fatalf("error = %v, want *SequenceError", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			if len(hw.calls) != 0 {
				t.Errorf("rejected write touched hardware: %v", hw.calls)
			}
		})
	}
}

func TestFlashRestartPage(t *testing.T) {
	hw := NewMockFlash()
	flash := NewFlash(hw, Layout{PageSize: 16, Size: 64})

	if err := flash.Write(make([]byte, 8), 0x0000); err != nil {
		t.Fatal(err)
	}
	// an aligned write abandons the open page and starts over
	if err := flash.Write(make([]byte, 8), 0x0010); err != nil {
		t.Fatal(err)
	}

	start, remaining, open := flash.Cursor()
	if !open || start != 0x0010 || remaining != 8 {
		t.Errorf("Cursor() = (0x%04X, %d, %v), want (0x0010, 8, true)", start, remaining, open)
	}
}

func TestFlashPageProgramming(t *testing.T) {
	const pageSize = 128
	sim := NewSimFlash(1024, pageSize)
	flash := NewFlash(sim, Layout{PageSize: pageSize, Size: 1024})

	old := bytes.Repeat([]byte{0xA5}, pageSize)
	sim.Load(0x0100, old)

	page := make([]byte, pageSize)
	for i := range page {
		page[i] = byte(i * 3)
	}

	readback := make([]byte, MaxTransfer)
	for off := 0; off < pageSize; off += MaxTransfer {
		// everything before the final chunk still shows the old page
		if err := flash.Read(readback, 0x0100); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(readback, old[:MaxTransfer]) {
			t.Fatalf("before chunk at +%d: read % X, want old content", off, readback)
		}

		if err := flash.Write(page[off:off+MaxTransfer], uint16(0x0100+off)); err != nil {
			t.Fatalf("write chunk at +%d: %v", off, err)
		}
	}

	got := sim.Bytes()[0x0100 : 0x0100+pageSize]
	if !bytes.Equal(got, page) {
		t.Errorf("page = % X, want % X", got, page)
	}
	if sim.RWWBusy() {
		t.Error("application section not re-enabled after commit")
	}
	if sim.Erases != 1 || sim.PageWrites != 1 || sim.Fills != pageSize/2 {
		t.Errorf("counters: erases=%d writes=%d fills=%d", sim.Erases, sim.PageWrites, sim.Fills)
	}
}

func TestFlashRead(t *testing.T) {
	sim := NewSimFlash(256, 32)
	sim.Load(0x10, []byte{1, 2, 3, 4})
	flash := NewFlash(sim, Layout{PageSize: 32, Size: 256})

	buf := make([]byte, 4)
	if err := flash.Read(buf, 0x10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4}) {
		t.Errorf("Read() = % X", buf)
	}

	if err := flash.Read(make([]byte, 32), 0xF0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("read past end: error = %v, want ErrOutOfRange", err)
	}
	if err := flash.Read(make([]byte, 33), 0x00); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized read: error = %v, want ErrTooLarge", err)
	}

	// reading the bootloader section is allowed
	protected := NewFlash(sim, Layout{PageSize: 32, Size: 256, ProtectFrom: 0xC0})
	if err := protected.Read(make([]byte, 32), 0xE0); err != nil {
		t.Errorf("read of bootloader section: %v", err)
	}
}

func TestNewFlashPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewFlash with page size 24 did not panic")
		}
	}()
	NewFlash(NewMockFlash(), Layout{PageSize: 24})
}
