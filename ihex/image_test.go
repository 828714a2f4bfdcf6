package ihex

import (
	"bytes"
	"strings"
	"testing"
)

func mustParse(t *testing.T, input string) *Image {
	t.Helper()
	img, err := ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	return img
}

func TestPages(t *testing.T) {
	img := mustParse(t, simpleHex)

	pages, err := img.Pages(8, 0x40)
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}

	want := []Page{
		{Address: 0x0000, Data: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0xFF, 0xFF}},
		{Address: 0x0010, Data: []byte{0xAA, 0xBB, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i := range want {
		if pages[i].Address != want[i].Address || !bytes.Equal(pages[i].Data, want[i].Data) {
			t.Errorf("page[%d] = 0x%04X % X, want 0x%04X % X",
				i, pages[i].Address, pages[i].Data, want[i].Address, want[i].Data)
		}
	}
}

func TestPagesErrors(t *testing.T) {
	img := mustParse(t, simpleHex)

	tests := []struct {
		name     string
		pageSize int
		limit    int
		errMsg   string
	}{
		{"page size not a power of two", 6, 0x40, "invalid page size"},
		{"zero page size", 0, 0x40, "invalid page size"},
		{"image beyond limit", 8, 0x10, "beyond limit"},
		{"limit beyond 16 bits", 8, 0x20000, "addresses are 16 bits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := img.Pages(tt.pageSize, tt.limit)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Pages() error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestBytesAndDigest(t *testing.T) {
	img := mustParse(t, simpleHex)

	want := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0xAA, 0xBB,
	}
	if got := img.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Bytes() = % X, want % X", got, want)
	}
	if img.End() != 0x12 {
		t.Errorf("End() = 0x%X, want 0x12", img.End())
	}

	if img.Digest() != Sum(want) {
		t.Error("Digest() differs from Sum(Bytes())")
	}

	changed := append([]byte(nil), want...)
	changed[17] = 0xBC
	if img.Digest() == Sum(changed) {
		t.Error("Digest() did not change with the content")
	}
}

func TestEmptyImage(t *testing.T) {
	img := &Image{}
	if img.End() != 0 || img.Size() != 0 || len(img.Bytes()) != 0 {
		t.Errorf("empty image End = %d Size = %d", img.End(), img.Size())
	}
	pages, err := img.Pages(128, 0x3C00)
	if err != nil || len(pages) != 0 {
		t.Errorf("Pages() = %v, %v", pages, err)
	}
}
