package ihex

import (
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// Fill is the value of flash bytes not covered by the image.
const Fill = 0xFF

// DigestSize is the length of an image digest.
const DigestSize = 32

// Image is a parsed firmware image.
type Image struct {
	// Segments holds the data in ascending address order. Contiguous data
	// records are merged into one segment; segments never overlap.
	Segments []*Segment

	// StartAddress is the entry point from a start address record
	StartAddress uint32

	// HasStart reports whether the file contained a start address record
	HasStart bool
}

// Segment is a contiguous run of image data.
type Segment struct {
	// Address is the absolute address of the first byte
	Address uint32

	// Data is the segment content
	Data []byte
}

// End returns the address after the segment.
func (s *Segment) End() uint32 { return s.Address + uint32(len(s.Data)) }

// Page is one erase page of image data.
type Page struct {
	// Address is the page-aligned start address
	Address uint16

	// Data is exactly one page long
	Data []byte
}

// Size returns the number of data bytes in the image.
func (img *Image) Size() int {
	n := 0
	for _, s := range img.Segments {
		n += len(s.Data)
	}
	return n
}

// End returns the address after the last data byte, or 0 for an empty image.
func (img *Image) End() uint32 {
	if len(img.Segments) == 0 {
		return 0
	}
	return img.Segments[len(img.Segments)-1].End()
}

// Bytes returns the image from address 0 to End, with gaps set to Fill.
func (img *Image) Bytes() []byte {
	flat := make([]byte, img.End())
	for i := range flat {
		flat[i] = Fill
	}
	for _, s := range img.Segments {
		copy(flat[s.Address:], s.Data)
	}
	return flat
}

// Digest returns the BLAKE3 hash of Bytes.
func (img *Image) Digest() [DigestSize]byte {
	return Sum(img.Bytes())
}

// Sum returns the BLAKE3 hash of b, as used by Image.Digest.
func Sum(b []byte) [DigestSize]byte {
	h := blake3.New()
	_, _ = h.Write(b)

	var out [DigestSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Pages splits the image into the erase pages it touches, in ascending
// order. Bytes of a page not covered by the image are set to Fill.
// It fails if pageSize is not a power of two or if the image reaches
// beyond limit, which is usually the start of the bootloader section.
func (img *Image) Pages(pageSize, limit int) ([]Page, error) {
	if pageSize <= 0 || pageSize&(pageSize-1) != 0 {
		return nil, fmt.Errorf("invalid page size %d: must be a power of two", pageSize)
	}
	if limit > 0x10000 {
		return nil, fmt.Errorf("invalid limit 0x%X: addresses are 16 bits", limit)
	}
	if end := img.End(); end > uint32(limit) {
		return nil, fmt.Errorf("image ends at 0x%04X, beyond limit 0x%04X", end, limit)
	}

	byAddr := make(map[uint32][]byte)
	for _, s := range img.Segments {
		for i, b := range s.Data {
			addr := s.Address + uint32(i)
			base := addr &^ uint32(pageSize-1)
			page, ok := byAddr[base]
			if !ok {
				page = make([]byte, pageSize)
				for j := range page {
					page[j] = Fill
				}
				byAddr[base] = page
			}
			page[addr-base] = b
		}
	}

	pages := make([]Page, 0, len(byAddr))
	for base, data := range byAddr {
		pages = append(pages, Page{Address: uint16(base), Data: data})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Address < pages[j].Address })
	return pages, nil
}
