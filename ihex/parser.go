package ihex

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Record types.
const (
	RecordData                   = 0x00
	RecordEOF                    = 0x01
	RecordExtendedSegmentAddress = 0x02
	RecordStartSegmentAddress    = 0x03
	RecordExtendedLinearAddress  = 0x04
	RecordStartLinearAddress     = 0x05
)

// Constants for Intel HEX parsing.
const (
	// StartCode begins every record line
	StartCode = ':'

	// MinimumRecordBytes is ByteCount(1) + Address(2) + RecordType(1) + Checksum(1)
	MinimumRecordBytes = 5

	// RecordHeaderSize is the size of the fields before the data
	RecordHeaderSize = 4
)

// Record is one decoded Intel HEX line.
type Record struct {
	Type     byte
	Address  uint16
	Data     []byte
	Checksum byte
}

// Parse parses an Intel HEX file from the given file path.
//
// Example:
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d bytes up to 0x%04X\n", img.Size(), img.End())
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses an Intel HEX image from any io.Reader.
// Lines after the end of file record are ignored.
func ParseReader(r io.Reader) (*Image, error) {
	scanner := bufio.NewScanner(r)

	img := &Image{}
	var chunks []*Segment
	var base uint32
	eof := false

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		rec, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		switch rec.Type {
		case RecordData:
			if len(rec.Data) > 0 {
				chunk := &Segment{Address: base + uint32(rec.Address), Data: rec.Data}
				chunks = append(chunks, chunk)
			}

		case RecordEOF:
			eof = true

		case RecordExtendedSegmentAddress, RecordExtendedLinearAddress:
			if len(rec.Data) != 2 {
				return nil, fmt.Errorf("line %d: address record needs 2 data bytes, got %d", lineNum, len(rec.Data))
			}
			value := uint32(rec.Data[0])<<8 | uint32(rec.Data[1])
			if rec.Type == RecordExtendedSegmentAddress {
				base = value << 4
			} else {
				base = value << 16
			}

		case RecordStartSegmentAddress, RecordStartLinearAddress:
			if len(rec.Data) != 4 {
				return nil, fmt.Errorf("line %d: start record needs 4 data bytes, got %d", lineNum, len(rec.Data))
			}
			hi := uint32(rec.Data[0])<<8 | uint32(rec.Data[1])
			lo := uint32(rec.Data[2])<<8 | uint32(rec.Data[3])
			if rec.Type == RecordStartSegmentAddress {
				img.StartAddress = hi<<4 + lo
			} else {
				img.StartAddress = hi<<16 | lo
			}
			img.HasStart = true

		default:
			return nil, fmt.Errorf("line %d: unsupported record type 0x%02X", lineNum, rec.Type)
		}

		if eof {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !eof {
		return nil, fmt.Errorf("missing end of file record")
	}

	segments, err := merge(chunks)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("no data records found in file")
	}
	img.Segments = segments

	return img, nil
}

// parseRecord decodes and verifies one record line.
func parseRecord(line string) (*Record, error) {
	if line[0] != StartCode {
		return nil, fmt.Errorf("record must start with ':'")
	}

	data, err := hex.DecodeString(line[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}

	if len(data) < MinimumRecordBytes {
		return nil, fmt.Errorf("record too short: got %d bytes, minimum is %d", len(data), MinimumRecordBytes)
	}

	count := int(data[0])
	if len(data) != MinimumRecordBytes+count {
		return nil, fmt.Errorf("data length mismatch: got %d bytes, expected %d", len(data), MinimumRecordBytes+count)
	}

	checksum := data[len(data)-1]
	if calculated := calculateChecksum(data[:len(data)-1]); checksum != calculated {
		return nil, fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X", checksum, calculated)
	}

	rec := &Record{
		Type:     data[3],
		Address:  uint16(data[1])<<8 | uint16(data[2]), // Big-endian
		Data:     make([]byte, count),
		Checksum: checksum,
	}
	copy(rec.Data, data[RecordHeaderSize:RecordHeaderSize+count])

	return rec, nil
}

// merge sorts the data chunks and joins contiguous ones.
func merge(chunks []*Segment) ([]*Segment, error) {
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Address < chunks[j].Address })

	var out []*Segment
	for _, c := range chunks {
		if len(out) > 0 {
			last := out[len(out)-1]
			switch {
			case c.Address < last.End():
				return nil, fmt.Errorf("overlapping data at 0x%04X", c.Address)
			case c.Address == last.End():
				last.Data = append(last.Data, c.Data...)
				continue
			}
		}
		out = append(out, &Segment{Address: c.Address, Data: append([]byte(nil), c.Data...)})
	}
	return out, nil
}

// calculateChecksum computes the record checksum.
// Uses basic summation with 2's complement.
func calculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1 // 2's complement
}
