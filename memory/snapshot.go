package memory

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// Snapshot format (zstd compressed):
//
//	[MAGIC(4)][VERSION(1)][FLASH_LEN(4)][EEPROM_LEN(4)][FLASH][EEPROM][BLAKE3(32)]
//
// Lengths are big-endian. The digest covers everything before it.
const (
	snapshotMagic   = "FBSN"
	snapshotVersion = 1
	snapshotHeader  = 4 + 1 + 4 + 4
	digestSize      = 32
)

// ErrSnapshotCorrupt means a snapshot failed its integrity check.
var ErrSnapshotCorrupt = errors.New("snapshot corrupt")

var (
	snapshotEncoder, _ = zstd.NewWriter(nil)
	snapshotDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// SaveSnapshot writes the contents of flash and eeprom to w.
func SaveSnapshot(w io.Writer, flash *SimFlash, eeprom *SimEEPROM) error {
	fm := flash.Bytes()
	em := eeprom.Bytes()

	raw := make([]byte, 0, snapshotHeader+len(fm)+len(em)+digestSize)
	raw = append(raw, snapshotMagic...)
	raw = append(raw, snapshotVersion)
	raw = binary.BigEndian.AppendUint32(raw, uint32(len(fm)))
	raw = binary.BigEndian.AppendUint32(raw, uint32(len(em)))
	raw = append(raw, fm...)
	raw = append(raw, em...)
	raw = append(raw, digest(raw)...)

	if _, err := w.Write(snapshotEncoder.EncodeAll(raw, nil)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores flash and eeprom from a snapshot written by
// SaveSnapshot. The memory sizes must match the snapshot.
func LoadSnapshot(r io.Reader, flash *SimFlash, eeprom *SimEEPROM) error {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	raw, err := snapshotDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}

	if len(raw) < snapshotHeader+digestSize {
		return fmt.Errorf("%w: %d bytes", ErrSnapshotCorrupt, len(raw))
	}
	if string(raw[0:4]) != snapshotMagic {
		return fmt.Errorf("%w: bad magic %q", ErrSnapshotCorrupt, raw[0:4])
	}
	if raw[4] != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", raw[4])
	}

	body, sum := raw[:len(raw)-digestSize], raw[len(raw)-digestSize:]
	if !bytes.Equal(digest(body), sum) {
		return fmt.Errorf("%w: digest mismatch", ErrSnapshotCorrupt)
	}

	flashLen := int(binary.BigEndian.Uint32(raw[5:9]))
	eepromLen := int(binary.BigEndian.Uint32(raw[9:13]))
	if snapshotHeader+flashLen+eepromLen != len(body) {
		return fmt.Errorf("%w: length mismatch", ErrSnapshotCorrupt)
	}

	flashSize := len(flash.Bytes())
	eepromSize := len(eeprom.Bytes())
	if flashLen != flashSize || eepromLen != eepromSize {
		return fmt.Errorf("snapshot holds %d bytes flash and %d bytes eeprom, device has %d and %d",
			flashLen, eepromLen, flashSize, eepromSize)
	}

	data := body[snapshotHeader:]
	flash.Load(0, data[:flashLen])
	eeprom.Load(0, data[flashLen:])
	return nil
}

func digest(b []byte) []byte {
	h := blake3.New()
	_, _ = h.Write(b)
	return h.Sum(nil)
}
