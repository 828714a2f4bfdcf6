package protocol

import "encoding/binary"

// Message is one funkboot request or response.
type Message struct {
	// Command selects the operation and direction
	Command Command

	// Seq is copied verbatim from request to response
	Seq uint8

	// Cause is the result code (responses only, ignored on requests)
	Cause Cause

	// Payload is the command specific body; its arm is fixed by Command
	Payload Payload
}

// Payload is the command specific part of a Message.
// The set of implementations is closed: Empty, SwitchApp, Version, ChipInfo,
// ReadRequest, ReadResponse and WriteRequest.
type Payload interface {
	size() int
	appendTo(b []byte) []byte
}

// Empty is the payload of requests and responses that carry no body.
type Empty struct{}

func (Empty) size() int { return 0 }

func (Empty) appendTo(b []byte) []byte { return b }

// SwitchApp is the payload of a switch-application request.
type SwitchApp struct {
	Mode BootMode
}

func (SwitchApp) size() int { return SwitchAppPayloadSize }

func (p SwitchApp) appendTo(b []byte) []byte { return append(b, byte(p.Mode)) }

// Version is the fixed-size version identifier, e.g. "FUNKBOOTm168v1.0".
type Version [VersionSize]byte

// NewVersion returns s as a version record, truncated or zero padded to VersionSize.
func NewVersion(s string) Version {
	var v Version
	copy(v[:], s)
	return v
}

func (v Version) String() string {
	n := len(v)
	for n > 0 && v[n-1] == 0 {
		n--
	}
	return string(v[:n])
}

func (Version) size() int { return VersionSize }

func (v Version) appendTo(b []byte) []byte { return append(b, v[:]...) }

// ChipInfo describes the device memory layout.
//
// Wire format (ChipInfoSize bytes, multi-byte fields big-endian):
//
//	[SIGNATURE(3)][PAGESIZE(1)][BOOTSTART_H][BOOTSTART_L][EESIZE_H][EESIZE_L]
type ChipInfo struct {
	// Signature is the three device signature bytes
	Signature [3]byte

	// PageSize is the flash erase page size in bytes
	PageSize uint8

	// BootloaderStart is the first flash address of the bootloader region
	BootloaderStart uint16

	// EEPROMSize is the size of the configuration memory in bytes
	EEPROMSize uint16
}

func (ChipInfo) size() int { return ChipInfoSize }

func (c ChipInfo) appendTo(b []byte) []byte {
	b = append(b, c.Signature[:]...)
	b = append(b, c.PageSize)
	b = binary.BigEndian.AppendUint16(b, c.BootloaderStart)
	return binary.BigEndian.AppendUint16(b, c.EEPROMSize)
}

// ReadRequest is the payload of a read-memory request.
//
// Wire format:
//
//	[ADDRESS_L][ADDRESS_H][MEMTYPE][SIZE]
type ReadRequest struct {
	Address uint16
	Kind    MemoryKind
	Size    uint8
}

func (ReadRequest) size() int { return MemoryRequestHeaderSize }

func (r ReadRequest) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, r.Address)
	return append(b, byte(r.Kind), r.Size)
}

// ReadResponse is the payload of a read-memory response.
type ReadResponse struct {
	Data []byte
}

func (r ReadResponse) size() int { return len(r.Data) }

func (r ReadResponse) appendTo(b []byte) []byte { return append(b, r.Data...) }

// WriteRequest is the payload of a write-memory request.
// The SIZE byte on the wire is len(Data).
//
// Wire format:
//
//	[ADDRESS_L][ADDRESS_H][MEMTYPE][SIZE][DATA(SIZE)]
type WriteRequest struct {
	Address uint16
	Kind    MemoryKind
	Data    []byte
}

func (w WriteRequest) size() int { return MemoryRequestHeaderSize + len(w.Data) }

func (w WriteRequest) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, w.Address)
	b = append(b, byte(w.Kind), byte(len(w.Data)))
	return append(b, w.Data...)
}
