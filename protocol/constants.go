package protocol

import "fmt"

// ProtocolVersion is the funkboot protocol revision implemented by this library.
const ProtocolVersion = "1.0"

// Message layout constants.
const (
	// HeaderSize is the fixed message header: COMMAND(1) + SEQNUM(1) + CAUSE(1)
	HeaderSize = 3

	// MaxDataSize is the largest read or write transfer carried by one message
	MaxDataSize = 32

	// VersionSize is the length of the version identifier record
	VersionSize = 16

	// ChipInfoSize is the length of the chip descriptor record
	ChipInfoSize = 8

	// SwitchAppPayloadSize is the payload size of a switch-application request
	SwitchAppPayloadSize = 1

	// MemoryRequestHeaderSize is ADDRESS(2) + MEMTYPE(1) + SIZE(1)
	MemoryRequestHeaderSize = 4

	// MaxMessageSize is the largest encoded message (a full write request)
	MaxMessageSize = HeaderSize + MemoryRequestHeaderSize + MaxDataSize
)

// Message type bits, carried in the top two bits of the command byte.
const (
	// TypeRequest marks a master -> slave request
	TypeRequest = 0x00

	// TypeConfirmation marks a master -> slave confirmation
	TypeConfirmation = 0x40

	// TypeIndication marks a slave -> master indication
	TypeIndication = 0x80

	// TypeResponse marks a slave -> master response
	TypeResponse = 0xC0

	// TypeMask selects the message type bits
	TypeMask = 0xC0

	// OperationMask selects the operation bits
	OperationMask = 0x3F

	// ResponseFlag is OR'd into a request command to form the bootloader's
	// answer on the wire (0x21 -> 0x61).
	ResponseFlag = 0x40
)

// Command is the first byte of every message.
type Command byte

// Request command codes.
const (
	// CmdSwitchApp leaves the bootloader or stays in it
	CmdSwitchApp Command = TypeRequest | 0x20

	// CmdGetVersion returns the 16-byte version identifier
	CmdGetVersion Command = TypeRequest | 0x21

	// CmdGetChipInfo returns the 8-byte chip descriptor
	CmdGetChipInfo Command = TypeRequest | 0x22

	// CmdReadMemory reads up to MaxDataSize bytes of flash or EEPROM
	CmdReadMemory Command = TypeRequest | 0x23

	// CmdWriteMemory writes up to MaxDataSize bytes of flash or EEPROM
	CmdWriteMemory Command = TypeRequest | 0x24
)

// Response command codes.
const (
	CmdSwitchAppResponse   Command = ResponseFlag | 0x20
	CmdGetVersionResponse  Command = ResponseFlag | 0x21
	CmdGetChipInfoResponse Command = ResponseFlag | 0x22
	CmdReadMemoryResponse  Command = ResponseFlag | 0x23
	CmdWriteMemoryResponse Command = ResponseFlag | 0x24
)

// Operation returns the operation bits of the command.
func (c Command) Operation() byte { return byte(c) & OperationMask }

// Type returns the message type bits of the command.
func (c Command) Type() byte { return byte(c) & TypeMask }

// IsRequest reports whether c carries the request type bits.
func (c Command) IsRequest() bool { return c.Type() == TypeRequest }

// IsResponse reports whether c is a bootloader answer.
func (c Command) IsResponse() bool { return c.Type() == ResponseFlag }

// Response returns the response command answering c.
func (c Command) Response() Command { return c | ResponseFlag }

// Known reports whether the command is one of the five request or five response codes.
func (c Command) Known() bool {
	if !c.IsRequest() && !c.IsResponse() {
		return false
	}
	op := c.Operation()
	return op >= CmdSwitchApp.Operation() && op <= CmdWriteMemory.Operation()
}

func (c Command) String() string {
	var name string
	switch Command(c.Operation()) {
	case CmdSwitchApp:
		name = "switch-app"
	case CmdGetVersion:
		name = "get-version"
	case CmdGetChipInfo:
		name = "get-chip-info"
	case CmdReadMemory:
		name = "read-memory"
	case CmdWriteMemory:
		name = "write-memory"
	default:
		return "unknown(0x" + hexByte(byte(c)) + ")"
	}
	switch c.Type() {
	case TypeRequest:
		return name
	case ResponseFlag:
		return name + " response"
	default:
		return name + " (type 0x" + hexByte(c.Type()) + ")"
	}
}

// Cause is the result code carried in byte 2 of a response.
type Cause byte

// Cause codes.
const (
	// CauseSuccess indicates the request was executed
	CauseSuccess Cause = 0x00

	// CauseNotSupported indicates the command is not recognized
	CauseNotSupported Cause = 0xF0

	// CauseInvalidParameter indicates a malformed mode, memory type, size or address
	CauseInvalidParameter Cause = 0xF1

	// CauseUnspecifiedError indicates the request could not be executed
	CauseUnspecifiedError Cause = 0xFF
)

func (c Cause) String() string {
	switch c {
	case CauseSuccess:
		return "success"
	case CauseNotSupported:
		return "not supported"
	case CauseInvalidParameter:
		return "invalid parameter"
	case CauseUnspecifiedError:
		return "unspecified error"
	default:
		return "unknown cause 0x" + hexByte(byte(c))
	}
}

// MemoryKind selects the target of a read or write request.
type MemoryKind byte

// Memory kinds.
const (
	// MemoryFlash is the page-erased code memory
	MemoryFlash MemoryKind = 0x01

	// MemoryEEPROM is the byte-written configuration memory
	MemoryEEPROM MemoryKind = 0x02
)

func (k MemoryKind) String() string {
	switch k {
	case MemoryFlash:
		return "flash"
	case MemoryEEPROM:
		return "eeprom"
	default:
		return "unknown memory 0x" + hexByte(byte(k))
	}
}

// BootMode is the payload of a switch-application request.
type BootMode byte

// Boot modes.
const (
	// ModeBootloader keeps the device in the bootloader
	ModeBootloader BootMode = 0x00

	// ModeApplication leaves the bootloader once the response is sent
	ModeApplication BootMode = 0x80
)

func (m BootMode) String() string {
	switch m {
	case ModeBootloader:
		return "bootloader"
	case ModeApplication:
		return "application"
	default:
		return "unknown mode 0x" + hexByte(byte(m))
	}
}

func hexByte(b byte) string {
	return fmt.Sprintf("%02X", b)
}
