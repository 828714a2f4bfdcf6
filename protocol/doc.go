// Package protocol implements the funkboot radio bootloader message format.
//
// Every message travels as the payload of one radio packet:
//
//	[COMMAND][SEQNUM][CAUSE][PAYLOAD...]
//
// Where:
//   - COMMAND = message type (top 2 bits) | operation (low 6 bits)
//   - SEQNUM  = copied from request to response, used to detect retransmissions
//   - CAUSE   = result code, meaningful on responses only
//
// # Commands
//
//	switch-app     0x20 / 0x60  [MODE]                      -> (empty)
//	get-version    0x21 / 0x61  (empty)                     -> [VERSION(16)]
//	get-chip-info  0x22 / 0x62  (empty)                     -> [CHIPINFO(8)]
//	read-memory    0x23 / 0x63  [ADDR_L][ADDR_H][TYPE][SIZE] -> [DATA(SIZE)]
//	write-memory   0x24 / 0x64  [ADDR_L][ADDR_H][TYPE][SIZE][DATA(SIZE)] -> (empty)
//
// Addresses are little-endian, the chip descriptor fields are big-endian.
// SIZE never exceeds MaxDataSize.
//
// # Encoding and Decoding
//
//	frame, err := protocol.Encode(&protocol.Message{
//	    Command: protocol.CmdReadMemory,
//	    Seq:     7,
//	    Payload: protocol.ReadRequest{Address: 0x0100, Kind: protocol.MemoryFlash, Size: 32},
//	})
//
//	msg, err := protocol.Decode(frame)
//	if req, ok := msg.Payload.(protocol.ReadRequest); ok {
//	    // ...
//	}
//
// # Error Handling
//
// Decode returns a *DecodeError wrapping ErrShortHeader, ErrUnknownCommand,
// ErrShortPayload or ErrPayloadTooLarge. Except for ErrShortHeader the
// error still carries the command and sequence number, so a bootloader can
// answer with CauseNotSupported or CauseInvalidParameter.
//
// Responses with a cause other than CauseSuccess are reported by clients as
// a *CauseError:
//
//	err := &protocol.CauseError{Operation: "write memory", Cause: protocol.CauseInvalidParameter}
//	// err.Error() returns: "write memory failed: invalid parameter (0xF1)"
package protocol
