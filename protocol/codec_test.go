package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeRequests(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		want    Payload
		wantCmd Command
	}{
		{
			name:    "switch to application",
			frame:   []byte{0x20, 0x01, 0x00, 0x80},
			wantCmd: CmdSwitchApp,
			want:    SwitchApp{Mode: ModeApplication},
		},
		{
			name:    "get version",
			frame:   []byte{0x21, 0x05, 0x00},
			wantCmd: CmdGetVersion,
			want:    Empty{},
		},
		{
			name:    "get chip info ignores cause",
			frame:   []byte{0x22, 0x06, 0xAA},
			wantCmd: CmdGetChipInfo,
			want:    Empty{},
		},
		{
			name:    "read request little-endian address",
			frame:   []byte{0x23, 0x07, 0x00, 0x80, 0x01, 0x01, 0x20},
			wantCmd: CmdReadMemory,
			want:    ReadRequest{Address: 0x0180, Kind: MemoryFlash, Size: 32},
		},
		{
			name:    "read request trailing bytes ignored",
			frame:   []byte{0x23, 0x07, 0x00, 0x10, 0x00, 0x02, 0x04, 0xEE, 0xEE},
			wantCmd: CmdReadMemory,
			want:    ReadRequest{Address: 0x0010, Kind: MemoryEEPROM, Size: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode(tt.frame)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Command != tt.wantCmd {
				t.Errorf("Command = 0x%02X, want 0x%02X", byte(msg.Command), byte(tt.wantCmd))
			}
			if msg.Seq != tt.frame[1] {
				t.Errorf("Seq = %d, want %d", msg.Seq, tt.frame[1])
			}
			if msg.Payload != tt.want {
				t.Errorf("Payload = %#v, want %#v", msg.Payload, tt.want)
			}
		})
	}
}

func TestDecodeWriteRequest(t *testing.T) {
	data := make([]byte, MaxDataSize)
	for i := range data {
		data[i] = byte(i)
	}
	frame := append([]byte{0x24, 0x09, 0x00, 0x00, 0x01, 0x01, MaxDataSize}, data...)

	msg, err := Decode(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, ok := msg.Payload.(WriteRequest)
	if !ok {
		t.Fatalf("Payload = %T, want WriteRequest", msg.Payload)
	}
	if req.Address != 0x0100 {
		t.Errorf("Address = 0x%04X, want 0x0100", req.Address)
	}
	if req.Kind != MemoryFlash {
		t.Errorf("Kind = %v, want flash", req.Kind)
	}
	if !bytes.Equal(req.Data, data) {
		t.Errorf("Data = % X, want % X", req.Data, data)
	}

	// decoded data must not alias the frame
	frame[7] = 0xFF
	if req.Data[0] != 0x00 {
		t.Error("decoded data aliases the input frame")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		wantErr error
	}{
		{name: "empty", frame: nil, wantErr: ErrShortHeader},
		{name: "two bytes", frame: []byte{0x21, 0x01}, wantErr: ErrShortHeader},
		{name: "unknown operation", frame: []byte{0x2A, 0x01, 0x00}, wantErr: ErrUnknownCommand},
		{name: "indication type", frame: []byte{0xA1, 0x01, 0x00}, wantErr: ErrUnknownCommand},
		{name: "0xC0 type", frame: []byte{0xE1, 0x01, 0x00}, wantErr: ErrUnknownCommand},
		{name: "switch app without mode", frame: []byte{0x20, 0x01, 0x00}, wantErr: ErrShortPayload},
		{name: "read without size", frame: []byte{0x23, 0x01, 0x00, 0x00, 0x00, 0x01}, wantErr: ErrShortPayload},
		{name: "read size 33", frame: []byte{0x23, 0x01, 0x00, 0x00, 0x00, 0x01, 33}, wantErr: ErrPayloadTooLarge},
		{name: "write missing data", frame: []byte{0x24, 0x01, 0x00, 0x00, 0x00, 0x01, 0x04, 0xAA}, wantErr: ErrShortPayload},
		{name: "write size 33", frame: []byte{0x24, 0x01, 0x00, 0x00, 0x00, 0x01, 33}, wantErr: ErrPayloadTooLarge},
		{name: "short version response", frame: []byte{0x61, 0x01, 0x00, 'F'}, wantErr: ErrShortPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.frame)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("error %T is not a *DecodeError", err)
			}
			if tt.wantErr != ErrShortHeader && de.Seq != tt.frame[1] {
				t.Errorf("DecodeError.Seq = %d, want %d", de.Seq, tt.frame[1])
			}
		})
	}
}

func TestEncodeResponses(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
		want []byte
	}{
		{
			name: "version response",
			msg: &Message{
				Command: CmdGetVersionResponse,
				Seq:     5,
				Payload: NewVersion("FUNKBOOTm168v1.0"),
			},
			want: append([]byte{0x61, 0x05, 0x00}, []byte("FUNKBOOTm168v1.0")...),
		},
		{
			name: "chip info big-endian fields",
			msg: &Message{
				Command: CmdGetChipInfoResponse,
				Seq:     1,
				Payload: ChipInfo{
					Signature:       [3]byte{0x1E, 0x94, 0x06},
					PageSize:        128,
					BootloaderStart: 0x3C00,
					EEPROMSize:      512,
				},
			},
			want: []byte{0x62, 0x01, 0x00, 0x1E, 0x94, 0x06, 0x80, 0x3C, 0x00, 0x02, 0x00},
		},
		{
			name: "read response",
			msg: &Message{
				Command: CmdReadMemoryResponse,
				Seq:     2,
				Payload: ReadResponse{Data: []byte{0xDE, 0xAD}},
			},
			want: []byte{0x63, 0x02, 0x00, 0xDE, 0xAD},
		},
		{
			name: "nil payload is empty",
			msg:  &Message{Command: CmdWriteMemoryResponse, Seq: 3},
			want: []byte{0x64, 0x03, 0x00},
		},
		{
			name: "failed version response without body",
			msg: &Message{
				Command: CmdGetVersionResponse,
				Seq:     4,
				Cause:   CauseUnspecifiedError,
				Payload: Empty{},
			},
			want: []byte{0x61, 0x04, 0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.msg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncodeRequests(t *testing.T) {
	frame, err := Encode(&Message{
		Command: CmdWriteMemory,
		Seq:     9,
		Payload: WriteRequest{Address: 0x1234, Kind: MemoryEEPROM, Data: []byte{1, 2, 3, 4}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{0x24, 0x09, 0x00, 0x34, 0x12, 0x02, 0x04, 1, 2, 3, 4}
	if !bytes.Equal(frame, want) {
		t.Errorf("Encode() = % X, want % X", frame, want)
	}
	if len(frame) != HeaderSize+MemoryRequestHeaderSize+4 {
		t.Errorf("len = %d, want header + payload size", len(frame))
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		msg     *Message
		wantErr error
	}{
		{
			name:    "version payload on read response",
			msg:     &Message{Command: CmdReadMemoryResponse, Payload: NewVersion("x")},
			wantErr: ErrPayloadMismatch,
		},
		{
			name:    "empty payload on successful chip info response",
			msg:     &Message{Command: CmdGetChipInfoResponse},
			wantErr: ErrPayloadMismatch,
		},
		{
			name:    "oversized write",
			msg:     &Message{Command: CmdWriteMemory, Payload: WriteRequest{Kind: MemoryFlash, Data: make([]byte, 33)}},
			wantErr: ErrPayloadTooLarge,
		},
		{
			name:    "oversized read request",
			msg:     &Message{Command: CmdReadMemory, Payload: ReadRequest{Kind: MemoryFlash, Size: 64}},
			wantErr: ErrPayloadTooLarge,
		},
		{
			name:    "unknown command",
			msg:     &Message{Command: 0x3F},
			wantErr: ErrUnknownCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.msg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// A response built from a decoded request keeps the operation and sequence.
func TestResponseMirrorsRequest(t *testing.T) {
	requests := [][]byte{
		{0x20, 0x10, 0x00, 0x00},
		{0x21, 0x11, 0x00},
		{0x22, 0x12, 0x00},
		{0x23, 0x13, 0x00, 0x00, 0x00, 0x02, 0x01},
		{0x24, 0x14, 0x00, 0x00, 0x00, 0x02, 0x01, 0x55},
	}
	payloads := map[Command]Payload{
		CmdSwitchApp:   Empty{},
		CmdGetVersion:  NewVersion("v"),
		CmdGetChipInfo: ChipInfo{PageSize: 64},
		CmdReadMemory:  ReadResponse{Data: []byte{0x00}},
		CmdWriteMemory: Empty{},
	}

	for _, raw := range requests {
		req, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(% X): %v", raw, err)
		}

		frame, err := Encode(&Message{
			Command: req.Command.Response(),
			Seq:     req.Seq,
			Payload: payloads[req.Command],
		})
		if err != nil {
			t.Fatalf("Encode response to %s: %v", req.Command, err)
		}

		rsp, err := Decode(frame)
		if err != nil {
			t.Fatalf("Decode response to %s: %v", req.Command, err)
		}
		if rsp.Command != req.Command|ResponseFlag {
			t.Errorf("%s: response command = 0x%02X", req.Command, byte(rsp.Command))
		}
		if rsp.Seq != req.Seq {
			t.Errorf("%s: response seq = %d, want %d", req.Command, rsp.Seq, req.Seq)
		}
	}
}

func TestEncodeHeader(t *testing.T) {
	got := EncodeHeader(Command(0x6A), 0x33, CauseNotSupported)
	want := []byte{0x6A, 0x33, 0xF0}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeHeader() = % X, want % X", got, want)
	}
}
