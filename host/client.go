package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moffa90/go-funkboot/ihex"
	"github.com/moffa90/go-funkboot/protocol"
)

// Link carries packets between the host and the devices.
// radio.Endpoint implements Link.
type Link interface {
	// Send transmits p. The link sets the source address.
	Send(ctx context.Context, p *protocol.Packet) error

	// Receive waits for the next packet addressed to the host.
	Receive(ctx context.Context) (*protocol.Packet, error)
}

// Client talks to one funkboot device. Every request gets a new sequence
// number; unanswered requests are sent again unchanged, so the device
// answers a repeated write from its cache instead of executing it twice.
//
// Client is safe for concurrent use; requests are serialized.
type Client struct {
	link   Link
	dest   uint8
	config Config

	mu              sync.Mutex
	seq             uint8
	retransmissions int
}

// New creates a Client for the device at address dest.
//
// Example:
//
//	air := radio.NewAir()
//	client := host.New(air.Endpoint(0x01), 0x11,
//	    host.WithProgressCallback(progressFunc),
//	    host.WithTimeout(500*time.Millisecond),
//	)
func New(link Link, dest uint8, opts ...Option) *Client {
	if link == nil {
		panic("link cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		link:   link,
		dest:   dest,
		config: cfg,
	}
}

// Retransmissions returns the number of requests sent more than once.
func (c *Client) Retransmissions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retransmissions
}

// Program writes img to the device flash:
//  1. Read the chip descriptor and check the signature if configured
//  2. Split the image into erase pages below the bootloader section
//  3. Write every page front to back in chunks
//  4. Read every page back if verification is enabled
//  5. Switch the device to the application if configured
//
// The operation can be cancelled via context.
//
// Example:
//
//	img, _ := ihex.Parse("firmware.hex")
//	err := client.Program(context.Background(), img)
func (c *Client) Program(ctx context.Context, img *ihex.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	startTime := time.Now()

	// Phase 1: Identify the device
	c.reportProgress(Progress{Phase: PhaseIdentifying})

	info, err := c.GetChipInfo(ctx)
	if err != nil {
		return fmt.Errorf("get chip info: %w", err)
	}

	c.logDebug("chip info",
		"signature", fmt.Sprintf("% X", info.Signature[:]),
		"page_size", info.PageSize,
		"bootloader_start", fmt.Sprintf("0x%04X", info.BootloaderStart),
		"eeprom_size", info.EEPROMSize,
	)

	if c.config.Signature != nil && *c.config.Signature != info.Signature {
		return &DeviceMismatchError{
			Expected: *c.config.Signature,
			Actual:   info.Signature,
		}
	}

	// Phase 2: Split into pages
	pages, err := img.Pages(int(info.PageSize), int(info.BootloaderStart))
	if err != nil {
		return fmt.Errorf("split image: %w", err)
	}

	// Phase 3: Program pages
	bytesWritten := 0
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		if err := c.writeChunks(ctx, protocol.MemoryFlash, page.Address, page.Data); err != nil {
			return fmt.Errorf("program page 0x%04X: %w", page.Address, err)
		}
		bytesWritten += len(page.Data)

		// Verify if enabled
		if c.config.VerifyAfterProgram {
			c.reportProgress(Progress{
				Phase:        PhaseVerifying,
				CurrentPage:  i,
				TotalPages:   len(pages),
				Address:      page.Address,
				Percentage:   c.percentage(i, len(pages)),
				BytesWritten: bytesWritten,
				ElapsedTime:  time.Since(startTime),
			})
			if err := c.verify(ctx, protocol.MemoryFlash, page.Address, page.Data); err != nil {
				return fmt.Errorf("verify page 0x%04X: %w", page.Address, err)
			}
		}

		c.logDebug("page programmed", "address", fmt.Sprintf("0x%04X", page.Address))

		// Report progress (2% to 95%)
		c.reportProgress(Progress{
			Phase:           PhaseProgramming,
			CurrentPage:     i + 1,
			TotalPages:      len(pages),
			Address:         page.Address,
			Percentage:      c.percentage(i+1, len(pages)),
			BytesWritten:    bytesWritten,
			Retransmissions: c.Retransmissions(),
			ElapsedTime:     time.Since(startTime),
		})
	}

	// Phase 4: Start the application
	if c.config.StartApplication {
		c.reportProgress(Progress{
			Phase:        PhaseStarting,
			CurrentPage:  len(pages),
			TotalPages:   len(pages),
			Percentage:   95,
			BytesWritten: bytesWritten,
			ElapsedTime:  time.Since(startTime),
		})

		if err := c.SwitchMode(ctx, protocol.ModeApplication); err != nil {
			return fmt.Errorf("start application: %w", err)
		}
	}

	// Complete
	c.reportProgress(Progress{
		Phase:           PhaseComplete,
		CurrentPage:     len(pages),
		TotalPages:      len(pages),
		Percentage:      100,
		BytesWritten:    bytesWritten,
		Retransmissions: c.Retransmissions(),
		ElapsedTime:     time.Since(startTime),
	})

	c.logInfo("programming complete",
		"pages", len(pages),
		"bytes", bytesWritten,
		"retransmissions", c.Retransmissions(),
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// ProgramEEPROM writes data to the configuration memory starting at addr,
// and reads it back if verification is enabled.
func (c *Client) ProgramEEPROM(ctx context.Context, addr uint16, data []byte) error {
	if err := c.writeChunks(ctx, protocol.MemoryEEPROM, addr, data); err != nil {
		return fmt.Errorf("program eeprom: %w", err)
	}
	if c.config.VerifyAfterProgram {
		if err := c.verify(ctx, protocol.MemoryEEPROM, addr, data); err != nil {
			return fmt.Errorf("verify eeprom: %w", err)
		}
	}
	return nil
}

// Dump reads n bytes of memory starting at addr in transfers of up to
// protocol.MaxDataSize bytes.
func (c *Client) Dump(ctx context.Context, kind protocol.MemoryKind, addr uint16, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		size := n - len(out)
		if size > protocol.MaxDataSize {
			size = protocol.MaxDataSize
		}
		data, err := c.Read(ctx, kind, addr+uint16(len(out)), size)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// writeChunks writes data in order, ChunkSize bytes per request.
func (c *Client) writeChunks(ctx context.Context, kind protocol.MemoryKind, addr uint16, data []byte) error {
	chunkSize := c.config.ChunkSize
	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := c.Write(ctx, kind, addr+uint16(off), data[off:end]); err != nil {
			return fmt.Errorf("write 0x%04X: %w", addr+uint16(off), err)
		}
	}
	return nil
}

// verify reads the range back and compares it with want.
func (c *Client) verify(ctx context.Context, kind protocol.MemoryKind, addr uint16, want []byte) error {
	got, err := c.Dump(ctx, kind, addr, len(want))
	if err != nil {
		return err
	}
	for i := range want {
		if got[i] != want[i] {
			return &VerifyError{
				Kind:     kind.String(),
				Address:  addr + uint16(i),
				Expected: want[i],
				Actual:   got[i],
			}
		}
	}
	return nil
}

// GetVersion returns the bootloader version string.
func (c *Client) GetVersion(ctx context.Context) (protocol.Version, error) {
	msg, err := c.call(ctx, "get version", &protocol.Message{Command: protocol.CmdGetVersion})
	if err != nil {
		return protocol.Version{}, err
	}

	v, ok := msg.Payload.(protocol.Version)
	if !ok {
		return protocol.Version{}, fmt.Errorf("get version: %w", protocol.ErrPayloadMismatch)
	}
	return v, nil
}

// GetChipInfo returns the chip descriptor of the device.
func (c *Client) GetChipInfo(ctx context.Context) (*protocol.ChipInfo, error) {
	msg, err := c.call(ctx, "get chip info", &protocol.Message{Command: protocol.CmdGetChipInfo})
	if err != nil {
		return nil, err
	}

	info, ok := msg.Payload.(protocol.ChipInfo)
	if !ok {
		return nil, fmt.Errorf("get chip info: %w", protocol.ErrPayloadMismatch)
	}
	return &info, nil
}

// Read reads size bytes of memory starting at addr.
func (c *Client) Read(ctx context.Context, kind protocol.MemoryKind, addr uint16, size int) ([]byte, error) {
	if size < 0 || size > protocol.MaxDataSize {
		return nil, fmt.Errorf("read size %d: %w", size, protocol.ErrPayloadTooLarge)
	}

	msg, err := c.call(ctx, "read memory", &protocol.Message{
		Command: protocol.CmdReadMemory,
		Payload: protocol.ReadRequest{Address: addr, Kind: kind, Size: uint8(size)},
	})
	if err != nil {
		return nil, err
	}

	rsp, ok := msg.Payload.(protocol.ReadResponse)
	if !ok || len(rsp.Data) != size {
		return nil, fmt.Errorf("read memory: got %d bytes, want %d", len(rsp.Data), size)
	}
	return rsp.Data, nil
}

// Write writes data to memory starting at addr. Flash writes must follow
// the page rules of the device: a page-aligned write starts a page, the
// following writes continue it in order.
func (c *Client) Write(ctx context.Context, kind protocol.MemoryKind, addr uint16, data []byte) error {
	_, err := c.call(ctx, "write memory", &protocol.Message{
		Command: protocol.CmdWriteMemory,
		Payload: protocol.WriteRequest{Address: addr, Kind: kind, Data: data},
	})
	return err
}

// SwitchMode asks the device to stay in the bootloader or to start the
// application. The device leaves once this confirmation has been sent.
func (c *Client) SwitchMode(ctx context.Context, mode protocol.BootMode) error {
	_, err := c.call(ctx, "switch application", &protocol.Message{
		Command: protocol.CmdSwitchApp,
		Payload: protocol.SwitchApp{Mode: mode},
	})
	return err
}

// call performs one exchange and turns a failure cause into a CauseError.
func (c *Client) call(ctx context.Context, op string, req *protocol.Message) (*protocol.Message, error) {
	rsp, err := c.exchange(ctx, op, req)
	if err != nil {
		return nil, err
	}

	if rsp.Cause != protocol.CauseSuccess {
		c.logError("request failed", "operation", op, "cause", rsp.Cause)
		return nil, &protocol.CauseError{
			Operation: op,
			Cause:     rsp.Cause,
		}
	}
	return rsp, nil
}

// exchange sends req with the next sequence number and waits for the
// matching response, sending the identical request again after every
// timeout.
func (c *Client) exchange(ctx context.Context, op string, req *protocol.Message) (*protocol.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	req.Seq = c.seq

	frame, err := protocol.Encode(req)
	if err != nil {
		return nil, err
	}
	want := req.Command.Response()

	attempts := c.config.Retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.retransmissions++
			c.logDebug("retransmitting", "operation", op, "seq", req.Seq, "attempt", attempt)
		}

		err := c.link.Send(ctx, &protocol.Packet{Dest: c.dest, Data: frame})
		if err != nil {
			return nil, fmt.Errorf("send %s: %w", op, err)
		}

		rsp, err := c.await(ctx, want, req.Seq)
		if err == nil {
			return rsp, nil
		}
		if ctx.Err() != nil || !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("receive %s: %w", op, err)
		}
	}

	c.logError("request timed out", "operation", op, "attempts", attempts)
	return nil, &TimeoutError{Operation: op, Attempts: attempts}
}

// await returns the first response from the device with the wanted command
// and sequence number, or a deadline error after the attempt timeout.
func (c *Client) await(ctx context.Context, want protocol.Command, seq uint8) (*protocol.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	for {
		p, err := c.link.Receive(ctx)
		if err != nil {
			return nil, err
		}

		if p.Source != c.dest {
			c.logDebug("ignoring packet from other peer", "source", p.Source)
			continue
		}

		msg, err := protocol.Decode(p.Data)
		if err != nil {
			c.logDebug("ignoring undecodable packet", "error", err)
			continue
		}

		// late answers to earlier attempts or requests
		if msg.Command != want || msg.Seq != seq {
			c.logDebug("ignoring stale response", "command", msg.Command, "seq", msg.Seq)
			continue
		}
		return msg, nil
	}
}

func (c *Client) percentage(done, total int) float64 {
	if total == 0 {
		return 95
	}
	return 2 + float64(done)/float64(total)*93
}

// reportProgress calls the progress callback if configured.
func (c *Client) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
