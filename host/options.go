package host

import (
	"time"

	"github.com/moffa90/go-funkboot/protocol"
)

// Config holds the client configuration.
type Config struct {
	// ProgressCallback is called during programming to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Timeout is how long to wait for a response before retransmitting
	Timeout time.Duration

	// Retries is the number of retransmissions before giving up
	Retries int

	// ChunkSize is the maximum data size per write request.
	// Default is 32 bytes (protocol.MaxDataSize).
	ChunkSize int

	// VerifyAfterProgram enables read-back verification of every page
	VerifyAfterProgram bool

	// Signature is the chip signature the device must report (optional)
	Signature *[3]byte

	// StartApplication switches the device to the application after programming
	StartApplication bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:            200 * time.Millisecond,
		Retries:            5,
		ChunkSize:          protocol.MaxDataSize,
		VerifyAfterProgram: true,
		StartApplication:   true,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithProgressCallback sets a callback function to track programming progress.
//
// Example:
//
//	client := host.New(link, 0x11,
//	    host.WithProgressCallback(func(p host.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the client operations.
//
// Example:
//
//	client := host.New(link, 0x11, host.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets the response timeout of a single attempt.
//
// Example:
//
//	client := host.New(link, 0x11, host.WithTimeout(500*time.Millisecond))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithRetries sets the number of retransmissions for unanswered requests.
//
// Example:
//
//	client := host.New(link, 0x11, host.WithRetries(10))
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.Retries = retries
		}
	}
}

// WithChunkSize sets the maximum data size per write request.
// Flash is written in words, so only even sizes from 2 to 32 are accepted.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size >= 2 && size <= protocol.MaxDataSize && size%2 == 0 {
			c.ChunkSize = size
		}
	}
}

// WithVerifyAfterProgram enables or disables read-back verification.
// Default is true.
//
// Example:
//
//	client := host.New(link, 0x11, host.WithVerifyAfterProgram(false))
func WithVerifyAfterProgram(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterProgram = verify
	}
}

// WithExpectedSignature makes Program fail with a DeviceMismatchError when
// the device reports a different chip signature.
//
// Example:
//
//	client := host.New(link, 0x11, host.WithExpectedSignature([3]byte{0x1E, 0x94, 0x06}))
func WithExpectedSignature(signature [3]byte) Option {
	return func(c *Config) {
		c.Signature = &signature
	}
}

// WithStartApplication controls whether Program switches the device to the
// application when done. Default is true.
func WithStartApplication(start bool) Option {
	return func(c *Config) {
		c.StartApplication = start
	}
}
