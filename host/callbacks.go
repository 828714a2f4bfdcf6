package host

import "time"

// Programming phases reported in Progress.Phase.
const (
	PhaseIdentifying = "identifying"
	PhaseProgramming = "programming"
	PhaseVerifying   = "verifying"
	PhaseStarting    = "starting"
	PhaseComplete    = "complete"
)

// Progress contains information about the programming progress.
// Passed to ProgressCallback during programming operations.
type Progress struct {
	// Phase describes the current operation phase:
	//   "identifying" - Reading the chip descriptor
	//   "programming" - Writing flash pages
	//   "verifying"   - Reading a page back
	//   "starting"    - Switching the device to the application
	//   "complete"    - Operation completed successfully
	Phase string

	// CurrentPage is the number of pages programmed so far
	CurrentPage int

	// TotalPages is the total number of pages to program
	TotalPages int

	// Address is the page being worked on
	Address uint16

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the total number of bytes written so far
	BytesWritten int

	// Retransmissions counts requests that had to be sent again
	Retransmissions int

	// ElapsedTime is the time elapsed since programming started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during programming to report progress.
// Implementations should return quickly to avoid blocking the programming operation.
//
// Example:
//
//	client := host.New(link, 0x11,
//	    host.WithProgressCallback(func(p host.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the client.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	client := host.New(link, 0x11, host.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
