package bootloader

// Channel selects one of the two activity indicators.
type Channel int

const (
	// IndicatorRX signals received requests (green LED on the reference board)
	IndicatorRX Channel = iota

	// IndicatorTX signals transmitted responses and the waiting heartbeat (red LED)
	IndicatorTX
)

func (c Channel) String() string {
	if c == IndicatorRX {
		return "rx"
	}
	return "tx"
}

// Indicator drives the activity LEDs. Set is called once per channel and tick.
type Indicator interface {
	Set(ch Channel, on bool)
}

// IndicatorFunc adapts a function to the Indicator interface.
type IndicatorFunc func(ch Channel, on bool)

// Set calls f(ch, on).
func (f IndicatorFunc) Set(ch Channel, on bool) { f(ch, on) }

// Logger is an optional logging interface that can be provided to the bootloader.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	bl := bootloader.New(radio, flash, eeprom, bootloader.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
