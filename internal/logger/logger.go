package logger

// Fields carries structured key/value pairs attached to a log line.
type Fields map[string]interface{}

// Logger is the logging contract used across the scraper, the orchestrator
// and the HTTP API.
type Logger interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)
	// WithFields returns a logger that adds fields to every line.
	WithFields(fields Fields) Logger
}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Info(string, Fields)         {}
func (nopLogger) Warn(string, Fields)         {}
func (nopLogger) Error(string, error, Fields) {}
func (nopLogger) Debug(string, Fields)        {}
func (n nopLogger) WithFields(Fields) Logger  { return n }
