package xlmunge

// Logger receives progress messages from the mutator.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any)   {}
func (NopLogger) Info(string, ...any)    {}
func (NopLogger) Success(string, ...any) {}
func (NopLogger) Warn(string, ...any)    {}
func (NopLogger) Error(string, ...any)   {}
