package core

import "log"

// Logger is any service that can log leveled messages along with
// arbitrary context arguments (an error, the acting user, ...).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

type stdLogger struct {
	std *log.Logger
}

var _ Logger = (*stdLogger)(nil)

// NewStdLogger returns a Logger that only writes to std. Used in DEV|TEST
// where shipping events to the error tracker is noise.
func NewStdLogger(std *log.Logger) Logger {
	return &stdLogger{std: std}
}

func (l stdLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}

func (l stdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

func (l stdLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}
