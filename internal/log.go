package internal

import (
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelNames = map[string]LogLevel{
	"ERROR": LogLevelError,
	"WARN":  LogLevelWarn,
	"INFO":  LogLevelInfo,
	"DEBUG": LogLevelDebug,
}

func (l LogLevel) String() string {
	for name, level := range levelNames {
		if level == l {
			return name
		}
	}
	return "INFO"
}

// ParseLogLevel accepts the LOG_LEVEL names in any case; anything else is INFO
func ParseLogLevel(s string) LogLevel {
	if level, ok := levelNames[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return level
	}
	return LogLevelInfo
}

// Logger prefixes each line with its level and drops lines above the
// configured verbosity. Components still tag their own messages, e.g.
// "[Dashboard] Ready".
type Logger struct {
	level LogLevel
	out   *log.Logger
}

// NewLogger writes to the standard logger's destination
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(log.Writer(), level)
}

// NewLoggerTo is NewLogger with an explicit destination
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDefaultLogger reads the level from LOG_LEVEL
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) { l.logf(LogLevelError, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logf(LogLevelWarn, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.logf(LogLevelInfo, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LogLevelDebug, format, args...) }

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// DefaultLogger is shared by the dashboard pipeline
var DefaultLogger = NewDefaultLogger()
