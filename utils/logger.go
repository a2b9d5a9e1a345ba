package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logrus instance every Logger writes through.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLogLevel sets the level of the shared logger. Unknown names fall back to info.
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		Log.SetLevel(logrus.InfoLevel)
	}
}

// Logger provides leveled printf-style logging throughout the application.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a Logger on top of the shared logrus instance.
func NewLogger() *Logger {
	return &Logger{entry: logrus.NewEntry(Log)}
}

// With returns a Logger that attaches key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
