package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/sportsmeet/internal/config"
)

// Logger appends timestamped lines to .sportsmeet/logs/sportsmeet.log so runs
// can be inspected after the terminal output is gone.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

// New creates (or reuses) the log file for the current project directory.
func New(projectDir string) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.ProjectDirName, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "sportsmeet.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l := NewWriter(f)
	l.file = f
	return l, nil
}

// NewWriter logs to an arbitrary writer.
func NewWriter(w io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	return &Logger{entry: logrus.NewEntry(base)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWriter(io.Discard)
}

// With returns a logger that adds key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	if l == nil || l.entry == nil {
		return l
	}
	return &Logger{entry: l.entry.WithField(key, value), file: l.file}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single informational line.
func (l *Logger) Printf(format string, args ...any) {
	l.Infof(format, args...)
}

// Infof writes an informational line.
func (l *Logger) Infof(format string, args ...any) {
	if l == nil || l.entry == nil {
		return
	}
	l.entry.Info(line(format, args...))
}

// Warnf writes a warning line.
func (l *Logger) Warnf(format string, args ...any) {
	if l == nil || l.entry == nil {
		return
	}
	l.entry.Warn(line(format, args...))
}

// Errorf writes an error line.
func (l *Logger) Errorf(format string, args ...any) {
	if l == nil || l.entry == nil {
		return
	}
	l.entry.Error(line(format, args...))
}

func line(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
