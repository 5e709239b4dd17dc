// Package logger provides the shared logging facade for appium-pilot.
// Log lines go to a date-stamped, size-rotated file under logs/ and,
// optionally, to the console.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.Mutex
	log  = zerolog.Nop()
	file *rotatingFile
)

// Options controls logger initialization.
type Options struct {
	Dir      string // directory for log files (created if missing)
	Level    string // debug, info, warn, error (default info)
	Console  bool   // also write to stderr
	MaxBytes int64  // rotate threshold (default 10 MiB)
	Backups  int    // rotated files to keep (default 5)
}

// Init initializes the global logger. Safe to call more than once; the
// previous log file is closed.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.close()
		file = nil
	}

	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 * 1024 * 1024
	}
	if opts.Backups <= 0 {
		opts.Backups = 5
	}

	var writers []io.Writer
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		name := fmt.Sprintf("appium_pilot_%s.log", time.Now().Format("2006-01-02"))
		rf, err := newRotatingFile(filepath.Join(opts.Dir, name), opts.MaxBytes, opts.Backups)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		file = rf
		writers = append(writers, rf)
	}
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	log = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(opts.Level)).
		With().Timestamp().Logger()

	return nil
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.close()
		file = nil
	}
	log = zerolog.Nop()
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Info().Msgf(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Debug().Msgf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Warn().Msgf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	log.Error().Msgf(format, v...)
}

// GetWriter returns the underlying file writer for external processes.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		return file
	}
	return io.Discard
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
