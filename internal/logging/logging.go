// Package logging wraps charmbracelet/log with per-component loggers that
// write to a file under the XDG state directory.
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("bulk")
//	logger.Info("batch done", "processed", 3)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	"github.com/Paintersrp/retag/internal/constants"
)

// ErrInvalidLevel is returned for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

// Levels accepted by ParseLevel.
var Levels = []string{"debug", "info", "warn", "error"}

// ParseLevel maps a level name onto a charmbracelet/log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures Init.
type Config struct {
	// Level is the file log level.
	Level string
	// Path is the log file. Empty uses DefaultLogPath.
	Path string
	// ConsoleLevel mirrors records at or above this level to stderr. Empty
	// disables console output.
	ConsoleLevel string
	// TUIMode suppresses console output while a terminal UI owns the screen.
	TUIMode bool
}

// Logger is a component logger.
type Logger struct {
	file      *log.Logger
	console   *log.Logger
	component string
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.file.Debug(msg, args...)
	if l.console != nil {
		l.console.Debug(msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.file.Info(msg, args...)
	if l.console != nil {
		l.console.Info(msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.file.Warn(msg, args...)
	if l.console != nil {
		l.console.Warn(msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.file.Error(msg, args...)
	if l.console != nil {
		l.console.Error(msg, args...)
	}
}

// With returns a logger carrying additional key/value context.
func (l *Logger) With(args ...interface{}) *Logger {
	out := &Logger{file: l.file.With(args...), component: l.component}
	if l.console != nil {
		out.console = l.console.With(args...)
	}
	return out
}

type state struct {
	mu          sync.Mutex
	initialized bool
	file        *os.File
	level       log.Level
	console     bool
	consoleLvl  log.Level
	loggers     map[string]*Logger
}

var global = &state{loggers: make(map[string]*Logger)}

// Init opens the log file and rebuilds every logger handed out so far.
// Before Init, loggers discard everything.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	consoleEnabled := cfg.ConsoleLevel != "" && !cfg.TUIMode
	var consoleLvl log.Level
	if consoleEnabled {
		if consoleLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.file != nil {
		_ = global.file.Close()
	}
	global.file = f
	global.level = level
	global.console = consoleEnabled
	global.consoleLvl = consoleLvl
	global.initialized = true

	for component := range global.loggers {
		global.loggers[component] = newLogger(component)
	}
	return nil
}

// Get returns the logger for component, creating it on first use.
func Get(component string) *Logger {
	global.mu.Lock()
	defer global.mu.Unlock()

	if l, ok := global.loggers[component]; ok {
		return l
	}
	l := newLogger(component)
	global.loggers[component] = l
	return l
}

// newLogger must be called with global.mu held.
func newLogger(component string) *Logger {
	if !global.initialized {
		return &Logger{
			file:      log.NewWithOptions(io.Discard, log.Options{Prefix: component}),
			component: component,
		}
	}

	l := &Logger{
		file: log.NewWithOptions(global.file, log.Options{
			Level:           global.level,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
		component: component,
	}
	if global.console {
		l.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           global.consoleLvl,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	return l
}

// Close closes the log file. Loggers discard again until the next Init.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if !global.initialized {
		return nil
	}
	global.initialized = false

	var err error
	if global.file != nil {
		err = global.file.Close()
		global.file = nil
	}
	for component := range global.loggers {
		global.loggers[component] = newLogger(component)
	}
	if err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}

// DefaultLogPath is $XDG_STATE_HOME/retag/retag.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, constants.AppName, constants.LogFile)
}
