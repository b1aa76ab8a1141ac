// Package logger provides the process-wide logger used by every peer.
// It can write to several outputs at once (stdout, the TUI log buffer).
// Init should be called early; before Init, messages fall back to the standard log package.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log line
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

// Logger is a configurable logger that can write to multiple outputs
type Logger struct {
	mu         sync.Mutex
	outputs    []io.Writer
	prefix     string
	enabled    bool
	minLevel   Level
	timestamps bool
}

var (
	globalLogger *Logger
	once         sync.Once
	globalBuffer *LogBuffer
	bufferOnce   sync.Once
)

var errNotInitialized = errors.New("logger not initialized: call logger.Init() first")

// GetGlobalLogBuffer returns the global log buffer
func GetGlobalLogBuffer() *LogBuffer {
	bufferOnce.Do(func() {
		globalBuffer = NewLogBuffer(1000)
	})
	return globalBuffer
}

// Init initializes the global logger. Only the first call has an effect.
func Init(prefix string, writeToStdout bool) {
	once.Do(func() {
		outputs := []io.Writer{}
		if writeToStdout {
			outputs = append(outputs, os.Stdout)
		}
		globalLogger = &Logger{
			outputs:    outputs,
			prefix:     prefix,
			enabled:    true,
			minLevel:   LevelInfo,
			timestamps: writeToStdout,
		}
	})
}

// AddOutput adds an additional output writer (e.g., for TUI log buffer).
// Returns an error if called before Init.
func AddOutput(w io.Writer) error {
	if globalLogger == nil {
		return errNotInitialized
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.outputs = append(globalLogger.outputs, w)
	return nil
}

// RemoveOutput removes an output writer.
// Returns an error if called before Init.
func RemoveOutput(w io.Writer) error {
	if globalLogger == nil {
		return errNotInitialized
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	kept := globalLogger.outputs[:0]
	for _, output := range globalLogger.outputs {
		if output != w {
			kept = append(kept, output)
		}
	}
	globalLogger.outputs = kept
	return nil
}

// SetEnabled enables or disables logging.
// Returns an error if called before Init.
func SetEnabled(enabled bool) error {
	if globalLogger == nil {
		return errNotInitialized
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.enabled = enabled
	return nil
}

// SetDebug turns debug lines on or off.
// Returns an error if called before Init.
func SetDebug(debug bool) error {
	if globalLogger == nil {
		return errNotInitialized
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	if debug {
		globalLogger.minLevel = LevelDebug
	} else {
		globalLogger.minLevel = LevelInfo
	}
	return nil
}

// DebugEnabled reports whether debug lines are written
func DebugEnabled() bool {
	if globalLogger == nil {
		return false
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	return globalLogger.minLevel <= LevelDebug
}

// logf writes one line at the given level. Info lines carry no level tag so
// the game's own announcements ("Winner: player 1!") read as plain output.
// The scope goes first so LogBufferWriter can attribute the line.
func logf(level Level, scope string, format string, v ...interface{}) {
	msg := strings.TrimSuffix(fmt.Sprintf(format, v...), "\n")
	if level != LevelInfo {
		msg = fmt.Sprintf("[%s] %s", level, msg)
	}
	if scope != "" {
		msg = fmt.Sprintf("[%s] %s", scope, msg)
	}

	if globalLogger == nil {
		if level >= LevelInfo {
			log.Print(msg)
		}
		return
	}

	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if !globalLogger.enabled || level < globalLogger.minLevel {
		return
	}

	if globalLogger.prefix != "" {
		msg = fmt.Sprintf("[%s] %s", globalLogger.prefix, msg)
	}
	line := msg + "\n"
	if globalLogger.timestamps {
		line = time.Now().Format("15:04:05.000") + " " + line
	}

	for _, output := range globalLogger.outputs {
		// A failing output must not take the others down with it
		_, _ = io.WriteString(output, line)
	}
}

// Printf logs a formatted message at info level
func Printf(format string, v ...interface{}) {
	logf(LevelInfo, "", format, v...)
}

// Infof logs an info-level formatted message
func Infof(format string, v ...interface{}) {
	logf(LevelInfo, "", format, v...)
}

// Info logs an info-level message
func Info(v ...interface{}) {
	logf(LevelInfo, "", "%s", fmt.Sprint(v...))
}

// Debugf logs a debug-level formatted message
func Debugf(format string, v ...interface{}) {
	logf(LevelDebug, "", format, v...)
}

// Warnf logs a warning
func Warnf(format string, v ...interface{}) {
	logf(LevelWarn, "", format, v...)
}

// Errorf logs an error-level formatted message
func Errorf(format string, v ...interface{}) {
	logf(LevelError, "", format, v...)
}

// Error logs an error-level message
func Error(v ...interface{}) {
	logf(LevelError, "", "%s", fmt.Sprint(v...))
}

// Scoped prefixes every line with "[scope]", which LogBufferWriter uses to
// attribute the line to a peer.
type Scoped string

// For returns a scoped logger
func For(scope string) Scoped {
	return Scoped(scope)
}

func (s Scoped) Printf(format string, v ...interface{}) {
	logf(LevelInfo, string(s), format, v...)
}

func (s Scoped) Debugf(format string, v ...interface{}) {
	logf(LevelDebug, string(s), format, v...)
}

func (s Scoped) Warnf(format string, v ...interface{}) {
	logf(LevelWarn, string(s), format, v...)
}

func (s Scoped) Errorf(format string, v ...interface{}) {
	logf(LevelError, string(s), format, v...)
}
