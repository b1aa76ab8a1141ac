package logger

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"sync"
)

// LogBufferWriter is an io.Writer that feeds complete lines into a LogBuffer.
// Lines of the form "[source] [LEVEL] message" are split into their parts;
// anything else is attributed to "system".
type LogBufferWriter struct {
	buffer *LogBuffer
	buf    bytes.Buffer
	mu     sync.Mutex
}

var lineRegex = regexp.MustCompile(`^\[([^\]]+)\]\s*(?:\[(DEBUG|WARN|ERROR)\]\s*)?(.*)$`)

// NewLogBufferWriter creates a new writer that writes to the log buffer
func NewLogBufferWriter(buffer *LogBuffer) *LogBufferWriter {
	return &LogBufferWriter{
		buffer: buffer,
	}
}

// Write implements io.Writer
func (lw *LogBufferWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	// Buffer until we get a newline
	lw.buf.Write(p)

	for {
		line, err := lw.buf.ReadString('\n')
		if err == io.EOF {
			// Keep the partial line for the next Write
			lw.buf.WriteString(line)
			break
		}
		if err != nil {
			return len(p), err
		}

		line = strings.TrimSuffix(line, "\n")
		if len(line) == 0 {
			continue
		}
		lw.buffer.Add(parseLine(line))
	}

	return len(p), nil
}

func parseLine(line string) LogEntry {
	matches := lineRegex.FindStringSubmatch(line)
	if len(matches) != 4 {
		return LogEntry{Source: "system", Message: line}
	}
	// A bare level tag is not a source
	if matches[1] == "DEBUG" || matches[1] == "WARN" || matches[1] == "ERROR" {
		return LogEntry{Source: "system", Level: matches[1], Message: strings.TrimSpace(strings.TrimPrefix(line, "["+matches[1]+"]"))}
	}
	return LogEntry{Source: matches[1], Level: matches[2], Message: matches[3]}
}
