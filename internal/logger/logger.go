// Package logger writes diagnostic output for deepdocs to stderr.
// Nothing is printed unless --verbose lowers the threshold, so normal
// command output stays clean for scripts and the MCP stdio transport.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level orders log messages by importance.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	// LevelSilent suppresses everything.
	LevelSilent
)

var tags = map[Level]string{
	LevelDebug: "[DEBUG] ",
	LevelInfo:  "[INFO] ",
	LevelWarn:  "[WARN] ",
}

var (
	mu        sync.RWMutex
	threshold           = LevelSilent
	output    io.Writer = os.Stderr
	now                 = time.Now
)

// SetLevel sets the lowest level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	threshold = l
	mu.Unlock()
}

// SetVerbose prints every level when on and nothing when off.
func SetVerbose(on bool) {
	if on {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelSilent)
}

// IsVerbose reports whether debug messages are printed.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= threshold && l < LevelSilent
}

// SetOutput redirects log output. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }

// Section prints a banner between pipeline stages at info level.
func Section(name string) {
	write(LevelInfo, "\n=== "+name+" ===\n")
}

// Timed logs the duration of an operation when the returned func runs.
//
//	defer logger.Timed("index document 3")()
func Timed(label string) func() {
	start := now()
	return func() {
		Debug("%s took %s", label, now().Sub(start).Round(time.Millisecond))
	}
}

func logf(l Level, format string, args ...any) {
	if !Enabled(l) {
		return
	}
	write(l, tags[l]+fmt.Sprintf(format, args...)+"\n")
}

func write(l Level, line string) {
	mu.RLock()
	defer mu.RUnlock()
	if l >= threshold && l < LevelSilent {
		_, _ = io.WriteString(output, line)
	}
}
