package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	forced bool
)

// DebugEnabled returns true if debug mode is enabled via TS_DEBUG environment variable
// or by SetVerbose.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return forced || os.Getenv("TS_DEBUG") != ""
}

// SetVerbose turns debug output on regardless of TS_DEBUG.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	forced = v
}

// SetOutput redirects debug output. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, args...)
	}
}
