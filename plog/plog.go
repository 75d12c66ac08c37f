// Package plog is the planner's minimal logging wrapper: a
// bracket-tagged prefix over the standard library logger rather than a
// structured logging framework.
package plog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger prefixes every line with a component tag, e.g. "[PLANNER]".
type Logger struct {
	tag   string
	inner *log.Logger
}

// New creates a Logger writing to w with the given component tag.
func New(tag string, w io.Writer) *Logger {
	return &Logger{tag: tag, inner: log.New(w, "", log.LstdFlags)}
}

// Default returns a Logger writing to stderr, tagged "[PLANNER]".
func Default() *Logger {
	return New("PLANNER", os.Stderr)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.inner.Printf("[%s] "+format, append([]any{l.tag}, args...)...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.inner.Printf("[%s] WARN "+format, append([]any{l.tag}, args...)...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.inner.Printf("[%s] ERROR "+format, append([]any{l.tag}, args...)...)
}

func (l *Logger) String() string {
	return fmt.Sprintf("Logger{tag=%s}", l.tag)
}
