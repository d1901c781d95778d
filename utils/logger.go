package utils

import (
	"fmt"
	"io"
)

// Logger prints decode traces. A nil *Logger discards everything,
// so callers pass nil when verbose output is off.
type Logger struct {
	io.Writer
	Prefix string
}

func NewLogger(w io.Writer, prefix string) *Logger {
	if w == nil {
		return nil
	}
	return &Logger{Writer: w, Prefix: prefix}
}

func (l *Logger) Println(a ...interface{}) {
	if l != nil {
		fmt.Fprint(l, l.Prefix)
		fmt.Fprintln(l, a...)
	}
}

func (l *Logger) Printf(format string, a ...interface{}) {
	if l != nil {
		fmt.Fprintf(l, l.Prefix+format+"\n", a...)
	}
}
