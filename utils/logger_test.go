package utils

import (
	"bytes"
	"testing"
)

func TestLoggerNil(t *testing.T) {
	var l *Logger
	l.Printf("value %d", 1)
	l.Println("nothing")

	if NewLogger(nil, "[x] ") != nil {
		t.Errorf("NewLogger(nil) returned non-nil logger")
	}
}

func TestLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "[tagfile] ")
	l.Printf("node %d", 3)
	l.Println("done")

	if got, expected := buf.String(), "[tagfile] node 3\n[tagfile] done\n"; got != expected {
		t.Errorf("Logger output %q; expected %q", got, expected)
	}
}
