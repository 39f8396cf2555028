package console

import (
	"encoding/json"
	"strings"
	"sync"
)

// Log is the append-only activity log shown to the operator.
type Log struct {
	mu    sync.Mutex
	lines []string
}

// Append joins args with spaces; non-string values are rendered as indented JSON.
func (l *Log) Append(args ...interface{}) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if s, ok := a.(string); ok {
			parts = append(parts, s)
			continue
		}
		out, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			parts = append(parts, "<unprintable>")
			continue
		}
		parts = append(parts, string(out))
	}

	l.mu.Lock()
	l.lines = append(l.lines, strings.Join(parts, " "))
	l.mu.Unlock()
}

// Lines returns a copy of the log.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
