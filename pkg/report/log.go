// Package report holds the C11 collaborators: a global, cross-plan log
// event list and a plain-text report summarizer over Plan Store state.
package report

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/agentkit/plankernel/pkg/ids"
)

// LogEvent is a global, cross-plan audit record, distinct from a plan's own
// per-mutation LogEvent history.
type LogEvent struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Log is an append-only, process-wide event stream, written as
// newline-delimited JSON the way the kernel's audit logger does.
type Log struct {
	mu     sync.Mutex
	writer io.Writer
	events []LogEvent
}

// NewLog creates a Log writing to os.Stdout and retaining events in memory,
// readable through Events.
func NewLog() *Log {
	return NewLogWithWriter(os.Stdout)
}

func NewLogWithWriter(w io.Writer) *Log {
	if w == nil {
		w = os.Stdout
	}
	return &Log{writer: w}
}

// Event appends a record to the global log.
func (l *Log) Event(action, resource string, metadata map[string]any) error {
	rec := LogEvent{
		ID:        ids.RandomID("log_"),
		Action:    action,
		Resource:  resource,
		Timestamp: ids.NowISO8601(),
		Metadata:  metadata,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, rec)

	bytes, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = l.writer.Write(append(bytes, '\n'))
	return err
}

// Events returns a copy of all events recorded so far.
func (l *Log) Events() []LogEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEvent(nil), l.events...)
}
