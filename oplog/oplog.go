// ABOUTME: Append-only JSONL audit log of executed operations
// ABOUTME: One record per execute/undo/redo with quota cost and outcome

package oplog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one logged operation outcome.
type Entry struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"time"`
	Action      string    `json:"action"` // execute, undo, redo
	Description string    `json:"description"`
	Cost        int       `json:"cost"`
	Error       string    `json:"error,omitempty"`
}

// Log appends operation records to a JSONL file. A nil *Log is valid and
// records nothing, so callers don't guard every call site.
type Log struct {
	mu sync.Mutex
	f  *os.File
}

// Open opens (creating if needed) the audit log at path.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open oplog %s: %w", path, err)
	}

	return &Log{f: f}, nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.f.Close()
}

// Record implements engine.Recorder: it appends one entry. Write failures
// are swallowed; the audit log never blocks an operation.
func (l *Log) Record(action, description string, cost int, opErr error) {
	if l == nil {
		return
	}

	entry := Entry{
		ID:          uuid.NewString(),
		Time:        time.Now().UTC(),
		Action:      action,
		Description: description,
		Cost:        cost,
	}

	if opErr != nil {
		entry.Error = opErr.Error()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.f.Write(append(line, '\n'))
}

// Read returns all entries in the log at path, oldest first.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oplog %s: %w", path, err)
	}

	var out []Entry

	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode oplog entry: %w", err)
		}

		out = append(out, e)
	}

	return out, nil
}
