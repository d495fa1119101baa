// Package audit keeps the append-only completed-download trail: one
// JSON record per line, non-authoritative.
package audit

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Entry is one completed download.
type Entry struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// Log appends entries to a JSONL file.
type Log struct {
	mu   sync.Mutex
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append writes one record. The file is created on first use.
func (l *Log) Append(id, filename string, size int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(Entry{
		ID:        id,
		Filename:  filename,
		Size:      size,
		Timestamp: time.Now(),
	})
}
