package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Capture collects JSON log lines in memory. It is safe for concurrent writers
// and is meant for assertions in tests.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewCapture returns a debug-level JSON logger and the Capture it writes to.
func NewCapture() (*slog.Logger, *Capture) {
	c := &Capture{}
	return New(c, "debug"), c
}

func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Entries decodes every captured line.
func (c *Capture) Entries() ([]map[string]any, error) {
	var entries []map[string]any
	sc := bufio.NewScanner(bytes.NewReader([]byte(c.String())))
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("log line %d: %w", n, err)
		}
		entries = append(entries, entry)
	}
	return entries, sc.Err()
}
