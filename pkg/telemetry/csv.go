package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"iso8601", "ts_ms", "raw", "filtered", "min", "max", "mapped", "command", "mode",
}

// CSV appends records to a CSV file, writing the header when the file is new.
type CSV struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSV opens path for appending, creating parent directories as needed.
func NewCSV(path string) (*CSV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	c := &CSV{file: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := c.write(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
	}

	return c, nil
}

// Publish appends r.
func (c *CSV) Publish(r Record) error {
	return c.write([]string{
		r.Timestamp.Format(time.RFC3339Nano),
		strconv.FormatInt(r.Timestamp.UnixMilli(), 10),
		formatFloat(r.Raw),
		formatFloat(r.Filtered),
		formatFloat(r.Min),
		formatFloat(r.Max),
		formatFloat(r.Mapped),
		strconv.Itoa(r.Command),
		string(r.Mode),
	})
}

func (c *CSV) write(row []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return os.ErrClosed
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}
	c.w.Flush()
	err := c.file.Close()
	c.file = nil
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
