// Package sink persists scraper output: contact rows to CSV and per-run
// statistics snapshots to JSON.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/rpineda26/facultyscraper/internal/scraper"
)

var csvHeader = []string{"email", "name", "office", "department", "profile_url"}

// CSV appends contact records to a delimited file, flushing after every row
// so a mid-run crash loses at most the in-flight record.
type CSV struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSV opens path in append mode, writing the header only when the file is
// empty.
func NewCSV(path string) (*CSV, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open result file %s: %w", path, err)
	}
	writer := csv.NewWriter(file)

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat result file %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := writer.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flush header: %w", err)
		}
	}

	return &CSV{file: file, writer: writer}, nil
}

// Write appends one record and flushes it.
func (c *CSV) Write(record *scraper.ContactRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := []string{
		record.Email,
		record.Name,
		record.Office,
		record.Department,
		record.ProfileURL,
	}
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return fmt.Errorf("flush on close: %w", err)
	}
	if err := c.file.Close(); err != nil {
		return fmt.Errorf("close result file: %w", err)
	}
	return nil
}
