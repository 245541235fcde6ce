package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"hackermove/models"
)

var csvHeader = []string{
	"id", "address", "bedrooms", "bathrooms", "price", "size_text",
	"size", "value", "url", "listed_at", "property_type", "tenure",
}

// CSVWriter exports dataset rows to a CSV file, one row per listing in
// dataset order. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	c, err := newCSVWriter(f, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

func newCSVWriter(w io.Writer, closer io.Closer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	return &CSVWriter{closer: closer, writer: cw}, cw.Error()
}

// Write appends every row of ds.
func (c *CSVWriter) Write(_ context.Context, ds *models.Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range ds.Rows() {
		if err := c.writer.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("csv: write row %s: %w", r.ID, err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func csvRecord(r models.Row) []string {
	return []string{
		r.ID,
		r.Address,
		intField(r.Bedrooms),
		intField(r.Bathrooms),
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		stringField(r.SizeText),
		floatField(r.Size),
		int64Field(r.Value),
		r.URL,
		r.ListedAt.Format(time.RFC3339),
		r.PropertyType,
		string(r.Tenure),
	}
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}

func intField(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func int64Field(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func floatField(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func stringField(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
