package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter streams records to an underlying writer
type CSVWriter struct {
	writer *csv.Writer
	rows   int
}

// NewCSVWriter writes the optional BOM and header row and returns a writer
// ready for records.
func NewCSVWriter(w io.Writer, options WriteOptions) (*CSVWriter, error) {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := &CSVWriter{writer: csv.NewWriter(w)}
	if len(options.Headers) > 0 {
		if err := cw.writer.Write(options.Headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return cw, nil
}

// WriteRecord writes a single record
func (c *CSVWriter) WriteRecord(record []string) error {
	if err := c.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", c.rows, err)
	}
	c.rows++
	return nil
}

// Rows returns the number of records written after the header
func (c *CSVWriter) Rows() int {
	return c.rows
}

// Flush writes buffered data and reports any write error
func (c *CSVWriter) Flush() error {
	c.writer.Flush()
	return c.writer.Error()
}

// WriteCSV writes headers and records in one call
func WriteCSV(w io.Writer, options WriteOptions, records [][]string) error {
	cw, err := NewCSVWriter(w, options)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := cw.WriteRecord(record); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// WriteFile creates filePath, including missing directories, and fills it
// through write.
func WriteFile(filePath string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	return write(file)
}
