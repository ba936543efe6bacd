package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// zipMagic opens every OOXML workbook
var zipMagic = []byte("PK\x03\x04")

// WorkbookExtensions are the spreadsheet formats the decoder reads
var WorkbookExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

var (
	// ErrNotWorkbook is returned for files that are not OOXML workbooks
	ErrNotWorkbook = errors.New("file is not an Excel workbook")
	// ErrEmptyFile is returned for zero-length files
	ErrEmptyFile = errors.New("file is empty")
	// ErrTempFile is returned for Office lock files such as ~$book.xlsx
	ErrTempFile = errors.New("file is a temporary Excel file")
)

// FileValidator checks spreadsheet inputs for the CLI and upload endpoint
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateWorkbookName checks the extension of an uploaded or local file name
func (v *FileValidator) ValidateWorkbookName(name string) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file", slog.String("file", name))
		return fmt.Errorf("%w: %s", ErrTempFile, base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, allowed := range WorkbookExtensions {
		if ext == allowed {
			return nil
		}
	}
	v.logger.Warn("Rejecting file with unsupported extension",
		slog.String("file", name),
		slog.String("extension", ext))
	return fmt.Errorf("%w: unsupported extension %q", ErrNotWorkbook, ext)
}

// SniffWorkbook verifies that r starts with a zip local file header and
// returns a reader that still yields the complete content.
func (v *FileValidator) SniffWorkbook(r io.Reader) (io.Reader, error) {
	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(r, head)
	switch {
	case n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF):
		return nil, ErrEmptyFile
	case err == io.ErrUnexpectedEOF:
		return nil, fmt.Errorf("%w: truncated content", ErrNotWorkbook)
	case err != nil:
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}

	if !bytes.Equal(head, zipMagic) {
		v.logger.Warn("Rejecting file without workbook signature",
			slog.String("signature", fmt.Sprintf("%x", head)))
		return nil, fmt.Errorf("%w: missing zip signature", ErrNotWorkbook)
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

// ValidateFile checks that a local path exists, is a regular file and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbookFile checks a local workbook path before decoding it
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if err := v.ValidateWorkbookName(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	defer file.Close()

	if _, err := v.SniffWorkbook(file); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidateOutputDirectory ensures an output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)
	return nil
}
