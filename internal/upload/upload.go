package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fmuoria/resume-admin/internal/client"
)

const (
	// MaxFiles is the largest batch accepted in one upload
	MaxFiles = 25
	// MaxFileSize is the per-file limit in bytes
	MaxFileSize = 10 * 1024 * 1024
	// pdfMagic opens every PDF document
	pdfMagic = "%PDF-"
)

var (
	ErrNoFiles      = errors.New("Please select at least one PDF file")
	ErrTooManyFiles = errors.New("You can only upload a maximum of 25 files at once")
	ErrNotPDF       = errors.New("Please upload PDF files only")
	ErrFileTooLarge = errors.New("Each file must be less than 10MB")
	ErrEmptyFile    = errors.New("Downloaded file is empty")
)

// File is one local file selected for upload
type File struct {
	Name string
	Path string
	Size int64
	// Head holds the first bytes of the file for type sniffing
	Head []byte
}

// IsPDF reports whether the file looks like a PDF by extension and content
func (f File) IsPDF() bool {
	if !strings.EqualFold(filepath.Ext(f.Name), ".pdf") {
		return false
	}
	return bytes.HasPrefix(f.Head, []byte(pdfMagic))
}

// Validate checks a selection against the batch and per-file limits.
// The whole selection is rejected on the first violation.
func Validate(files []File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	if len(files) > MaxFiles {
		return ErrTooManyFiles
	}
	for _, f := range files {
		if !f.IsPDF() {
			return fmt.Errorf("%s: %w", f.Name, ErrNotPDF)
		}
	}
	for _, f := range files {
		if f.Size > MaxFileSize {
			return fmt.Errorf("%s: %w", f.Name, ErrFileTooLarge)
		}
	}
	return nil
}

// Message returns the user-facing text of a validation error
func Message(err error) string {
	for _, sentinel := range []error{ErrNoFiles, ErrTooManyFiles, ErrNotPDF, ErrFileTooLarge, ErrEmptyFile} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// LoadFiles stats and sniffs each path. Directories are skipped.
func LoadFiles(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			continue
		}

		head, err := readHead(p)
		if err != nil {
			return nil, err
		}

		files = append(files, File{
			Name: filepath.Base(p),
			Path: p,
			Size: info.Size(),
			Head: head,
		})
	}
	return files, nil
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return head[:n], nil
}

// Parts turns validated files into multipart parts read lazily from disk
func Parts(files []File) []client.UploadFile {
	parts := make([]client.UploadFile, 0, len(files))
	for _, f := range files {
		path := f.Path
		parts = append(parts, client.UploadFile{
			Name: f.Name,
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return parts
}

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// DownloadName is the file name a downloaded resume is saved under
func DownloadName(name string) string {
	name = strings.TrimSpace(unsafeChars.ReplaceAllString(name, "_"))
	if name == "" {
		name = "resume"
	}
	return name + "_resume.pdf"
}

// SaveDownload writes a downloaded resume into dir and returns its path
func SaveDownload(dir, name string, body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyFile
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	path := filepath.Join(dir, DownloadName(name))
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
