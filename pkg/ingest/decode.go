package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

var errEmptyArchive = errors.New("zero-length input")

// Decode parses a fully buffered zip archive into a FileSet.
//
// Directory placeholder entries are skipped. Entry checksums are verified
// while each entry is read, so a corrupt entry fails the whole decode. When
// an archive repeats a path, the later content wins and the path keeps the
// position of its first occurrence.
func Decode(data []byte) (*FileSet, error) {
	if len(data) == 0 {
		return nil, MalformedArchiveError{Err: errEmptyArchive}
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, MalformedArchiveError{Err: err}
	}

	fs := &FileSet{
		paths:   make([]string, 0, len(zr.File)),
		content: make(map[string][]byte, len(zr.File)),
	}
	for _, f := range zr.File {
		if isDirEntry(f) {
			continue
		}

		content, err := readEntry(f)
		if err != nil {
			return nil, MalformedArchiveError{Entry: f.Name, Err: err}
		}

		if _, seen := fs.content[f.Name]; !seen {
			fs.paths = append(fs.paths, f.Name)
		}
		fs.content[f.Name] = content
	}
	return fs, nil
}

func isDirEntry(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir()
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer rc.Close() //nolint:errcheck // close errors on readers are non-actionable

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return content, nil
}
