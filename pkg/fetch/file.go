package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Abraxas-365/fetchdrain/pkg/fsx"
)

// FileReport is what FileFetcher produces for one file.
type FileReport struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
	Lines       int    `json:"lines"`
	ContentType string `json:"content_type"`
}

// FileFetcher reads a file from any fsx.FileReader and summarizes it.
type FileFetcher struct {
	reader fsx.FileReader
}

// NewFileFetcher creates a fetcher over reader.
func NewFileFetcher(reader fsx.FileReader) *FileFetcher {
	return &FileFetcher{reader: reader}
}

// Process fetches path and returns its report.
func (f *FileFetcher) Process(ctx context.Context, path string) (FileReport, error) {
	data, err := f.reader.ReadFile(ctx, path)
	if err != nil {
		return FileReport{}, fetchErrors.NewWithCause(ErrFetchFailed, err).WithDetail("item", path)
	}

	sum := sha256.Sum256(data)
	return FileReport{
		Path:        path,
		Size:        int64(len(data)),
		SHA256:      hex.EncodeToString(sum[:]),
		Lines:       countLines(data),
		ContentType: fsx.ContentType(path),
	}, nil
}

// countLines counts newline-terminated lines plus a trailing partial one.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
