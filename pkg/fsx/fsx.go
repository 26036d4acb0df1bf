package fsx

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/errx"
)

var fsxErrors = errx.NewRegistry("FSX")

var (
	ErrNotFound = fsxErrors.Register("NOT_FOUND", errx.TypeNotFound, "File not found")
	ErrRead     = fsxErrors.Register("READ", errx.TypeExternal, "Failed to read file")
	ErrList     = fsxErrors.Register("LIST", errx.TypeExternal, "Failed to list directory")
	ErrWrite    = fsxErrors.Register("WRITE", errx.TypeExternal, "Failed to write file")
)

// NotFound builds an ErrNotFound error for path.
func NotFound(p string) *errx.Error {
	return fsxErrors.New(ErrNotFound).WithDetail("path", p)
}

// Failure wraps a backend error under code with the path attached.
func Failure(code *errx.ErrorCode, p string, cause error) *errx.Error {
	return fsxErrors.NewWithCause(code, cause).WithDetail("path", p)
}

// IsNotFound reports whether err means the path does not exist.
func IsNotFound(err error) bool {
	return errx.HasCode(err, ErrNotFound)
}

// FileInfo represents information about a file
type FileInfo struct {
	Name        string            // Base name of the file
	Size        int64             // File size in bytes
	ModTime     time.Time         // Modification time
	IsDir       bool              // Is a directory
	ContentType string            // MIME type (when available)
	Metadata    map[string]string // Additional metadata
}

// FileReader provides read-only operations
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
	Stat(ctx context.Context, path string) (FileInfo, error)
	List(ctx context.Context, path string) ([]FileInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// FileWriter provides write operations
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
}

// PathOperations provides path manipulation functionality
type PathOperations interface {
	Join(elem ...string) string
}

// PathReader combines read and path operations. It is what sources and
// fetchers depend on.
type PathReader interface {
	FileReader
	PathOperations
}

// FileSystem is a PathReader that can also write, used to seed inputs.
type FileSystem interface {
	PathReader
	FileWriter
}

// ContentType guesses a MIME type from the file extension.
func ContentType(p string) string {
	switch path.Ext(p) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".txt", ".log":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
