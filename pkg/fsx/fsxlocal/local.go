package fsxlocal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Abraxas-365/fetchdrain/pkg/errx"
	"github.com/Abraxas-365/fetchdrain/pkg/fsx"
)

// LocalFileSystem implements fsx.FileSystem using local disk
type LocalFileSystem struct {
	basePath string // Root directory for all files
}

// NewLocalFileSystem creates a new local file system rooted at basePath,
// creating the directory if needed.
func NewLocalFileSystem(basePath string) (*LocalFileSystem, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return &LocalFileSystem{basePath: absPath}, nil
}

// ============================================================================
// FileReader Implementation
// ============================================================================

func (fs *LocalFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fs.fullPath(path))
	if err != nil {
		return nil, fs.wrap(fsx.ErrRead, path, err)
	}
	return data, nil
}

func (fs *LocalFileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(fs.fullPath(path))
	if err != nil {
		return nil, fs.wrap(fsx.ErrRead, path, err)
	}
	return file, nil
}

func (fs *LocalFileSystem) Stat(ctx context.Context, path string) (fsx.FileInfo, error) {
	fullPath := fs.fullPath(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return fsx.FileInfo{}, fs.wrap(fsx.ErrRead, path, err)
	}
	return toFileInfo(info, fullPath), nil
}

// List returns the entries of a directory sorted by name.
func (fs *LocalFileSystem) List(ctx context.Context, path string) ([]fsx.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath := fs.fullPath(path)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fs.wrap(fsx.ErrList, path, err)
	}

	fileInfos := make([]fsx.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue // removed between ReadDir and Info
		}
		fileInfos = append(fileInfos, toFileInfo(info, filepath.Join(fullPath, info.Name())))
	}

	sort.Slice(fileInfos, func(i, j int) bool { return fileInfos[i].Name < fileInfos[j].Name })
	return fileInfos, nil
}

func (fs *LocalFileSystem) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(fs.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ============================================================================
// FileWriter Implementation
// ============================================================================

func (fs *LocalFileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	fullPath := fs.fullPath(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fsx.Failure(fsx.ErrWrite, path, err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fsx.Failure(fsx.ErrWrite, path, err)
	}
	return nil
}

// ============================================================================
// PathOperations Implementation
// ============================================================================

func (fs *LocalFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// ============================================================================
// Helper Methods
// ============================================================================

func (fs *LocalFileSystem) fullPath(path string) string {
	return filepath.Join(fs.basePath, path)
}

func (fs *LocalFileSystem) wrap(code *errx.ErrorCode, path string, err error) error {
	if os.IsNotExist(err) {
		return fsx.NotFound(path)
	}
	return fsx.Failure(code, path, err)
}

func toFileInfo(info os.FileInfo, fullPath string) fsx.FileInfo {
	contentType := ""
	if !info.IsDir() {
		contentType = fsx.ContentType(fullPath)
	}
	return fsx.FileInfo{
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		ContentType: contentType,
		Metadata:    make(map[string]string),
	}
}

// GetBasePath returns the base path
func (fs *LocalFileSystem) GetBasePath() string {
	return fs.basePath
}
