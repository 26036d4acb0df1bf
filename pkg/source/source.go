// Package source supplies the ordered work items a drain is run over.
package source

import (
	"context"
	"path"
	"sort"

	"github.com/Abraxas-365/fetchdrain/pkg/errx"
	"github.com/Abraxas-365/fetchdrain/pkg/fsx"
)

var sourceErrors = errx.NewRegistry("SOURCE")

var (
	ErrListFailed = sourceErrors.Register("LIST_FAILED", errx.TypeExternal, "Failed to enumerate work items")
	ErrBadPattern = sourceErrors.Register("BAD_PATTERN", errx.TypeValidation, "Invalid file name pattern")
)

// Source lists the work item identifiers of a batch, in launch order.
// Errors are fatal to the batch: nothing is launched.
type Source interface {
	ListWorkItems(ctx context.Context) ([]string, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context) ([]string, error)

// ListWorkItems calls f.
func (f Func) ListWorkItems(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Static is a fixed list of items.
type Static []string

// ListWorkItems returns a copy of the list.
func (s Static) ListWorkItems(ctx context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

// FS lists the files directly inside Dir of a file system.
type FS struct {
	Reader fsx.PathReader
	Dir    string
	// Pattern, when set, is a path.Match pattern applied to base names.
	Pattern string
}

// NewFS creates a directory source.
func NewFS(reader fsx.PathReader, dir, pattern string) *FS {
	return &FS{Reader: reader, Dir: dir, Pattern: pattern}
}

// ListWorkItems returns Dir-joined paths of every non-directory entry,
// ordered by name.
func (s *FS) ListWorkItems(ctx context.Context) ([]string, error) {
	if s.Pattern != "" {
		if _, err := path.Match(s.Pattern, ""); err != nil {
			return nil, sourceErrors.NewWithCause(ErrBadPattern, err).WithDetail("pattern", s.Pattern)
		}
	}

	entries, err := s.Reader.List(ctx, s.Dir)
	if err != nil {
		return nil, sourceErrors.NewWithCause(ErrListFailed, err).WithDetail("dir", s.Dir)
	}

	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		if s.Pattern != "" {
			if ok, _ := path.Match(s.Pattern, entry.Name); !ok {
				continue
			}
		}
		items = append(items, s.Reader.Join(s.Dir, entry.Name))
	}
	sort.Strings(items)
	return items, nil
}
