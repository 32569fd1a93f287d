package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sitecms/internal/domain/content"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/ingest"
)

// Local reads one subdirectory per kind under root. Every call goes back to
// disk.
type Local struct {
	root   string
	reader *ingest.Reader
}

func NewLocal(root string, reader *ingest.Reader) *Local {
	if reader == nil {
		reader = ingest.NewReader(nil, nil)
	}
	return &Local{root: root, reader: reader}
}

func (l *Local) Root() string { return l.root }

func (l *Local) Dir(kind content.Kind) string {
	return filepath.Join(l.root, kind.Dir())
}

func exts(kind content.Kind) []string {
	switch kind {
	case content.KindBlog:
		return ingest.MixedExts
	case content.KindPage:
		return ingest.MarkdownExts
	default:
		return ingest.JSONExts
	}
}

func (l *Local) List(ctx context.Context, kind content.Kind) ([]content.Record, error) {
	recs, _, err := l.Scan(ctx, kind)
	return recs, err
}

// Scan is List plus the per-file warnings. A missing directory is reported as
// a SourceUnavailableError alongside the (empty) result.
func (l *Local) Scan(ctx context.Context, kind content.Kind) ([]content.Record, []ingest.Warning, error) {
	if !kind.Valid() {
		return nil, nil, fmt.Errorf("kind %q: %w", kind, domainerr.ErrInvalid)
	}
	dir := l.Dir(kind)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", dir)
		}
		w := ingest.Warning{Path: dir, Msg: "content directory unavailable"}
		return []content.Record{}, []ingest.Warning{w}, &domainerr.SourceUnavailableError{Source: dir, Err: err}
	}
	return l.reader.ReadDir(ctx, kind, dir, exts(kind)...)
}

func (l *Local) Get(ctx context.Context, kind content.Kind, id string) (*content.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("kind %q: %w", kind, domainerr.ErrInvalid)
	}
	if !ValidID(id) {
		return nil, fmt.Errorf("%s %q: %w", kind, id, domainerr.ErrNotFound)
	}
	for _, name := range candidates(kind, id) {
		rec, err := l.reader.ReadFile(ctx, kind, filepath.Join(l.Dir(kind), name))
		if errors.Is(err, domainerr.ErrNotFound) {
			continue
		}
		return rec, err
	}
	return nil, fmt.Errorf("%s %q: %w", kind, id, domainerr.ErrNotFound)
}
