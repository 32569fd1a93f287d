package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sitecms/internal/domain/content"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/metrics"
	"sitecms/internal/platform/logger"
)

// Extensions accepted for each file format.
var (
	JSONExts     = []string{".json"}
	MarkdownExts = []string{".md", ".mdx"}
	MixedExts    = []string{".json", ".md", ".mdx"}
)

type Warning struct {
	Path string
	Msg  string
}

func (w Warning) String() string { return w.Path + ": " + w.Msg }

// Reader parses content directories. A bad file or a missing directory is
// never fatal: it becomes a Warning, is logged, and the scan continues.
type Reader struct {
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewReader(log *logger.Logger, m *metrics.Metrics) *Reader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reader{log: log, metrics: m}
}

// ReadDir parses every file in dir with one of exts. Records come back in
// directory order; callers that need an order must sort. The only error is
// ctx's, checked between files.
func (r *Reader) ReadDir(ctx context.Context, kind content.Kind, dir string, exts ...string) ([]content.Record, []Warning, error) {
	files, err := DiscoverSource(dir, exts...)
	if err != nil {
		w := Warning{Path: dir, Msg: "content directory unavailable: " + err.Error()}
		r.log.Warn("content directory unavailable", "kind", kind, "dir", dir, "error", err)
		return []content.Record{}, []Warning{w}, nil
	}

	out := make([]content.Record, 0, len(files))
	var warns []Warning
	for _, sf := range files {
		if err := ctx.Err(); err != nil {
			return nil, warns, err
		}
		rec, err := r.parse(kind, sf.Path)
		if err != nil {
			warns = append(warns, Warning{Path: sf.Path, Msg: "skipped: " + err.Error()})
			r.log.Warn("skipping unparseable content file", "kind", kind, "path", sf.Path, "error", err)
			r.metrics.FileSkipped()
			continue
		}
		out = append(out, rec)
	}
	return out, warns, nil
}

// ReadMixedDir reads a directory holding JSON and front-matter files side by
// side.
func (r *Reader) ReadMixedDir(ctx context.Context, kind content.Kind, dir string) ([]content.Record, []Warning, error) {
	return r.ReadDir(ctx, kind, dir, MixedExts...)
}

// ReadFile parses a single file. A missing file is ErrNotFound; a malformed
// one is a *ParseError.
func (r *Reader) ReadFile(ctx context.Context, kind content.Kind, path string) (*content.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.parse(kind, path)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Reader) parse(kind content.Kind, path string) (content.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return content.Record{}, domainerr.ErrNotFound
		}
		return content.Record{}, err
	}
	return DecodeFile(kind, path, raw)
}
