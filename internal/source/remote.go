package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sitecms/internal/cms"
	"sitecms/internal/domain/content"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/platform/logger"
	"strings"
)

// Querier is the part of the CMS client a Remote source needs.
type Querier interface {
	Connection(ctx context.Context, collection string) ([]cms.Node, error)
	Document(ctx context.Context, collection, relativePath string) (cms.Node, error)
}

// Remote reads from the CMS. The client is acquired on first use, not at
// construction.
type Remote struct {
	acquire func() (Querier, error)
	log     *logger.Logger
}

func NewRemote(p *cms.Provider, log *logger.Logger) *Remote {
	return NewRemoteWith(func() (Querier, error) {
		c, err := p.Client()
		if err != nil {
			return nil, err
		}
		return c, nil
	}, log)
}

// NewRemoteWith takes the acquisition step directly; tests hand it a fake
// Querier.
func NewRemoteWith(acquire func() (Querier, error), log *logger.Logger) *Remote {
	if log == nil {
		log = logger.NewNop()
	}
	return &Remote{acquire: acquire, log: log}
}

func (r *Remote) querier() (Querier, error) {
	q, err := r.acquire()
	if err != nil {
		return nil, &domainerr.SourceUnavailableError{Source: "cms", Err: err}
	}
	return q, nil
}

func (r *Remote) List(ctx context.Context, kind content.Kind) ([]content.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("kind %q: %w", kind, domainerr.ErrInvalid)
	}
	q, err := r.querier()
	if err != nil {
		return nil, err
	}
	nodes, err := q.Connection(ctx, kind.Collection())
	if err != nil {
		return nil, &domainerr.SourceUnavailableError{Source: "cms", Err: err}
	}

	out := make([]content.Record, 0, len(nodes))
	for _, n := range nodes {
		rec, err := toRecord(kind, n)
		if err != nil {
			r.log.Warn("skipping malformed cms document", "kind", kind, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Remote) Get(ctx context.Context, kind content.Kind, id string) (*content.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("kind %q: %w", kind, domainerr.ErrInvalid)
	}
	if !ValidID(id) {
		return nil, fmt.Errorf("%s %q: %w", kind, id, domainerr.ErrNotFound)
	}

	// The CMS only has get-by-path queries for blog and page; the rest are
	// looked up in their connection.
	if kind != content.KindBlog && kind != content.KindPage {
		recs, err := r.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			if recs[i].SourceID == id {
				return &recs[i], nil
			}
		}
		return nil, fmt.Errorf("%s %q: %w", kind, id, domainerr.ErrNotFound)
	}

	q, err := r.querier()
	if err != nil {
		return nil, err
	}
	for _, rel := range candidates(kind, id) {
		node, err := q.Document(ctx, kind.Collection(), rel)
		if errors.Is(err, domainerr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, &domainerr.SourceUnavailableError{Source: "cms", Err: err}
		}
		rec, err := toRecord(kind, node)
		if err != nil {
			return nil, &domainerr.ParseError{Path: kind.Collection() + "/" + rel, Err: err}
		}
		return &rec, nil
	}
	return nil, fmt.Errorf("%s %q: %w", kind, id, domainerr.ErrNotFound)
}

// toRecord flattens a CMS node into the record shape the local reader
// produces: _sys.filename becomes the source id, CMS bookkeeping keys and
// null (unset) fields are dropped, and body lands in Body.
func toRecord(kind content.Kind, n cms.Node) (content.Record, error) {
	id := sysFilename(n)
	if id == "" {
		return content.Record{}, errors.New("document has no _sys.filename")
	}
	fields := make(map[string]any, len(n))
	for k, v := range n {
		if v == nil || k == "_sys" || k == "id" || strings.HasPrefix(k, "__") {
			continue
		}
		fields[k] = v
	}
	return content.NewRecord(kind, id, fields)
}

func sysFilename(n cms.Node) string {
	sys, ok := n["_sys"].(map[string]any)
	if !ok {
		return ""
	}
	if name, _ := sys["filename"].(string); name != "" {
		return name
	}
	// relativePath carries the extension; filename does not
	rel, _ := sys["relativePath"].(string)
	return strings.TrimSuffix(rel, path.Ext(rel))
}
