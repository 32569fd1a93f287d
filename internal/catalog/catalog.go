// Package catalog is the content facade pages and handlers call. It hides
// which source is configured: every accessor behaves the same for local files
// and the remote CMS.
//
// List accessors never fail; any error is logged and an empty slice comes
// back. Single-record accessors return nil on not-found or any failure.
package catalog

import (
	"context"
	"errors"
	"sitecms/internal/cms"
	"sitecms/internal/domain/config"
	"sitecms/internal/domain/content"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/ingest"
	"sitecms/internal/metrics"
	"sitecms/internal/platform/logger"
	"sitecms/internal/source"
)

type Catalog struct {
	src     source.Source
	mode    source.Mode
	log     *logger.Logger
	metrics *metrics.Metrics
}

func New(src source.Source, mode source.Mode, log *logger.Logger, m *metrics.Metrics) *Catalog {
	if log == nil {
		log = logger.NewNop()
	}
	return &Catalog{src: src, mode: mode, log: log, metrics: m}
}

// FromConfig picks the source once from the content mode flag. Remote mode
// does not contact the CMS until the first accessor call.
func FromConfig(cfg config.Config, log *logger.Logger, m *metrics.Metrics) *Catalog {
	if cfg.Content.Local {
		src := source.NewLocal(cfg.Content.Root, ingest.NewReader(log, m))
		return New(src, source.ModeLocal, log, m)
	}
	provider := cms.NewProvider(cms.Config{
		URL:     cfg.CMS.Endpoint(),
		Token:   cfg.CMS.Token,
		Timeout: cfg.CMS.Timeout,
	}, log, m)
	return New(source.NewRemote(provider, log), source.ModeRemote, log, m)
}

func (c *Catalog) Mode() source.Mode { return c.mode }

// Source exposes the underlying source for tools that need raw access.
func (c *Catalog) Source() source.Source { return c.src }

func (c *Catalog) list(ctx context.Context, kind content.Kind) []content.Record {
	c.metrics.AccessorCall(string(kind), string(c.mode))
	recs, err := c.src.List(ctx, kind)
	if err != nil {
		c.metrics.SourceFailure(string(kind), string(c.mode))
		c.log.Warn("content list unavailable, serving empty", "kind", kind, "mode", c.mode, "error", err)
		return []content.Record{}
	}
	if recs == nil {
		return []content.Record{}
	}
	return recs
}

func (c *Catalog) one(ctx context.Context, kind content.Kind, id string) *content.Record {
	c.metrics.AccessorCall(string(kind), string(c.mode))
	rec, err := c.src.Get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, domainerr.ErrNotFound) {
			c.log.Debug("content not found", "kind", kind, "id", id)
			return nil
		}
		c.metrics.SourceFailure(string(kind), string(c.mode))
		c.log.Warn("content lookup failed", "kind", kind, "id", id, "mode", c.mode, "error", err)
		return nil
	}
	return rec
}

// BlogPosts returns every post, newest first.
func (c *Catalog) BlogPosts(ctx context.Context) []content.Record {
	return SortByDateDesc(c.list(ctx, content.KindBlog))
}

func (c *Catalog) BlogPost(ctx context.Context, id string) *content.Record {
	return c.one(ctx, content.KindBlog, id)
}

// Pages returns every page, newest first; undated pages by slug.
func (c *Catalog) Pages(ctx context.Context) []content.Record {
	return SortByDateDesc(c.list(ctx, content.KindPage))
}

func (c *Catalog) Page(ctx context.Context, slug string) *content.Record {
	return c.one(ctx, content.KindPage, slug)
}

func (c *Catalog) PagesByCategory(ctx context.Context, category string) []content.Record {
	return FilterByCategory(c.Pages(ctx), category)
}

// Services returns the pages shown in the homepage service section.
func (c *Catalog) Services(ctx context.Context) []content.Record {
	return ServicesForHome(c.Pages(ctx))
}

// RelatedPages returns the other pages sharing slug's category.
func (c *Catalog) RelatedPages(ctx context.Context, slug string) []content.Record {
	return Related(c.Pages(ctx), slug)
}

func (c *Catalog) Testimonials(ctx context.Context) []content.Record {
	return sortedByID(c.list(ctx, content.KindTestimonial))
}

func (c *Catalog) Partners(ctx context.Context) []content.Record {
	return sortedByID(c.list(ctx, content.KindPartner))
}

func (c *Catalog) Features(ctx context.Context) []content.Record {
	return sortedByID(c.list(ctx, content.KindFeature))
}

func (c *Catalog) Stats(ctx context.Context) []content.Record {
	return sortedByID(c.list(ctx, content.KindStat))
}

func (c *Catalog) Gallery(ctx context.Context) []content.Record {
	return sortedByID(c.list(ctx, content.KindGallery))
}

func (c *Catalog) JobOpenings(ctx context.Context) []content.Record {
	return sortedByID(c.list(ctx, content.KindJobOpening))
}

func (c *Catalog) ActiveJobOpenings(ctx context.Context) []content.Record {
	return ActiveOnly(c.JobOpenings(ctx))
}

// ByKind dispatches to the kind's list accessor, keeping its ordering.
func (c *Catalog) ByKind(ctx context.Context, kind content.Kind) []content.Record {
	switch kind {
	case content.KindBlog:
		return c.BlogPosts(ctx)
	case content.KindPage:
		return c.Pages(ctx)
	case content.KindTestimonial:
		return c.Testimonials(ctx)
	case content.KindPartner:
		return c.Partners(ctx)
	case content.KindFeature:
		return c.Features(ctx)
	case content.KindStat:
		return c.Stats(ctx)
	case content.KindGallery:
		return c.Gallery(ctx)
	case content.KindJobOpening:
		return c.JobOpenings(ctx)
	default:
		return []content.Record{}
	}
}

// One looks up a single record of any kind.
func (c *Catalog) One(ctx context.Context, kind content.Kind, id string) *content.Record {
	if !kind.Valid() {
		return nil
	}
	return c.one(ctx, kind, id)
}
