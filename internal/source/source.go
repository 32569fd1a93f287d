// Package source resolves content records from one storage origin: the local
// content directory or the remote CMS. Both implementations return the same
// record shapes for the same content.
package source

import (
	"context"
	"sitecms/internal/domain/content"
	"strings"
)

type Source interface {
	// List returns every record of kind, in no particular order.
	List(ctx context.Context, kind content.Kind) ([]content.Record, error)
	// Get returns one record by its source id; ErrNotFound when absent.
	Get(ctx context.Context, kind content.Kind, id string) (*content.Record, error)
}

// Mode names the origin a Source reads from.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// ValidID rejects lookups that could escape the kind's directory.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

// candidates lists the filenames tried, in order, for a single lookup.
func candidates(kind content.Kind, id string) []string {
	switch kind {
	case content.KindPage:
		return []string{id + ".mdx", id + ".md"}
	case content.KindBlog:
		return []string{id + ".json", id + ".mdx", id + ".md"}
	default:
		return []string{id + ".json"}
	}
}
