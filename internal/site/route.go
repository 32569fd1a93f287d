package site

import (
	"fmt"
	"strings"
	"time"
)

type RouteKind string

const (
	RouteHome    RouteKind = "home"
	RouteStatic  RouteKind = "static"
	RoutePost    RouteKind = "post"
	RoutePage    RouteKind = "page"
	RouteSitemap RouteKind = "sitemap"
	RouteRobots  RouteKind = "robots"
)

type Route struct {
	Kind       RouteKind
	Slug       string
	Category   string
	Path       string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Category != "" {
		parts = append(parts, "category="+r.Category)
	}
	if r.Path != "" {
		parts = append(parts, "path="+r.Path)
	}
	if r.Priority > 0 {
		parts = append(parts, fmt.Sprintf("priority=%.1f", r.Priority))
	}
	return strings.Join(parts, " ")
}
