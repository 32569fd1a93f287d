package site

import (
	"sitecms/internal/domain/content"
	"strings"
	"time"
)

// categoryPrefix is the routing allow-list: a page is reachable only if its
// category has an entry here.
var categoryPrefix = map[string]string{
	content.CategoryBusinessIntelligent: "/consulting/business-intelligent",
	content.CategoryDataIntegration:     "/consulting/data-integration",
	content.CategoryDataServices:        "/consulting/data-services",
	content.Category247Service:          "/services/247-service",
	content.CategoryEngagementModes:     "/engagement-modes",
	content.CategoryServices:            "/services",
	content.CategoryStandalone:          "",
}

var staticPaths = []string{
	"",
	"/about/team",
	"/about/careers",
	"/contact",
	"/blog",
	"/resources/dashboard-gallery",
}

// PagePath is the public URL path of a page, or false when its category is
// not routable.
func PagePath(category, slug string) (string, bool) {
	prefix, ok := categoryPrefix[category]
	if !ok || slug == "" {
		return "", false
	}
	return prefix + "/" + slug, true
}

func PostPath(id string) string { return "/blog/" + id }

type RouteBuilder struct {
	Now time.Time
}

func (rb *RouteBuilder) BuildStaticRoutes() []Route {
	routes := make([]Route, 0, len(staticPaths))
	for _, p := range staticPaths {
		kind := RouteStatic
		if p == "" {
			kind = RouteHome
		}
		routes = append(routes, rb.route(kind, "", "", p, time.Time{}))
	}
	return routes
}

func (rb *RouteBuilder) BuildPostRoutes(posts []content.Record) []Route {
	var routes []Route
	for _, p := range posts {
		routes = append(routes, rb.route(RoutePost, p.Slug(), "", PostPath(p.Slug()), p.Date("date")))
	}
	return routes
}

// BuildPageRoutes skips pages whose category has no URL prefix.
func (rb *RouteBuilder) BuildPageRoutes(pages []content.Record) []Route {
	var routes []Route
	for _, p := range pages {
		path, ok := PagePath(p.Category(), p.Slug())
		if !ok {
			continue
		}
		routes = append(routes, rb.route(RoutePage, p.Slug(), p.Category(), path, p.Date("date")))
	}
	return routes
}

// Build is every public route: static pages, then pages, then posts.
func (rb *RouteBuilder) Build(posts, pages []content.Record) []Route {
	routes := rb.BuildStaticRoutes()
	routes = append(routes, rb.BuildPageRoutes(pages)...)
	routes = append(routes, rb.BuildPostRoutes(posts)...)
	return routes
}

func (rb *RouteBuilder) route(kind RouteKind, slug, category, path string, mod time.Time) Route {
	if mod.IsZero() {
		mod = rb.now()
	}
	r := Route{
		Kind:       kind,
		Slug:       slug,
		Category:   category,
		Path:       path,
		LastMod:    mod,
		ChangeFreq: "weekly",
		Priority:   0.9,
	}
	switch {
	case path == "":
		r.ChangeFreq = "daily"
		r.Priority = 1.0
	case strings.Contains(path, "/blog"):
		r.Priority = 0.8
	}
	return r
}

func (rb *RouteBuilder) now() time.Time {
	if rb.Now.IsZero() {
		return time.Now().UTC()
	}
	return rb.Now
}
