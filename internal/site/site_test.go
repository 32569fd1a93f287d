package site

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecms/internal/domain/content"
)

func page(t *testing.T, slug, category string) content.Record {
	t.Helper()
	r, err := content.NewRecord(content.KindPage, slug, map[string]any{"category": category})
	require.NoError(t, err)
	return r
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		category, slug, want string
		ok                   bool
	}{
		{"business-intelligent", "powerbi", "/consulting/business-intelligent/powerbi", true},
		{"data-services", "databricks", "/consulting/data-services/databricks", true},
		{"247-service", "support", "/services/247-service/support", true},
		{"services", "shopify", "/services/shopify", true},
		{"engagement-modes", "dedicated", "/engagement-modes/dedicated", true},
		{"standalone", "privacy", "/privacy", true},
		{"unknown", "x", "", false},
		{"services", "", "", false},
	}
	for _, tt := range tests {
		got, ok := PagePath(tt.category, tt.slug)
		assert.Equal(t, tt.ok, ok, tt.category)
		assert.Equal(t, tt.want, got, tt.category)
	}
}

func TestBuildRoutes(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	rb := &RouteBuilder{Now: now}

	post, err := content.NewRecord(content.KindBlog, "launch", map[string]any{"date": "2024-04-02"})
	require.NoError(t, err)
	routes := rb.Build(
		[]content.Record{post},
		[]content.Record{page(t, "strategy", "business-intelligent"), page(t, "orphan", "nope")},
	)

	byPath := map[string]Route{}
	for _, r := range routes {
		byPath[r.Path] = r
	}
	require.Len(t, routes, 8)

	home := byPath[""]
	assert.Equal(t, RouteHome, home.Kind)
	assert.Equal(t, 1.0, home.Priority)
	assert.Equal(t, "daily", home.ChangeFreq)

	blog := byPath["/blog/launch"]
	assert.Equal(t, 0.8, blog.Priority)
	assert.True(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC).Equal(blog.LastMod))

	svc := byPath["/consulting/business-intelligent/strategy"]
	assert.Equal(t, 0.9, svc.Priority)
	assert.Equal(t, "weekly", svc.ChangeFreq)
	assert.True(t, now.Equal(svc.LastMod))
	assert.Equal(t, "page slug=strategy category=business-intelligent path=/consulting/business-intelligent/strategy priority=0.9", svc.String())
}

func TestSitemap(t *testing.T) {
	rb := &RouteBuilder{Now: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}
	out, err := Sitemap("https://www.lancetindia.com/", rb.BuildStaticRoutes())
	require.NoError(t, err)

	var set struct {
		URLs []struct {
			Loc      string `xml:"loc"`
			LastMod  string `xml:"lastmod"`
			Priority string `xml:"priority"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(out, &set))
	require.Len(t, set.URLs, 6)
	assert.Equal(t, "https://www.lancetindia.com", set.URLs[0].Loc)
	assert.Equal(t, "1.0", set.URLs[0].Priority)
	assert.Equal(t, "https://www.lancetindia.com/about/team", set.URLs[1].Loc)
	assert.Equal(t, "2024-07-01T00:00:00Z", set.URLs[1].LastMod)
}

func TestRobots(t *testing.T) {
	out := string(Robots("https://www.lancetindia.com"))
	assert.Contains(t, out, "Disallow: /admin/\nDisallow: /api/\n")
	assert.Contains(t, out, "User-Agent: ClaudeBot\n")
	assert.Contains(t, out, "Sitemap: https://www.lancetindia.com/sitemap.xml\n")
}
