package site

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders routes as a sitemaps.org urlset rooted at baseURL.
func Sitemap(baseURL string, routes []Route) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, r := range routes {
		u := sitemapURL{
			Loc:        base + r.Path,
			ChangeFreq: r.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", r.Priority),
		}
		if !r.LastMod.IsZero() {
			u.LastMod = r.LastMod.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// AI crawlers the site explicitly welcomes.
var aiCrawlers = []string{
	"GPTBot",
	"ChatGPT-User",
	"Google-Extended",
	"ClaudeBot",
	"anthropic-ai",
	"Applebot-Extended",
	"PerplexityBot",
	"cohere-ai",
}

func Robots(baseURL string) []byte {
	var b strings.Builder
	b.WriteString("User-Agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\n")
	for _, ua := range aiCrawlers {
		b.WriteString("User-Agent: " + ua + "\n")
	}
	b.WriteString("Allow: /\n\n")
	b.WriteString("Sitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n")
	return []byte(b.String())
}
