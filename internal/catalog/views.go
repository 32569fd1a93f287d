package catalog

import (
	"sitecms/internal/domain/content"
	"sort"
)

// Views never modify their input and always return a fresh, non-nil slice.

// FilterByCategory keeps records whose category equals category exactly.
func FilterByCategory(recs []content.Record, category string) []content.Record {
	out := make([]content.Record, 0, len(recs))
	for _, r := range recs {
		if c, _ := r.Fields["category"].(string); c == category {
			out = append(out, r)
		}
	}
	return out
}

// ServicesForHome keeps pages flagged for the homepage service section.
func ServicesForHome(pages []content.Record) []content.Record {
	out := make([]content.Record, 0, len(pages))
	for _, p := range pages {
		if p.Bool("showInServiceSection") {
			out = append(out, p)
		}
	}
	return out
}

func Slug(r content.Record) string { return r.Slug() }

// SortByDateDesc orders by the date field, newest first. Undated records go
// last; ties keep SourceID order.
func SortByDateDesc(recs []content.Record) []content.Record {
	out := make([]content.Record, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date("date"), out[j].Date("date")
		switch {
		case di.IsZero() != dj.IsZero():
			return !di.IsZero()
		case !di.Equal(dj):
			return di.After(dj)
		default:
			return out[i].SourceID < out[j].SourceID
		}
	})
	return out
}

// Related returns the other pages in the same category as slug.
func Related(pages []content.Record, slug string) []content.Record {
	var category string
	found := false
	for _, p := range pages {
		if p.Slug() == slug {
			category, _ = p.Fields["category"].(string)
			found = true
			break
		}
	}
	if !found {
		return []content.Record{}
	}
	out := make([]content.Record, 0)
	for _, p := range FilterByCategory(pages, category) {
		if p.Slug() != slug {
			out = append(out, p)
		}
	}
	return out
}

// ActiveOnly keeps job openings that are open for applications.
func ActiveOnly(openings []content.Record) []content.Record {
	out := make([]content.Record, 0, len(openings))
	for _, o := range openings {
		if o.Bool("isActive") {
			out = append(out, o)
		}
	}
	return out
}

func sortedByID(recs []content.Record) []content.Record {
	out := make([]content.Record, len(recs))
	copy(out, recs)
	content.SortBySourceID(out)
	return out
}
