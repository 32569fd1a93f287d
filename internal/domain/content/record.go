package content

import (
	"encoding/json"
	"fmt"
	"sitecms/internal/richtext"
	"sort"
	"strings"
	"time"
)

type Kind string

const (
	KindBlog        Kind = "blog"
	KindPage        Kind = "page"
	KindTestimonial Kind = "testimonial"
	KindPartner     Kind = "partner"
	KindFeature     Kind = "feature"
	KindStat        Kind = "stat"
	KindGallery     Kind = "gallery"
	KindJobOpening  Kind = "job-opening"
)

var Kinds = []Kind{
	KindBlog,
	KindPage,
	KindTestimonial,
	KindPartner,
	KindFeature,
	KindStat,
	KindGallery,
	KindJobOpening,
}

type kindInfo struct {
	dir        string
	collection string
}

var kindTable = map[Kind]kindInfo{
	KindBlog:        {dir: "blog", collection: "blog"},
	KindPage:        {dir: "pages", collection: "page"},
	KindTestimonial: {dir: "testimonials", collection: "testimonial"},
	KindPartner:     {dir: "partners", collection: "partner"},
	KindFeature:     {dir: "features", collection: "feature"},
	KindStat:        {dir: "stats", collection: "stat"},
	KindGallery:     {dir: "gallery", collection: "gallery"},
	KindJobOpening:  {dir: "job-openings", collection: "jobOpening"},
}

// Dir is the kind's subdirectory under the local content root.
func (k Kind) Dir() string { return kindTable[k].dir }

// Collection is the kind's collection name on the CMS.
func (k Kind) Collection() string { return kindTable[k].collection }

func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// ParseKind accepts the kind name, its directory name or its CMS collection
// name ("page", "pages"; "job-opening", "job-openings", "jobOpening").
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for k, info := range kindTable {
		if s == string(k) || s == info.dir || s == info.collection {
			return k, true
		}
	}
	return "", false
}

// Body holds exactly one of a markdown string or a rich-text tree.
type Body struct {
	Markdown string
	Tree     *richtext.Document
}

func MarkdownBody(s string) *Body { return &Body{Markdown: s} }

func TreeBody(d *richtext.Document) *Body { return &Body{Tree: d} }

func (b *Body) IsTree() bool { return b != nil && b.Tree != nil }

func (b *Body) IsMarkdown() bool { return b != nil && b.Tree == nil }

// Document returns the body as a tree, normalizing markdown on the way.
func (b *Body) Document() *richtext.Document {
	if b == nil {
		return richtext.Empty()
	}
	if b.Tree != nil {
		return b.Tree
	}
	return richtext.FromMarkdown(b.Markdown)
}

// MarshalJSON keeps the original wire discrimination: a markdown body is a
// JSON string, a tree body is a JSON object.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Tree != nil {
		return json.Marshal(b.Tree)
	}
	return json.Marshal(b.Markdown)
}

func (b *Body) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	body, err := bodyFromValue(v)
	if err != nil {
		return err
	}
	if body == nil {
		*b = Body{}
		return nil
	}
	*b = *body
	return nil
}

func bodyFromValue(v any) (*Body, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return MarkdownBody(t), nil
	case map[string]any:
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		var doc richtext.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		return TreeBody(&doc), nil
	default:
		return nil, fmt.Errorf("body must be a string or a rich-text object, got %T", v)
	}
}

type Record struct {
	Kind     Kind           `json:"kind"`
	SourceID string         `json:"sourceId"`
	Fields   map[string]any `json:"fields"`
	Body     *Body          `json:"body,omitempty"`
}

// NewRecord builds a record from a decoded metadata map. A "body" key is
// lifted out of the fields: a string becomes a markdown body, an object a
// rich-text tree. Field values are normalized so records built from YAML, a
// JSON file or a CMS response compare equal.
func NewRecord(kind Kind, sourceID string, fields map[string]any) (Record, error) {
	fields = NormalizeFields(fields)
	rec := Record{Kind: kind, SourceID: sourceID, Fields: fields}
	if v, ok := fields["body"]; ok {
		body, err := bodyFromValue(v)
		if err != nil {
			return Record{}, err
		}
		delete(fields, "body")
		rec.Body = body
	}
	return rec, nil
}

// Clone copies the record's field map so callers can modify it freely.
func (r Record) Clone() Record {
	out := r
	out.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

func (r Record) String(key string) string {
	switch v := r.Fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func (r Record) Bool(key string) bool {
	v, ok := r.Fields[key].(bool)
	return ok && v
}

func (r Record) Number(key string) (float64, bool) {
	v, ok := r.Fields[key].(float64)
	return v, ok
}

func (r Record) Strings(key string) []string {
	items, ok := r.Fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Date parses the field with the layouts authors and the CMS use; zero when
// missing or unparseable.
func (r Record) Date(key string) time.Time {
	return ParseTime(r.String(key))
}

func (r Record) Title() string    { return r.String("title") }
func (r Record) Category() string { return r.String("category") }

// Slug is the record's stable external identifier, its source filename
// without extension.
func (r Record) Slug() string { return r.SourceID }

func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.DateOnly,
		"2006-01-02 15:04",
		time.DateTime,
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

// NormalizeFields maps decoder-specific scalar types onto the JSON ones:
// integers become float64, timestamps become RFC 3339 strings (date-only
// when there is no time part), and nested maps/lists are normalized too.
func NormalizeFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[strings.TrimSpace(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		t = t.UTC()
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	case map[string]any:
		return NormalizeFields(t)
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = normalizeValue(it)
		}
		return out
	default:
		return v
	}
}

// SortBySourceID orders records deterministically; directory and CMS order
// are not part of any contract.
func SortBySourceID(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].SourceID < recs[j].SourceID
	})
}
