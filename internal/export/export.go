// Package export writes records from any source into the local content
// layout, so a local-mode deployment can be seeded from the CMS.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"sitecms/internal/domain/content"
	"sitecms/internal/platform/logger"
	"sitecms/internal/richtext"
	"sitecms/internal/source"
)

type Exporter struct {
	Src    source.Source
	OutDir string
	// Kinds defaults to every kind.
	Kinds []content.Kind
	Log   *logger.Logger
}

type Result struct {
	Written   int
	Unchanged int
	Skipped   []string
	// Failed lists kinds whose listing failed; nothing was written for them.
	Failed []content.Kind
}

func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	log := e.Log
	if log == nil {
		log = logger.NewNop()
	}
	if e.OutDir == "" {
		return nil, fmt.Errorf("export: output directory is required")
	}
	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", e.OutDir, err)
	}

	kinds := e.Kinds
	if len(kinds) == 0 {
		kinds = content.Kinds
	}

	res := &Result{}
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		recs, err := e.Src.List(ctx, kind)
		if err != nil {
			log.Warn("export list failed", "kind", kind, "err", err)
			res.Failed = append(res.Failed, kind)
			continue
		}
		for _, r := range recs {
			if !source.ValidID(r.SourceID) {
				log.Warn("export skipped record", "kind", kind, "id", r.SourceID)
				res.Skipped = append(res.Skipped, string(kind)+"/"+r.SourceID)
				continue
			}
			name, data, err := Encode(r)
			if err != nil {
				return res, fmt.Errorf("encode %s/%s: %w", kind, r.SourceID, err)
			}
			rel := filepath.Join(kind.Dir(), name)
			written, err := writeIfChanged(e.OutDir, rel, data)
			if err != nil {
				return res, fmt.Errorf("write %s: %w", rel, err)
			}
			if written {
				res.Written++
			} else {
				res.Unchanged++
			}
		}
		log.Info("exported kind", "kind", kind, "records", len(recs))
	}
	return res, nil
}

// Encode renders a record in the on-disk format its kind is read from:
// pages as .mdx with a YAML header, everything else as .json.
func Encode(r content.Record) (string, []byte, error) {
	if r.Kind == content.KindPage {
		data, err := encodeMDX(r)
		return r.SourceID + ".mdx", data, err
	}
	data, err := encodeJSON(r)
	return r.SourceID + ".json", data, err
}

func encodeMDX(r content.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(r.Fields) > 0 {
		head, err := yaml.Marshal(r.Fields)
		if err != nil {
			return nil, err
		}
		buf.Write(head)
	}
	buf.WriteString("---\n")

	var body string
	switch {
	case r.Body.IsTree():
		body = richtext.Serialize(r.Body.Tree)
	case r.Body != nil:
		body = r.Body.Markdown
	}
	if body != "" {
		buf.WriteString(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func encodeJSON(r content.Record) ([]byte, error) {
	doc := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		doc[k] = v
	}
	if r.Body != nil {
		doc["body"] = r.Body
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
