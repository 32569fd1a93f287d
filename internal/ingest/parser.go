package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"path/filepath"
	"sitecms/internal/domain/content"
	domainerr "sitecms/internal/domain/errors"
	"strings"
)

var errInvalidFrontMatter = errors.New("invalid front matter")
var errUnsupportedFormat = errors.New("unsupported file format")

// ParseFrontMatter splits a `---` delimited YAML header from the body. Text
// without a header is all body with empty metadata.
func ParseFrontMatter(raw []byte) (map[string]any, string, error) {
	// 统一换行符
	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))
	norm = bytes.TrimPrefix(norm, []byte("\ufeff"))

	const (
		sep     = "---"
		sepLine = sep + "\n"
	)

	trimmed := bytes.TrimLeft(norm, " \t\n")
	if !bytes.HasPrefix(trimmed, []byte(sepLine)) {
		return map[string]any{}, string(bytes.TrimSpace(norm)), nil
	}

	// 去掉首行 "---\n"
	rest := trimmed[len(sepLine):]

	var yamlPart, bodyPart []byte
	switch {
	case bytes.HasPrefix(rest, []byte(sepLine)):
		// "---\n---\n" 空 front matter
		bodyPart = rest[len(sepLine):]
	case bytes.Equal(bytes.TrimSpace(rest), []byte(sep)):
		// "---\n---" 空 front matter，无正文
	default:
		if parts := bytes.SplitN(rest, []byte("\n"+sepLine), 2); len(parts) == 2 {
			yamlPart = parts[0]
			bodyPart = parts[1]
		} else if bytes.HasSuffix(bytes.TrimRight(rest, "\n"), []byte("\n"+sep)) {
			r := bytes.TrimRight(rest, "\n")
			yamlPart = r[:len(r)-len("\n"+sep)]
		} else {
			return nil, "", errInvalidFrontMatter
		}
	}

	meta := map[string]any{}
	if len(bytes.TrimSpace(yamlPart)) > 0 {
		if err := yaml.Unmarshal(yamlPart, &meta); err != nil {
			return nil, "", fmt.Errorf("%w: %v", errInvalidFrontMatter, err)
		}
		if meta == nil {
			meta = map[string]any{}
		}
	}
	return meta, string(bytes.TrimSpace(bodyPart)), nil
}

// ParseJSON decodes a structured record. The whole document is the metadata.
func ParseJSON(raw []byte) (map[string]any, error) {
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, errors.New("json record must be an object")
	}
	return meta, nil
}

// DecodeFile turns one file's bytes into a record, dispatching on the
// extension. Every failure comes back as a *ParseError naming the path.
func DecodeFile(kind content.Kind, path string, raw []byte) (content.Record, error) {
	ext := strings.ToLower(filepath.Ext(path))
	id := SourceID(path)

	switch ext {
	case ".json":
		meta, err := ParseJSON(raw)
		if err != nil {
			return content.Record{}, &domainerr.ParseError{Path: path, Err: err}
		}
		rec, err := content.NewRecord(kind, id, meta)
		if err != nil {
			return content.Record{}, &domainerr.ParseError{Path: path, Err: err}
		}
		return rec, nil
	case ".md", ".mdx", ".markdown":
		meta, body, err := ParseFrontMatter(raw)
		if err != nil {
			return content.Record{}, &domainerr.ParseError{Path: path, Err: err}
		}
		delete(meta, "body")
		rec, err := content.NewRecord(kind, id, meta)
		if err != nil {
			return content.Record{}, &domainerr.ParseError{Path: path, Err: err}
		}
		rec.Body = content.MarkdownBody(body)
		return rec, nil
	default:
		return content.Record{}, &domainerr.ParseError{Path: path, Err: errUnsupportedFormat}
	}
}

// SourceID is the filename without its extension, case preserved.
func SourceID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
