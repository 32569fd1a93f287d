package ingest

import (
	"os"
	"path/filepath"
	"strings"
)

type SourceFile struct {
	Path string
	ID   string
}

// DiscoverSource lists the files directly under dir whose extension is one
// of exts, in directory order. Subdirectories are not descended into.
func DiscoverSource(dir string, exts ...string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []SourceFile
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !hasExt(e.Name(), exts) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		out = append(out, SourceFile{Path: path, ID: SourceID(path)})
	}
	return out, nil
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
