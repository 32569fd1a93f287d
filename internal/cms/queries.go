package cms

import (
	"fmt"
	"strings"
)

// Fields selected per collection. Rich-text fields (body, description) are
// JSON scalars on the CMS side and need no sub-selection.
var collectionFields = map[string][]string{
	"blog":        {"title", "excerpt", "author", "date", "category", "image", "readTime", "body"},
	"testimonial": {"name", "position", "company", "content", "review", "rating"},
	"partner":     {"name", "logo"},
	"feature":     {"title", "description", "icon"},
	"stat":        {"value", "label"},
	"page":        {"category", "title", "subtitle", "image", "showInServiceSection", "serviceDescription", "body"},
	"gallery":     {"image"},
	"jobOpening":  {"isActive", "title", "location", "type", "description", "requirements"},
}

func selection(collection string) (string, error) {
	fields, ok := collectionFields[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return "_sys { filename relativePath } " + strings.Join(fields, " "), nil
}

func connectionQuery(collection string) (string, error) {
	sel, err := selection(collection)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`query($first: Float, $after: String) {
  %sConnection(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges { node { %s } }
  }
}`, collection, sel), nil
}

func documentQuery(collection string) (string, error) {
	sel, err := selection(collection)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`query($relativePath: String!) {
  %s(relativePath: $relativePath) { %s }
}`, collection, sel), nil
}
