package content

import "strings"

// Fields the CMS marks required per collection. Records missing one are
// still served; `check` reports them.
var requiredFields = map[Kind][]string{
	KindBlog:        {"title"},
	KindPage:        {"category", "title", "image"},
	KindTestimonial: {"company", "content"},
	KindPartner:     {"name"},
	KindFeature:     {"title"},
	KindStat:        {"value", "label"},
	KindGallery:     {"image"},
	KindJobOpening:  {"isActive", "title", "location", "type", "description", "requirements"},
}

// Page categories known to routing.
const (
	CategoryServices            = "services"
	CategoryBusinessIntelligent = "business-intelligent"
	CategoryDataIntegration     = "data-integration"
	CategoryDataServices        = "data-services"
	Category247Service          = "247-service"
	CategoryEngagementModes     = "engagement-modes"
	CategoryStandalone          = "standalone"
)

var Categories = []string{
	CategoryServices,
	CategoryBusinessIntelligent,
	CategoryDataIntegration,
	CategoryDataServices,
	Category247Service,
	CategoryEngagementModes,
	CategoryStandalone,
}

var employmentTypes = []string{"Full-time", "Part-time", "Contract", "Internship"}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Problems lists schema issues for a record: missing required fields and
// values outside the CMS option lists.
func (r Record) Problems() []string {
	var out []string
	for _, f := range requiredFields[r.Kind] {
		v, ok := r.Fields[f]
		if !ok || v == nil {
			out = append(out, "missing required field: "+f)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			out = append(out, "missing required field: "+f)
		}
	}

	switch r.Kind {
	case KindPage:
		if c := r.Category(); c != "" && !ValidCategory(c) {
			out = append(out, "unknown category: "+c)
		}
		if r.Bool("showInServiceSection") && r.String("serviceDescription") == "" {
			out = append(out, "serviceDescription is required when showInServiceSection is set")
		}
	case KindJobOpening:
		if t := r.String("type"); t != "" && !contains(employmentTypes, t) {
			out = append(out, "unknown employment type: "+t)
		}
	}
	return out
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
