package serve

import (
	"encoding/json"
	"net/http"
	"sitecms/internal/catalog"
	"sitecms/internal/domain/content"
	"sitecms/internal/render"
	"sitecms/internal/site"
	"strings"
)

// recordView is a record as the API returns it, with the body rendered.
type recordView struct {
	Kind     content.Kind     `json:"kind"`
	ID       string           `json:"id"`
	Fields   map[string]any   `json:"fields"`
	Body     *content.Body    `json:"body,omitempty"`
	HTML     string           `json:"html,omitempty"`
	Headings []render.Heading `json:"headings,omitempty"`
}

func (s *Server) view(r content.Record) recordView {
	v := recordView{Kind: r.Kind, ID: r.SourceID, Fields: r.Fields, Body: r.Body}
	if r.Body != nil {
		res, err := s.body.Render(r.Body)
		if err != nil {
			s.log.Warn("render body failed", "kind", r.Kind, "id", r.SourceID, "err", err)
		} else {
			v.HTML = string(res.HTML)
			v.Headings = res.Headings
		}
	}
	return v
}

func (s *Server) views(recs []content.Record) []recordView {
	out := make([]recordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, s.view(r))
	}
	return out
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := content.ParseKind(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown content kind")
		return
	}
	recs := s.cat.ByKind(r.Context(), kind)
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		recs = catalog.FilterByCategory(recs, category)
	}
	if kind == content.KindJobOpening && r.URL.Query().Get("active") == "true" {
		recs = catalog.ActiveOnly(recs)
	}
	writeJSON(w, http.StatusOK, s.views(recs))
}

func (s *Server) handleOne(w http.ResponseWriter, r *http.Request) {
	kind, ok := content.ParseKind(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown content kind")
		return
	}
	rec := s.cat.One(r.Context(), kind, r.PathValue("id"))
	if rec == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view(*rec))
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.views(s.cat.Services(r.Context())))
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.views(s.cat.RelatedPages(r.Context(), r.PathValue("slug"))))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	routes := s.routes.Build(s.cat.BlogPosts(r.Context()), s.cat.Pages(r.Context()))
	out, err := site.Sitemap(s.site.SiteURL, routes)
	if err != nil {
		s.log.Error("sitemap failed", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(site.Robots(s.site.SiteURL))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": string(s.cat.Mode())})
}

// ===================== 工具 =====================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
