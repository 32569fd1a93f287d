package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecms/internal/catalog"
	"sitecms/internal/domain/config"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/forms"
	"sitecms/internal/mail"
	"sitecms/internal/metrics"
)

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func writeContent(t *testing.T, root, kindDir, name, body string) {
	t.Helper()
	dir := filepath.Join(root, kindDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

// newTestServer serves a small local content tree. A nil mailer leaves the
// form endpoints unconfigured.
func newTestServer(t *testing.T, mailer mail.Mailer) http.Handler {
	t.Helper()
	root := t.TempDir()
	writeContent(t, root, "pages", "strategy.mdx",
		"---\ntitle: Strategy\ncategory: business-intelligent\nshowInServiceSection: true\n---\n## Overview\nWe help.")
	writeContent(t, root, "pages", "powerbi.mdx",
		"---\ntitle: Power BI\ncategory: business-intelligent\n---\nDashboards.")
	writeContent(t, root, "pages", "databricks.mdx",
		"---\ntitle: Databricks\ncategory: data-services\n---\nLakehouse.")
	writeContent(t, root, "blog", "launch.json",
		`{"title":"Launch","date":"2024-04-02","category":"news","body":"Hello **world**"}`)
	writeContent(t, root, "job-openings", "analyst.json", `{"title":"Analyst","isActive":true}`)
	writeContent(t, root, "job-openings", "closed.json", `{"title":"Closed","isActive":false}`)

	cfg := config.Default()
	cfg.Content.Local = true
	cfg.Content.Root = root
	cfg.Serve.LiveReload = false
	cfg.Site.SiteURL = "https://www.lancetindia.com"

	m := metrics.New()
	cat := catalog.FromConfig(cfg, nil, m)
	submissions := forms.NewService(mailer, forms.Recipients{}, cfg.Site.Company, nil, m)
	return New(cfg, cat, submissions, nil, m).Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestContentList(t *testing.T) {
	h := newTestServer(t, nil)

	rec := get(t, h, "/api/content/pages?category=business-intelligent")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	pages := decode[[]recordView](t, rec)
	require.Len(t, pages, 2)
	for _, p := range pages {
		assert.Equal(t, "business-intelligent", p.Fields["category"])
	}

	rec = get(t, h, "/api/content/job-openings?active=true")
	openings := decode[[]recordView](t, rec)
	require.Len(t, openings, 1)
	assert.Equal(t, "analyst", openings[0].ID)

	rec = get(t, h, "/api/content/testimonials")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = get(t, h, "/api/content/widgets")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentOne(t *testing.T) {
	h := newTestServer(t, nil)

	rec := get(t, h, "/api/content/page/strategy")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[recordView](t, rec)
	assert.Equal(t, "Strategy", page.Fields["title"])
	assert.Contains(t, page.HTML, `<h2 id="overview">Overview</h2>`)
	require.Len(t, page.Headings, 1)
	assert.Equal(t, "overview", page.Headings[0].ID)

	rec = get(t, h, "/api/content/blog/launch")
	require.Equal(t, http.StatusOK, rec.Code)
	post := decode[map[string]any](t, rec)
	assert.Equal(t, "Hello **world**", post["body"])
	assert.Contains(t, post["html"], "<strong>world</strong>")

	rec = get(t, h, "/api/content/page/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServicesAndRelated(t *testing.T) {
	h := newTestServer(t, nil)

	services := decode[[]recordView](t, get(t, h, "/api/services"))
	require.Len(t, services, 1)
	assert.Equal(t, "strategy", services[0].ID)

	related := decode[[]recordView](t, get(t, h, "/api/pages/strategy/related"))
	require.Len(t, related, 1)
	assert.Equal(t, "powerbi", related[0].ID)
}

func TestSitemapAndRobots(t *testing.T) {
	h := newTestServer(t, nil)

	rec := get(t, h, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://www.lancetindia.com/blog/launch</loc>")
	assert.Contains(t, body, "<loc>https://www.lancetindia.com/consulting/business-intelligent/strategy</loc>")
	assert.Contains(t, body, "<loc>https://www.lancetindia.com/consulting/data-services/databricks</loc>")

	rec = get(t, h, "/robots.txt")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://www.lancetindia.com/sitemap.xml")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, nil)

	health := decode[map[string]string](t, get(t, h, "/healthz"))
	assert.Equal(t, "local", health["mode"])

	_ = get(t, h, "/api/services")
	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sitecms_content_accessor_calls_total{kind="page",mode="local"}`)

	rec = get(t, h, "/dev/events")
	assert.Equal(t, http.StatusNotFound, rec.Code, "live reload is off")
}

func TestRequestIDPassthrough(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestContactForm(t *testing.T) {
	tests := []struct {
		name    string
		mailer  mail.Mailer
		body    string
		status  int
		message string
		errMsg  string
	}{
		{
			name:    "ok",
			mailer:  &fakeMailer{},
			body:    `{"name":"Asha","email":"asha@example.com","message":"Hi"}`,
			status:  http.StatusOK,
			message: "Your message has been sent successfully!",
		},
		{
			name:   "missing fields",
			mailer: &fakeMailer{},
			body:   `{"name":"Asha"}`,
			status: http.StatusBadRequest,
			errMsg: "Missing required fields",
		},
		{
			name:   "bad email",
			mailer: &fakeMailer{},
			body:   `{"name":"Asha","email":"asha","message":"Hi"}`,
			status: http.StatusBadRequest,
			errMsg: "Invalid email format",
		},
		{
			name:   "not configured",
			body:   `{"name":"Asha","email":"asha@example.com","message":"Hi"}`,
			status: http.StatusServiceUnavailable,
			errMsg: "Email service not configured. Please contact us directly.",
		},
		{
			name:   "send failed",
			mailer: &fakeMailer{err: &domainerr.UpstreamServiceError{Service: "graph", Status: 500, Err: errors.New("boom")}},
			body:   `{"name":"Asha","email":"asha@example.com","message":"Hi"}`,
			status: http.StatusInternalServerError,
			errMsg: "Failed to send email. Please try again or contact us directly.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.mailer)
			rec := postJSON(t, h, "/api/contact", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			out := decode[map[string]any](t, rec)
			if tt.message != "" {
				assert.Equal(t, true, out["success"])
				assert.Equal(t, tt.message, out["message"])
				assert.Equal(t, "asha@example.com", out["userEmail"])
			} else {
				assert.Equal(t, tt.errMsg, out["error"])
				assert.NotContains(t, rec.Body.String(), "boom")
			}
		})
	}
}

func careersRequest(t *testing.T, fields map[string]string, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if data != nil {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="resume"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/careers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCareersForm(t *testing.T) {
	fields := map[string]string{
		"name":     "Ravi",
		"email":    "ravi@example.com",
		"phone":    "+91 99",
		"position": "Data Engineer",
	}
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	t.Run("ok", func(t *testing.T) {
		m := &fakeMailer{}
		h := newTestServer(t, m)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, careersRequest(t, fields, "cv.pdf", "application/pdf", pdf))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := decode[map[string]any](t, rec)
		assert.Equal(t, "Your application has been submitted successfully! We'll be in touch soon.", out["message"])

		require.Len(t, m.sent, 2)
		require.Len(t, m.sent[0].Attachments, 1)
		assert.Equal(t, "cv.pdf", m.sent[0].Attachments[0].Name)
		assert.Equal(t, pdf, m.sent[0].Attachments[0].Data)
	})

	t.Run("no resume", func(t *testing.T) {
		h := newTestServer(t, &fakeMailer{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, careersRequest(t, fields, "", "", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Resume is required", decode[map[string]any](t, rec)["error"])
	})

	t.Run("wrong type", func(t *testing.T) {
		h := newTestServer(t, &fakeMailer{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, careersRequest(t, fields, "cv.png", "image/png", []byte("\x89PNG\r\n\x1a\n")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Resume must be a PDF, DOC, or DOCX file", decode[map[string]any](t, rec)["error"])
	})

	t.Run("not configured", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, careersRequest(t, fields, "cv.pdf", "application/pdf", pdf))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Application service not configured. Please contact us directly.", decode[map[string]any](t, rec)["error"])
	})
}

func watchingServer(t *testing.T, root string) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Content.Local = true
	cfg.Content.Root = root
	cfg.Serve.LiveReload = true
	cat := catalog.FromConfig(cfg, nil, nil)
	return New(cfg, cat, forms.NewService(nil, forms.Recipients{}, cfg.Site.Company, nil, nil), nil, nil)
}

func TestStartWatch(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		s := watchingServer(t, filepath.Join(t.TempDir(), "absent"))
		err := s.startWatch(context.Background())
		require.Error(t, err)
		assert.Nil(t, s.watcher, "a failed walk leaves no open watcher")
		assert.NoError(t, s.Close())
	})

	t.Run("watches content tree", func(t *testing.T) {
		root := t.TempDir()
		writeContent(t, root, "pages", "home.mdx", "---\ntitle: Home\n---\nHi")
		s := watchingServer(t, root)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, s.startWatch(ctx))
		require.NotNil(t, s.watcher)
		assert.Contains(t, s.watcher.WatchList(), filepath.Join(root, "pages"))
		assert.NoError(t, s.Close())
	})
}
