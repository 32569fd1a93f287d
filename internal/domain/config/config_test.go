package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerr "sitecms/internal/domain/errors"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Content.Local)
	assert.Equal(t, TransportNone, cfg.Mail.Resolved())
	assert.Equal(t, "", cfg.CMS.Endpoint())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{
		"TINA_PUBLIC_IS_LOCAL":       "true",
		"NEXT_PUBLIC_TINA_CLIENT_ID": "abc",
		"TINA_BRANCH":                "staging",
		"TINA_TOKEN":                 "tok",
		"AZURE_TENANT_ID":            "tenant",
		"AZURE_CLIENT_ID":            "client",
		"AZURE_CLIENT_SECRET":        "secret",
		"SMTP_USER":                  "noreply@example.com",
		"CONTACT_EMAIL":              "hello@example.com",
	}))

	assert.True(t, cfg.Content.Local)
	assert.Equal(t, "https://content.tinajs.io/1.5/content/abc/github/staging", cfg.CMS.Endpoint())
	assert.Equal(t, "tok", cfg.CMS.Token)
	assert.Equal(t, TransportGraph, cfg.Mail.Resolved())
	assert.Equal(t, "hello@example.com", cfg.Mail.ContactTo)
	assert.Equal(t, "hello@example.com", cfg.Mail.CareersTo)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvModeFlag(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want bool
	}{
		{map[string]string{}, false},
		{map[string]string{"SITE_CONTENT_LOCAL": "true"}, true},
		{map[string]string{"SITE_CONTENT_LOCAL": "1"}, true},
		{map[string]string{"SITE_CONTENT_LOCAL": "false", "TINA_PUBLIC_IS_LOCAL": "true"}, false},
		{map[string]string{"TINA_PUBLIC_IS_LOCAL": "yes"}, false},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.ApplyEnv(envMap(tt.env))
		assert.Equal(t, tt.want, cfg.Content.Local, tt.env)
	}
}

func TestExplicitCMSURLWins(t *testing.T) {
	c := CMSConfig{URL: "http://localhost:4001/graphql", ClientID: "abc"}
	assert.Equal(t, "http://localhost:4001/graphql", c.Endpoint())
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	cfg := Default()
	cfg.Site.SiteURL = "not a url"
	cfg.Mail.Transport = TransportResend
	cfg.Mail.ContactTo = "nobody"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrInvalid))

	var ve domainerr.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve.Items))
	for _, it := range ve.Items {
		fields = append(fields, it.Field)
	}
	assert.Equal(t, []string{"site.site_url", "mail.resend_api_key", "mail.contact_to"}, fields)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
content:
  root: ./data
  local: true
cms:
  timeout: 3s
serve:
  addr: ":9000"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.Content.Root)
	assert.Equal(t, 3*time.Second, cfg.CMS.Timeout)
	assert.Equal(t, ":9000", cfg.Serve.Addr)
	assert.Equal(t, "Lancet India", cfg.Site.Title)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Site, cfg.Site)
}
