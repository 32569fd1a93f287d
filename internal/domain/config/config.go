package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"net/mail"
	"net/url"
	"os"
	domainerr "sitecms/internal/domain/errors"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	CMS     CMSConfig     `yaml:"cms"`
	Mail    MailConfig    `yaml:"mail"`
	Serve   ServeConfig   `yaml:"serve"`
	Log     LogConfig     `yaml:"log"`
}

type SiteConfig struct {
	Title   string        `yaml:"title"`
	SiteURL string        `yaml:"site_url"`
	Company CompanyConfig `yaml:"company"`
}

// CompanyConfig feeds the footer of outgoing mail.
type CompanyConfig struct {
	Name    string   `yaml:"name"`
	Address []string `yaml:"address"`
	Phone   string   `yaml:"phone"`
}

type ContentConfig struct {
	Root  string `yaml:"root"`
	Local bool   `yaml:"local"`
}

type CMSConfig struct {
	URL      string        `yaml:"url"`
	ClientID string        `yaml:"client_id"`
	Branch   string        `yaml:"branch"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Endpoint is the GraphQL URL: the explicit url if set, otherwise the hosted
// content API for client id and branch. Empty when neither is known.
func (c CMSConfig) Endpoint() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return u
	}
	if c.ClientID == "" {
		return ""
	}
	branch := c.Branch
	if branch == "" {
		branch = "main"
	}
	return fmt.Sprintf("https://content.tinajs.io/1.5/content/%s/github/%s", url.PathEscape(c.ClientID), url.PathEscape(branch))
}

type MailTransport string

const (
	TransportAuto   MailTransport = ""
	TransportGraph  MailTransport = "graph"
	TransportResend MailTransport = "resend"
	TransportNone   MailTransport = "none"
)

type MailConfig struct {
	Transport MailTransport `yaml:"transport"`

	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// Sender is the mailbox Graph sends as.
	Sender   string `yaml:"sender"`
	TokenURL string `yaml:"token_url"`
	GraphURL string `yaml:"graph_url"`

	ResendAPIKey string `yaml:"resend_api_key"`
	ResendURL    string `yaml:"resend_url"`
	From         string `yaml:"from"`

	ContactTo string `yaml:"contact_to"`
	CareersTo string `yaml:"careers_to"`
}

// GraphReady reports whether every Graph credential is present.
func (m MailConfig) GraphReady() bool {
	return m.TenantID != "" && m.ClientID != "" && m.ClientSecret != "" && m.Sender != ""
}

// Resolved picks the transport to use when none was set explicitly.
func (m MailConfig) Resolved() MailTransport {
	if m.Transport != TransportAuto {
		return m.Transport
	}
	switch {
	case m.GraphReady():
		return TransportGraph
	case m.ResendAPIKey != "":
		return TransportResend
	default:
		return TransportNone
	}
}

type ServeConfig struct {
	Addr       string `yaml:"addr"`
	LiveReload bool   `yaml:"live_reload"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

const defaultMailbox = "infoindia@lancetindia.com"

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:   "Lancet India",
			SiteURL: "https://www.lancetindia.com",
			Company: CompanyConfig{
				Name:    "Lancet India",
				Address: []string{"DM-12, Basanti Nagar", "Rourkela, Odisha, 769012"},
				Phone:   "+91 (080) 4545 1902",
			},
		},
		Content: ContentConfig{
			Root:  "content",
			Local: false,
		},
		CMS: CMSConfig{
			Branch:  "main",
			Timeout: 10 * time.Second,
		},
		Mail: MailConfig{
			ContactTo: defaultMailbox,
			CareersTo: defaultMailbox,
		},
		Serve: ServeConfig{
			Addr:       ":8080",
			LiveReload: true,
		},
		Log: LogConfig{Mode: "dev"},
	}
}

// ApplyEnv overlays the deployment environment onto c. Unset variables leave
// the current value alone.
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	for _, k := range []string{"SITE_CONTENT_LOCAL", "TINA_PUBLIC_IS_LOCAL"} {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			b, err := strconv.ParseBool(v)
			c.Content.Local = err == nil && b
			break
		}
	}
	str(&c.Content.Root, "SITE_CONTENT_ROOT")

	str(&c.CMS.URL, "CMS_URL")
	str(&c.CMS.Token, "TINA_TOKEN")
	str(&c.CMS.ClientID, "NEXT_PUBLIC_TINA_CLIENT_ID")
	str(&c.CMS.Branch, "TINA_BRANCH", "NEXT_PUBLIC_TINA_BRANCH")

	str(&c.Mail.TenantID, "AZURE_TENANT_ID")
	str(&c.Mail.ClientID, "AZURE_CLIENT_ID")
	str(&c.Mail.ClientSecret, "AZURE_CLIENT_SECRET")
	str(&c.Mail.Sender, "SMTP_USER")
	str(&c.Mail.ResendAPIKey, "RESEND_API_KEY")
	str(&c.Mail.From, "MAIL_FROM")
	str(&c.Mail.ContactTo, "CONTACT_EMAIL")
	// careers mail falls back to the contact mailbox
	str(&c.Mail.CareersTo, "CAREERS_EMAIL", "CONTACT_EMAIL")

	str(&c.Serve.Addr, "SITE_ADDR")
	str(&c.Log.Mode, "LOG_MODE")
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	if c.Content.Local && strings.TrimSpace(c.Content.Root) == "" {
		ve.Add("content.root", "must not be empty in local mode")
	}

	if ep := c.CMS.Endpoint(); ep != "" && !isValidAbsURL(ep) {
		ve.Add("cms.url", "must be a valid absolute URL")
	}
	if c.CMS.Timeout < 0 {
		ve.Add("cms.timeout", "must not be negative")
	}

	switch c.Mail.Transport {
	case TransportAuto, TransportNone:
	case TransportGraph:
		if !c.Mail.GraphReady() {
			ve.Add("mail.transport", "graph needs tenant_id, client_id, client_secret and sender")
		}
	case TransportResend:
		if c.Mail.ResendAPIKey == "" {
			ve.Add("mail.resend_api_key", "must be set for the resend transport")
		}
	default:
		ve.Add("mail.transport", "must be 'graph', 'resend' or 'none'")
	}
	if _, err := mail.ParseAddress(c.Mail.ContactTo); err != nil {
		ve.Add("mail.contact_to", "must be a valid email address")
	}
	if _, err := mail.ParseAddress(c.Mail.CareersTo); err != nil {
		ve.Add("mail.careers_to", "must be a valid email address")
	}

	if strings.TrimSpace(c.Serve.Addr) == "" {
		ve.Add("serve.addr", "must not be empty")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Load reads path onto Default, applies the environment and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// 直接 Unmarshal 到 cfg 上：文件中写到的字段覆盖默认值，其他字段保留 Default
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file means defaults plus
// environment.
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !os.IsNotExist(err) {
			return Default(), err
		}
	}
	cfg := Default()
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
