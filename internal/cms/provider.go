package cms

import (
	"sitecms/internal/metrics"
	"sitecms/internal/platform/logger"
	"sync"
)

// Provider creates the Client on first use. Local-mode processes never call
// Client, so they never build one. The result of the first attempt, success
// or failure, is returned to every later caller.
type Provider struct {
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Metrics

	once   sync.Once
	client *Client
	err    error
}

func NewProvider(cfg Config, log *logger.Logger, m *metrics.Metrics) *Provider {
	return &Provider{cfg: cfg, log: log, metrics: m}
}

func (p *Provider) Client() (*Client, error) {
	p.once.Do(func() {
		p.client, p.err = New(p.cfg, p.log, p.metrics)
		if p.err == nil && p.log != nil {
			p.log.Info("cms client ready", "url", p.cfg.URL)
		}
	})
	return p.client, p.err
}
