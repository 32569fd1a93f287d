// Package mail relays form notifications through a transactional mail
// provider: Microsoft Graph (OAuth2 client credentials) or Resend.
package mail

import (
	"context"
	"fmt"
	"sitecms/internal/domain/config"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/platform/logger"
)

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer sends one message. Failures are *UpstreamServiceError.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// FromConfig builds the configured transport. With no usable transport it
// returns ErrNotConfigured and the form endpoints answer 503.
func FromConfig(cfg config.MailConfig, log *logger.Logger) (Mailer, error) {
	switch t := cfg.Resolved(); t {
	case config.TransportGraph:
		g, err := NewGraph(cfg, log)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.TransportResend:
		r, err := NewResend(cfg, log)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.TransportNone:
		return nil, fmt.Errorf("mail: %w", domainerr.ErrNotConfigured)
	default:
		return nil, fmt.Errorf("mail transport %q: %w", t, domainerr.ErrInvalid)
	}
}
