package mail

import (
	"context"
	"fmt"
	"github.com/resendlabs/resend-go"
	"net/url"
	"sitecms/internal/domain/config"
	"strings"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/platform/logger"
)

type Resend struct {
	client *resend.Client
	from   string
	log    *logger.Logger
}

func NewResend(cfg config.MailConfig, log *logger.Logger) (*Resend, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("resend mail: %w", domainerr.ErrNotConfigured)
	}
	if log == nil {
		log = logger.NewNop()
	}
	from := cfg.From
	if from == "" {
		from = cfg.Sender
	}
	if from == "" {
		return nil, fmt.Errorf("resend mail: from address: %w", domainerr.ErrNotConfigured)
	}
	client := resend.NewClient(cfg.ResendAPIKey)
	if cfg.ResendURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.ResendURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("resend mail: base url: %w", domainerr.ErrInvalid)
		}
		client.BaseURL = base
	}
	return &Resend{client: client, from: from, log: log}, nil
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, resend.Attachment{
			Content:  string(a.Data),
			Filename: a.Name,
		})
	}
	if _, err := r.client.Emails.Send(params); err != nil {
		return &domainerr.UpstreamServiceError{Service: "resend", Err: err}
	}
	r.log.Debug("mail sent", "transport", "resend", "subject", msg.Subject, "to", msg.To)
	return nil
}
