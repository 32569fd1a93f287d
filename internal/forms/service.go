package forms

import (
	"context"
	"errors"
	"fmt"
	"sitecms/internal/domain/config"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/mail"
	"sitecms/internal/metrics"
	"sitecms/internal/platform/logger"
)

const fallbackMailbox = "infoindia@lancetindia.com"

// Recipients are the operator mailboxes. Careers falls back to Contact.
type Recipients struct {
	Contact string
	Careers string
}

func RecipientsFromConfig(cfg config.MailConfig) Recipients {
	return Recipients{Contact: cfg.ContactTo, Careers: cfg.CareersTo}
}

func (r Recipients) contact() string {
	if r.Contact != "" {
		return r.Contact
	}
	return fallbackMailbox
}

func (r Recipients) careers() string {
	if r.Careers != "" {
		return r.Careers
	}
	return r.contact()
}

// Service handles one submission at a time: validate, then notify the
// operator, then acknowledge the submitter. There are no retries.
type Service struct {
	mailer  mail.Mailer
	to      Recipients
	company config.CompanyConfig
	check   *checker
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewService accepts a nil mailer; submissions then fail with
// ErrNotConfigured after validation.
func NewService(m mail.Mailer, to Recipients, company config.CompanyConfig, log *logger.Logger, mx *metrics.Metrics) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		mailer:  m,
		to:      to,
		company: company,
		check:   newChecker(),
		log:     log,
		metrics: mx,
	}
}

func (s *Service) SubmitContact(ctx context.Context, in Contact) (err error) {
	defer func() { s.record("contact", err) }()

	if err := s.check.Contact(&in); err != nil {
		return err
	}
	if s.mailer == nil {
		return fmt.Errorf("contact form: mail: %w", domainerr.ErrNotConfigured)
	}

	c := mail.ContactMail{Name: in.Name, Email: in.Email, Company: in.Company, Message: in.Message}
	notify, err := mail.ContactNotification(c, s.company, s.to.contact())
	if err != nil {
		return err
	}
	reply, err := mail.ContactReply(c, s.company)
	if err != nil {
		return err
	}
	return s.sendAll(ctx, "contact", in.Email, notify, reply)
}

func (s *Service) SubmitApplication(ctx context.Context, in Application) (err error) {
	defer func() { s.record("careers", err) }()

	if err := s.check.Application(&in); err != nil {
		return err
	}
	if s.mailer == nil {
		return fmt.Errorf("careers form: mail: %w", domainerr.ErrNotConfigured)
	}

	a := mail.ApplicationMail{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Position:    in.Position,
		CoverLetter: in.CoverLetter,
		ResumeName:  in.Resume.Filename,
	}
	resume := &mail.Attachment{
		Name:        in.Resume.Filename,
		ContentType: in.Resume.ContentType,
		Data:        in.Resume.Data,
	}
	notify, err := mail.ApplicationNotification(a, s.company, resume, s.to.careers())
	if err != nil {
		return err
	}
	reply, err := mail.ApplicationReply(a, s.company)
	if err != nil {
		return err
	}
	return s.sendAll(ctx, "careers", in.Email, notify, reply)
}

func (s *Service) sendAll(ctx context.Context, form, submitter string, msgs ...mail.Message) error {
	for _, m := range msgs {
		if err := s.mailer.Send(ctx, m); err != nil {
			s.log.Error("form mail failed", "form", form, "submitter", submitter, "subject", m.Subject, "err", err)
			return err
		}
	}
	s.log.Info("form submitted", "form", form, "submitter", submitter)
	return nil
}

func (s *Service) record(form string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domainerr.ErrInvalid):
		outcome = "invalid"
	case errors.Is(err, domainerr.ErrNotConfigured):
		outcome = "unconfigured"
	default:
		outcome = "failed"
	}
	s.metrics.FormSubmission(form, outcome)
}
