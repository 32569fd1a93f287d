package main

import (
	"context"
	"errors"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"sitecms/internal/catalog"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/forms"
	"sitecms/internal/mail"
	"sitecms/internal/metrics"
	"sitecms/internal/serve"
	"syscall"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the content API, form endpoints and sitemap",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if serveAddr != "" {
			cfg.Serve.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		cat := catalog.FromConfig(cfg, appLog, m)

		mailer, err := mail.FromConfig(cfg.Mail, appLog)
		switch {
		case errors.Is(err, domainerr.ErrNotConfigured):
			appLog.Warn("mail transport not configured, form endpoints will answer 503")
			mailer = nil
		case err != nil:
			return err
		}
		submissions := forms.NewService(mailer, forms.RecipientsFromConfig(cfg.Mail), cfg.Site.Company, appLog, m)

		s := serve.New(cfg, cat, submissions, appLog, m)
		defer s.Close()

		return s.ListenAndServe(ctx, cfg.Serve.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve.addr)")
	rootCmd.AddCommand(serveCmd)
}
