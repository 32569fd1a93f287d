package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"sitecms/internal/cms"
	"sitecms/internal/domain/content"
	"sitecms/internal/export"
	"sitecms/internal/metrics"
	"sitecms/internal/source"
)

var (
	syncOut   string
	syncKinds []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy content from the CMS into the local content directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		out := syncOut
		if out == "" {
			out = cfg.Content.Root
		}

		var kinds []content.Kind
		for _, s := range syncKinds {
			k, ok := content.ParseKind(s)
			if !ok {
				return fmt.Errorf("unknown kind %q", s)
			}
			kinds = append(kinds, k)
		}

		m := metrics.New()
		provider := cms.NewProvider(cms.Config{
			URL:     cfg.CMS.Endpoint(),
			Token:   cfg.CMS.Token,
			Timeout: cfg.CMS.Timeout,
		}, appLog, m)
		if _, err := provider.Client(); err != nil {
			return err
		}

		ex := &export.Exporter{
			Src:    source.NewRemote(provider, appLog),
			OutDir: out,
			Kinds:  kinds,
			Log:    appLog,
		}
		res, err := ex.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d, unchanged %d, skipped %d\n", res.Written, res.Unchanged, len(res.Skipped))
		if len(res.Failed) > 0 {
			return fmt.Errorf("could not list: %v", res.Failed)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncOut, "out", "", "output directory (defaults to content.root)")
	syncCmd.Flags().StringSliceVar(&syncKinds, "kind", nil, "limit to these kinds (repeatable)")
	rootCmd.AddCommand(syncCmd)
}
