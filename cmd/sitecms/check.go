package main

import (
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"sitecms/internal/domain/content"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/ingest"
	"sitecms/internal/metrics"
	"sitecms/internal/source"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse every local content file and report problems",
	Long: `check reads each kind's directory under the local content root, prints
one line per file that could not be parsed and, with --strict, per record
whose fields look wrong. It exits non-zero when any file failed to parse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		local := source.NewLocal(appConfig.Content.Root, ingest.NewReader(appLog, metrics.New()))

		broken := 0
		for _, kind := range content.Kinds {
			recs, warns, err := local.Scan(ctx, kind)
			var unavailable *domainerr.SourceUnavailableError
			switch {
			case errors.As(err, &unavailable):
				fmt.Fprintf(out, "%-12s missing (%s)\n", kind, local.Dir(kind))
				continue
			case err != nil:
				return err
			}

			fmt.Fprintf(out, "%-12s %d records, %d unreadable\n", kind, len(recs), len(warns))
			for _, w := range warns {
				fmt.Fprintf(out, "  ! %s\n", w)
			}
			broken += len(warns)

			if checkStrict {
				for _, r := range recs {
					for _, p := range r.Problems() {
						fmt.Fprintf(out, "  ? %s/%s: %s\n", kind, r.SourceID, p)
					}
				}
			}
		}
		if broken > 0 {
			return fmt.Errorf("%d content file(s) could not be parsed", broken)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "also report field problems in parsed records")
	rootCmd.AddCommand(checkCmd)
}
