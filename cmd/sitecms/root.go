package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
	"sitecms/internal/domain/config"
	"sitecms/internal/platform/logger"
)

var cfgFile string

var (
	appConfig config.Config
	appLog    *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sitecms",
	Short: "Content service for the Lancet India marketing site",
	Long: `sitecms serves site content from local files or the hosted CMS,
handles the contact and careers forms, and can seed the local content
directory from the CMS.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			appLog.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./site.yaml", "config file; a missing file means defaults plus environment")
}

func initializeConfig() error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	appConfig = cfg
	appLog = log
	return nil
}
