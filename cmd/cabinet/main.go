package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/cabinet/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("cabinet failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "cabinet",
		Short:         "Billing for a therapy practice, kept in flat files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			setupLogging(loaded.Log)
			cfg = loaded
			return nil
		},
	}

	conf := func() *config.Config { return cfg }
	root.AddCommand(
		serveCmd(conf),
		reconcileCmd(conf),
		exportCmd(conf),
		tenantCmd(),
	)
	return root
}

func setupLogging(lc config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
