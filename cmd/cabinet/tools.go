package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/cabinet/internal/config"
	"github.com/gosuda/cabinet/internal/export"
	"github.com/gosuda/cabinet/internal/tenant"
)

func reconcileCmd(conf func() *config.Config) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair document links left behind by interrupted writes",
		Long: `Walk a tenant's seances and fix invoice and quote references whose
document file is missing, or whose status disagrees with the document
that exists. Without --email the demo tenant is checked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := newCore(ctx, conf())
			if err != nil {
				return err
			}
			defer c.Close()

			t := tenant.Resolve(email)
			fixed, err := c.billing().Reconcile(ctx, t)
			if err != nil {
				return err
			}
			log.Info().Str("tenant", t.String()).Int("fixed", fixed).Msg("reconcile done")
			printf(cmd, "%s: %d seance(s) repaired\n", t, fixed)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email of the tenant")
	return cmd
}

func exportCmd(conf func() *config.Config) *cobra.Command {
	var email, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a tenant's seances to an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := newCore(ctx, conf())
			if err != nil {
				return err
			}
			defer c.Close()

			var w io.Writer = cmd.OutOrStdout()
			var f *os.File
			if out != "-" {
				f, err = os.Create(out) //nolint:gosec // operator-chosen path
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				w = f
			}

			t := tenant.Resolve(email)
			err = export.Seances(ctx, c.billing(), t, w)
			if f != nil {
				if closeErr := f.Close(); err == nil && closeErr != nil {
					err = fmt.Errorf("export: %w", closeErr)
				}
			}
			if err != nil {
				return err
			}
			log.Info().Str("tenant", t.String()).Str("out", out).Msg("export written")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email of the tenant")
	cmd.Flags().StringVarP(&out, "out", "o", "seances.xlsx", `output file, "-" for stdout`)
	return cmd
}

func tenantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tenant EMAIL",
		Short: "Print the data directory name of an account",
		Args:  cobra.ExactArgs(1),
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			printf(cmd, "%s\n", tenant.Resolve(args[0]))
			return nil
		},
	}
}
