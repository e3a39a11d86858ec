// Package cli implements the spellbee-admin command tree. Commands open the
// configured store directly and go through roster.Service, so the same
// validation applies as over HTTP.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"spelling-bee/internal/config"
	"spelling-bee/internal/roster"
	"spelling-bee/internal/storage"
)

// Opener returns the repository for cfg. Tests substitute it.
type Opener func(ctx context.Context, cfg config.Config) (roster.Repository, error)

type app struct {
	cfg  config.Config
	open Opener
}

func NewRootCommand(cfg config.Config, open Opener) *cobra.Command {
	if open == nil {
		open = storage.Open
	}
	a := &app{cfg: cfg, open: open}

	root := &cobra.Command{
		Use:           "spellbee-admin",
		Short:         "Manage the spelling bee roster",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.studentsCommand(),
		a.importCommand(),
		a.maxNumberCommand(),
		a.eliminatedCommand(),
		hashPasswordCommand(),
	)
	return root
}

// withService opens the store for the duration of one command.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *roster.Service) error) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := a.open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	return fn(ctx, roster.NewService(repo))
}

func hashPasswordCommand() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for SPELLBEE_ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
