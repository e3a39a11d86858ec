package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"spelling-bee/internal/roster"
)

func (a *app) maxNumberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "max-number",
		Short: "Show or change the highest number students can pick",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print max_number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *roster.Service) error {
				value, err := svc.MaxNumber(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <n>",
		Short: "Set max_number (must be > 0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *roster.Service) error {
				if err := svc.UpdateMaxNumberText(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Maximum number updated successfully")
				return nil
			})
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}
