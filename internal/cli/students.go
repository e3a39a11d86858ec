package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spelling-bee/internal/roster"
)

func (a *app) studentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "List, add and delete students",
	}

	var byName bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List students, highest points first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order := roster.OrderLeaderboard
			if byName {
				order = roster.OrderName
			}
			return a.withService(cmd, func(ctx context.Context, svc *roster.Service) error {
				students, err := svc.ListStudents(ctx, order)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSCHOOL\tPOINTS")
				for _, s := range students {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", s.ID, s.Name, s.School, s.Points)
				}
				return w.Flush()
			})
		},
	}
	list.Flags().BoolVar(&byName, "by-name", false, "sort by name")

	add := &cobra.Command{
		Use:   "add <name> <school> [points]",
		Short: "Add a student",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := ""
			if len(args) == 3 {
				points = args[2]
			}
			return a.withService(cmd, func(ctx context.Context, svc *roster.Service) error {
				student, err := svc.AddStudent(ctx, args[0], args[1], points)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Student added successfully (id %d)\n", student.ID)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			return a.withService(cmd, func(ctx context.Context, svc *roster.Service) error {
				if err := svc.DeleteStudent(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Student deleted")
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func (a *app) importCommand() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk add students from a CSV file of name,school[,points]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := roster.ParseImportPolicy(a.cfg.ImportPolicy)
			if err != nil {
				return err
			}
			if strict {
				policy = roster.ImportStrict
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			return a.withService(cmd, func(ctx context.Context, svc *roster.Service) error {
				result, err := svc.ImportCSV(ctx, file, policy)
				out := cmd.OutOrStdout()
				for _, row := range result.Rows {
					if row.Status == roster.RowSkipped {
						fmt.Fprintf(out, "line %d skipped: %s\n", row.Line, row.Reason)
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, result.Message())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject the whole file when any row is malformed")
	return cmd
}

func (a *app) eliminatedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eliminated",
		Short: "List eliminated students in elimination order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *roster.Service) error {
				eliminated, err := svc.ListEliminated(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tSCHOOL\tPOINTS\tELIMINATED")
				for _, e := range eliminated {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Name, e.School, e.Points, e.EliminatedAt.Local().Format("2006-01-02 15:04:05"))
				}
				return w.Flush()
			})
		},
	}
}
