package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func newAdminCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderation console (admins only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.requireLogin()
		},
	}
	cmd.AddCommand(
		newAdminUsersCmd(a),
		newAdminSetStatusCmd(a),
		newAdminReportsCmd(a),
		newAdminCloseReportCmd(a, "resolve"),
		newAdminCloseReportCmd(a, "reject"),
		newAdminDeleteNoteCmd(a),
		newAdminStatsCmd(a),
	)
	return cmd
}

func newAdminUsersCmd(a *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			list, err := a.client.AdminUsers(ctx, search)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tSTATUS\tJOINED")
			for _, u := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role, u.Status, u.CreatedAt.Format(timeLayout))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match username or email")
	return cmd
}

func newAdminSetStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status USER_ID active|inactive|suspended",
		Short: "Change an account's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			p, err := a.client.SetUserStatus(ctx, args[0], models.UserStatus(strings.ToLower(args[1])))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is now %s.\n", p.Username, p.Status)
			return nil
		},
	}
}

func newAdminReportsCmd(a *App) *cobra.Command {
	var search, status, typ string
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List moderation reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			list, err := a.client.AdminReports(ctx, models.ReportFilter{
				Search: search,
				Status: models.ReportStatus(status),
				Type:   models.ReportType(typ),
			})
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "No reports.")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOTE\tAUTHOR\tTYPE\tSTATUS\tFILED")
			for _, r := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.NoteTitle, r.NoteAuthor, r.Type, r.Status, r.CreatedAt.Format(timeLayout))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match note title or author")
	cmd.Flags().StringVar(&status, "status", "", "pending, reviewing, resolved or rejected")
	cmd.Flags().StringVar(&typ, "type", "", "copyright, inappropriate, plagiarism or other")
	return cmd
}

func newAdminCloseReportCmd(a *App, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " REPORT_ID",
		Short: strings.ToUpper(action[:1]) + action[1:] + " a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			var (
				rep *models.Report
				err error
			)
			if action == "resolve" {
				rep, err = a.client.ResolveReport(ctx, args[0])
			} else {
				rep, err = a.client.RejectReport(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Report %s %s.\n", rep.ID, rep.Status)
			return nil
		},
	}
}

func newAdminDeleteNoteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-note NOTE_ID",
		Short: "Remove any note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			if err := a.client.AdminDeleteNote(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted note %s.\n", args[0])
			return nil
		},
	}
}

func newAdminStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Site totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			s, err := a.client.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Users:            %d (%d active)\n", s.TotalUsers, s.ActiveUsers)
			fmt.Fprintf(a.out, "Notes:            %d\n", s.TotalNotes)
			fmt.Fprintf(a.out, "Downloads:        %d\n", s.TotalDownloads)
			fmt.Fprintf(a.out, "Reports resolved: %d\n", s.ReportsResolved)
			fmt.Fprintf(a.out, "Average rating:   %.2f\n", s.AverageRating)
			return nil
		},
	}
}
