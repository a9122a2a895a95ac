package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBookmarksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bm"},
		Short:   "Your saved notes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			list, err := a.client.Bookmarks(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(a.out, "No bookmarks yet.")
				return nil
			}
			return printNoteTable(a.out, list)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add ID",
			Short: "Bookmark a note",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireLogin(); err != nil {
					return err
				}
				ctx, cancel := a.callCtx(cmd)
				defer cancel()
				if err := a.client.AddBookmark(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Bookmarked.")
				return nil
			},
		},
		&cobra.Command{
			Use:     "remove ID",
			Aliases: []string{"rm"},
			Short:   "Remove a bookmark",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireLogin(); err != nil {
					return err
				}
				ctx, cancel := a.callCtx(cmd)
				defer cancel()
				if err := a.client.RemoveBookmark(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Bookmark removed.")
				return nil
			},
		},
	)
	return cmd
}
