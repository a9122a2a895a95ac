package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/samudhan2008/sa-notes-beta/internal/client/config"
)

// NewRootCmd builds the notesctl command tree. args are the raw process
// arguments, used to locate the JSON config file before flag parsing.
func NewRootCmd(a *App, args []string) *cobra.Command {
	var (
		configFile  string
		server      string
		sessionFile string
		verbose     bool
	)

	root := &cobra.Command{
		Use:           "notesctl",
		Short:         "Browse, share and moderate study notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				cfg.ServerURL = server
			}
			if cmd.Flags().Changed("session") {
				cfg.SessionFile = sessionFile
			}
			return a.init(cfg, verbose)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetIn(a.stdin)

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "path to a JSON config file")
	pf.StringVar(&server, "server", "", "notes API base URL")
	pf.StringVar(&sessionFile, "session", "", "session file path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newPasswdCmd(a),
		newVerifyCmd(a),
		newResetPasswordCmd(a),
		newNotesCmd(a),
		newBookmarksCmd(a),
		newAdminCmd(a),
	)
	return root
}

// callCtx bounds one API call by the configured request timeout.
func (a *App) callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := 15 * time.Second
	if a.config != nil && a.config.RequestTimeout > 0 {
		timeout = a.config.RequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Execute runs notesctl with args (without the program name).
func Execute(ctx context.Context, a *App, args []string) error {
	root := NewRootCmd(a, args)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
