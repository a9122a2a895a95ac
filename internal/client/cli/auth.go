package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func (a *App) promptIfEmpty(v *string, prompt string) error {
	if *v != "" {
		return nil
	}
	s, err := GetSimpleText(a.in, prompt, a.out)
	if err != nil {
		return err
	}
	*v = s
	return nil
}

func newRegisterCmd(a *App) *cobra.Command {
	var email, username string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.promptIfEmpty(&email, "Email"); err != nil {
				return err
			}
			if err := a.promptIfEmpty(&username, "Username"); err != nil {
				return err
			}
			password, err := a.readSecret("Password")
			if err != nil {
				return err
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			s, err := a.client.Register(ctx, email, username, password)
			if err != nil {
				return err
			}
			if err := a.startSession(s); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Welcome, %s! Check your email to verify your account.\n", s.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	return cmd
}

func newLoginCmd(a *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.promptIfEmpty(&email, "Email"); err != nil {
				return err
			}
			password, err := a.readSecret("Password")
			if err != nil {
				return err
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			s, err := a.client.Login(ctx, email, password)
			if err != nil {
				if errors.Is(err, common.ErrorUnauthorized) {
					return errors.New("invalid email or password")
				}
				return err
			}
			if err := a.startSession(s); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s.\n", s.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			serverErr := a.client.Logout(ctx)
			a.sess = nil
			if err := a.store.Clear(); err != nil {
				return err
			}
			if serverErr != nil {
				a.logger.Warn(ctx, "server logout failed", "error", serverErr)
				fmt.Fprintln(a.errOut, warnStyle.Render("warning: could not reach the server; the local session was removed anyway"))
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			p, err := a.client.Profile(ctx)
			if err != nil {
				return err
			}
			printProfile(a.out, p)
			return nil
		},
	}
}

func newProfileCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit your profile",
		Args:  cobra.NoArgs,
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var upd models.ProfileUpdate
			flags := map[string]**string{
				"username":    &upd.Username,
				"full-name":   &upd.FullName,
				"bio":         &upd.Bio,
				"institution": &upd.Institution,
			}
			for name, dst := range flags {
				if cmd.Flags().Changed(name) {
					v, _ := cmd.Flags().GetString(name)
					*dst = &v
				}
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			p, err := a.client.UpdateProfile(ctx, upd)
			if err != nil {
				return err
			}
			a.sess.User = p
			if err := a.store.Save(a.sess); err != nil {
				return err
			}
			printProfile(a.out, p)
			return nil
		},
	}
	update.Flags().String("username", "", "display name")
	update.Flags().String("full-name", "", "full name")
	update.Flags().String("bio", "", "short bio")
	update.Flags().String("institution", "", "school or university")

	cmd.AddCommand(update)
	cmd.RunE = newWhoamiCmd(a).RunE
	return cmd
}

func newPasswdCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			current, err := a.readSecret("Current password")
			if err != nil {
				return err
			}
			next, err := a.readSecret("New password")
			if err != nil {
				return err
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			if err := a.client.ChangePassword(ctx, current, next); err != nil {
				return err
			}
			// Other sessions were revoked server-side, this one included.
			a.sess = nil
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password changed. Please log in again.")
			return nil
		},
	}
}

func newVerifyCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Confirm your email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			p, err := a.client.VerifyEmail(ctx, args[0])
			if err != nil {
				return err
			}
			if a.sess.LoggedIn() && a.sess.User.ID == p.ID {
				a.sess.User = p
				if err := a.store.Save(a.sess); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.out, "Email %s verified.\n", p.Email)
			return nil
		},
	}
}

func newResetPasswordCmd(a *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.promptIfEmpty(&email, "Email"); err != nil {
				return err
			}
			ctx, cancel := a.callCtx(cmd)
			defer cancel()
			if err := a.client.RequestPasswordReset(ctx, email); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "If that address has an account, a reset link is on its way.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}
