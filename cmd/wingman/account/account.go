// Package accountcmder provides the commands managing the wingman account the
// CLI acts for: register, login, logout, whoami and settings.
package accountcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/session"
)

const registerLongDesc string = `Create a wingman account and log in.

The password is read from stdin: piped input is taken from its first line,
otherwise it is prompted for with hidden input.

Examples:
  wingman register --name Sam --email sam@example.com --sex female --age 29
  echo "$PASSWORD" | wingman register --name Sam --email sam@example.com --sex female --age 29`

const registerShortDesc string = "Create a wingman account"

type registerCommander struct {
	flags cmdutil.ClientFlags
	reg   dating.Registration
}

func NewRegisterCmd() *cobra.Command {
	cmder := &registerCommander{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: registerShortDesc,
		Long:  registerLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmd.Flags().StringVar(&cmder.reg.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&cmder.reg.Email, "email", "", "Your email address")
	cmd.Flags().StringVar(&cmder.reg.Sex, "sex", "", "Your sex")
	cmd.Flags().IntVar(&cmder.reg.Age, "age", 0, "Your age (18-100)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (c *registerCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	password, err := cmdutil.ReadSecret(cmdutil.Stdin(cmd), cmd.ErrOrStderr(), "Choose a password: ")
	if err != nil {
		return err
	}
	c.reg.Password = password

	// Checked locally first so a typo costs no round trip.
	if err := c.reg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	u, err := env.Client.CreateUser(ctx, c.reg)
	if err != nil {
		return fmt.Errorf("registering: %w", err)
	}

	if err := saveSession(env.Sessions, u, ""); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Welcome, %s! You are logged in as %s.\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(u.Name),
		cliui.DimStyle.Render(u.Email),
	)
	return nil
}

const loginLongDesc string = `Log in to a wingman account.

The session is stored in session.toml in the .wingman/ directory and used by
every command acting for a user. Other terminals pick up a new login or a
logout immediately.

Examples:
  wingman login --email sam@example.com
  echo "$PASSWORD" | wingman login --email sam@example.com`

const loginShortDesc string = "Log in to a wingman account"

func NewLoginCmd() *cobra.Command {
	var (
		flags cmdutil.ClientFlags
		email string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: loginShortDesc,
		Long:  loginLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdutil.Load(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			password, err := cmdutil.ReadSecret(cmdutil.Stdin(cmd), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}

			creds := dating.Credentials{Email: email, Password: password}
			if err := creds.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			u, err := env.Client.Login(ctx, creds)
			if err != nil {
				return fmt.Errorf("logging in: %w", err)
			}

			if err := saveSession(env.Sessions, u, ""); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Logged in as %s %s\n\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(u.Name),
				cliui.DimStyle.Render("("+u.Email+")"),
			)
			return nil
		},
	}

	cmdutil.AddClientFlags(cmd, &flags)
	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

const logoutShortDesc string = "Log out of the wingman account"

func NewLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: logoutShortDesc,
		Long:  "Log out by removing the stored session. Logging out twice is not an error.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			mgr, err := session.NewManager(configDir)
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			if err := mgr.Clear(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Logged out.\n\n", cliui.SuccessMark)
			return nil
		},
	}

	return cmd
}

const whoamiShortDesc string = "Show the logged-in user"

func NewWhoamiCmd() *cobra.Command {
	var flags cmdutil.ClientFlags

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: whoamiShortDesc,
		Long:  "Show the profile of the logged-in user as stored by the API server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdutil.Load(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			s, err := env.Session()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			u, err := env.Client.GetUser(ctx, s.UserID)
			if err != nil {
				return fmt.Errorf("fetching profile: %w", err)
			}

			printProfile(cmd.OutOrStdout(), u)
			return nil
		},
	}

	cmdutil.AddClientFlags(cmd, &flags)

	return cmd
}

func printProfile(out io.Writer, u *dating.User) {
	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render(u.Name))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Email:"), cliui.ValueStyle.Render(u.Email))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Sex:  "), cliui.ValueStyle.Render(u.Sex))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Age:  "), cliui.ValueStyle.Render(fmt.Sprint(u.Age)))
	fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Since:"), cliui.DimStyle.Render(u.CreatedAt.Local().Format(time.DateOnly)))

	if desc := strings.TrimSpace(u.Description); desc != "" {
		fmt.Fprintf(out, "\n  %s\n  %s\n", cliui.KeyStyle.Render("Profile description:"), desc)
	}
	fmt.Fprintln(out)
}

// saveSession stores u as the logged-in user.
func saveSession(mgr *session.Manager, u *dating.User, chatWindowID string) error {
	err := mgr.Save(&session.Session{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		LoggedInAt:   time.Now().UTC(),
		ChatWindowID: chatWindowID,
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// errNothingToChange is returned by settings without any flag.
var errNothingToChange = errors.New("nothing to change: pass at least one of --name, --email, --sex, --age or --password")
