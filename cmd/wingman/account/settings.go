package accountcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
)

const settingsLongDesc string = `Update the profile of the logged-in user.

Only the given fields change. With --password the new password is read from
stdin like in "wingman register".

Examples:
  wingman settings --age 30
  wingman settings --name "Sam Lee" --email sam.lee@example.com
  wingman settings --password`

const settingsShortDesc string = "Update your profile"

type settingsCommander struct {
	flags cmdutil.ClientFlags

	name           string
	email          string
	sex            string
	age            int
	changePassword bool
}

func NewSettingsCmd() *cobra.Command {
	cmder := &settingsCommander{}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: settingsShortDesc,
		Long:  settingsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmd.Flags().StringVar(&cmder.name, "name", "", "New name")
	cmd.Flags().StringVar(&cmder.email, "email", "", "New email address")
	cmd.Flags().StringVar(&cmder.sex, "sex", "", "New sex")
	cmd.Flags().IntVar(&cmder.age, "age", 0, "New age (18-100)")
	cmd.Flags().BoolVar(&cmder.changePassword, "password", false, "Change the password")

	return cmd
}

func (c *settingsCommander) run(cmd *cobra.Command) error {
	changed := false
	for _, name := range []string{"name", "email", "sex", "age", "password"} {
		changed = changed || cmd.Flags().Changed(name)
	}
	if !changed {
		return errNothingToChange
	}

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

	current, err := env.Client.GetUser(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("fetching profile: %w", err)
	}

	upd := dating.ProfileUpdate{
		UserID: current.ID,
		Name:   current.Name,
		Email:  current.Email,
		Sex:    current.Sex,
		Age:    current.Age,
	}
	if cmd.Flags().Changed("name") {
		upd.Name = c.name
	}
	if cmd.Flags().Changed("email") {
		upd.Email = c.email
	}
	if cmd.Flags().Changed("sex") {
		upd.Sex = c.sex
	}
	if cmd.Flags().Changed("age") {
		upd.Age = c.age
	}
	if c.changePassword {
		upd.Password, err = cmdutil.ReadSecret(cmdutil.Stdin(cmd), cmd.ErrOrStderr(), "New password: ")
		if err != nil {
			return err
		}
	}

	if err := upd.Validate(); err != nil {
		return err
	}

	u, err := env.Client.UpdateUser(ctx, upd)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	if err := saveSession(env.Sessions, u, s.ChatWindowID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Profile updated.\n", cliui.SuccessMark)
	printProfile(cmd.OutOrStdout(), u)
	return nil
}
