// Package seedcmder provides the seed command that stores a known test user.
package seedcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/storagedriver"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/config"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/logger"
	"github.com/papercomputeco/wingman/pkg/storage"
)

const seedLongDesc string = `Seed a test user into the server database.

The user is created, or reset to the given profile and password when the
email is already registered. The database comes from --sqlite or --postgres,
falling back to storage.sqlite_path and storage.postgres_dsn in config.toml.

Examples:
  wingman seed --sqlite ./wingman.db
  wingman seed --postgres postgres://wingman@localhost/wingman
  wingman seed --email me@example.com --password s3cret!`

const seedShortDesc string = "Seed a test user"

// Test user defaults.
const (
	defaultName     = "test"
	defaultEmail    = "test@example.com"
	defaultSex      = "male"
	defaultAge      = 30
	defaultPassword = "test123"
)

var seedFlagKeys = []string{config.FlagSQLite, config.FlagPostgres}

type seedCommander struct {
	sqlitePath  string
	postgresDSN string

	name     string
	email    string
	password string
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.ServeFlags, seedFlagKeys)

			return cmder.run(cmd, config.FromViper(v).Storage)
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagPostgres, &cmder.postgresDSN)
	cmd.Flags().StringVar(&cmder.name, "name", defaultName, "Name of the test user")
	cmd.Flags().StringVar(&cmder.email, "email", defaultEmail, "Email of the test user")
	cmd.Flags().StringVar(&cmder.password, "password", defaultPassword, "Password of the test user")

	return cmd
}

func (c *seedCommander) run(cmd *cobra.Command, cfg config.StorageConfig) error {
	if !storagedriver.IsPersistent(cfg) {
		return errors.New("no database configured: pass --sqlite or --postgres")
	}

	reg := dating.Registration{
		Name:     c.name,
		Email:    c.email,
		Sex:      defaultSex,
		Age:      defaultAge,
		Password: c.password,
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	driver, err := storagedriver.Open(ctx, cfg, logger.Nop())
	if err != nil {
		return err
	}
	defer driver.Close()

	out := cmd.OutOrStdout()

	var (
		user    *dating.User
		created bool
	)
	if err := cliui.Step(out, "Seeding test user", func() error {
		user, created, err = storage.UpsertUser(ctx, driver, reg)
		return err
	}); err != nil {
		return err
	}

	verb := "Updated"
	if created {
		verb = "Created"
	}
	fmt.Fprintf(out, "\n  %s %s %s %s\n\n",
		cliui.SuccessMark,
		verb,
		cliui.NameStyle.Render(user.Email),
		cliui.DimStyle.Render(fmt.Sprintf("(id %d, password %s)", user.ID, c.password)),
	)
	return nil
}
