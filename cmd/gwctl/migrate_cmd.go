package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gracewave/gracewave/migrations"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(
		newMigrateSubCmd("up", "Apply all pending migrations"),
		newMigrateSubCmd("down", "Roll back the most recent migration"),
		newMigrateSubCmd("status", "Print migration status"),
	)
	return cmd
}

func newMigrateSubCmd(direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			manager := application.NewMigrationManager(conf.Logger())
			manager.RegisterSchema(migrations.FS, migrations.Dir)

			dsn := conf.Database.ConnectionString()
			switch direction {
			case "up":
				return manager.Up(cmd.Context(), dsn)
			case "down":
				return manager.Down(cmd.Context(), dsn)
			case "status":
				return manager.Status(cmd.Context(), dsn)
			default:
				return fmt.Errorf("unknown migration direction: %s", direction)
			}
		},
	}
}
