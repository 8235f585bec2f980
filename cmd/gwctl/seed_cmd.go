package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/gracewave/gracewave/modules"
	"github.com/gracewave/gracewave/modules/core/seed"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/composables"
	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/eventbus"
)

func newSeedCmd() *cobra.Command {
	var (
		email     string
		firstName string
		lastName  string
		password  string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert initial data, including the platform administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			pool, err := pgxpool.New(cmd.Context(), conf.Database.Opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{
				Pool:     pool,
				EventBus: eventbus.NewEventPublisher(logger),
				Logger:   logger,
			})
			if err := modules.Load(app); err != nil {
				return err
			}

			seeder := application.NewSeeder()
			seeder.Register(seed.AdminUser(email, firstName, lastName, password))

			ctx := composables.WithPool(cmd.Context(), pool)
			return seeder.Seed(ctx, app)
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@gracewave.local", "admin email")
	cmd.Flags().StringVar(&firstName, "first-name", "Grace", "admin first name")
	cmd.Flags().StringVar(&lastName, "last-name", "Admin", "admin last name")
	cmd.Flags().StringVar(&password, "password", "changeme", "admin password")
	return cmd
}
