// Package seed provides the initial data inserted into a fresh database.
package seed

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/infrastructure/persistence"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/composables"
)

// AdminUser seeds a platform administrator if the email is not taken yet.
func AdminUser(email, firstName, lastName, password string) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		repo := persistence.NewUserRepository()
		return composables.InTx(ctx, func(txCtx context.Context) error {
			exists, err := repo.EmailExists(txCtx, email)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}

			hash, err := user.HashPassword(password)
			if err != nil {
				return errors.Wrap(err, "failed to hash admin password")
			}
			entity := user.New(
				firstName,
				lastName,
				email,
				user.WithRole(user.RoleAdmin),
				user.WithPasswordHash(hash),
			)
			if _, err := repo.Create(txCtx, entity); err != nil {
				return errors.Wrap(err, "failed to create admin user")
			}
			return nil
		})
	}
}
