package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

const (
	userFindQuery = `
        SELECT
            u.id,
            u.email,
            u.first_name,
            u.last_name,
            u.role,
            u.church_id,
            u.password_hash,
            u.last_login,
            u.created_at,
            u.updated_at
        FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userExistsByEmailQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	userInsertQuery = `
        INSERT INTO users (id, email, first_name, last_name, role, church_id, password_hash, last_login, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	userUpdateQuery = `
        UPDATE users
        SET email = $2,
            first_name = $3,
            last_name = $4,
            role = $5,
            church_id = $6,
            password_hash = $7,
            updated_at = $8
        WHERE id = $1`

	userUpdateLastLoginQuery = `UPDATE users SET last_login = NOW() WHERE id = $1`

	userReassignChurchQuery = `UPDATE users SET church_id = $2, updated_at = NOW() WHERE church_id = $1`

	userDetachChurchQuery = `UPDATE users SET church_id = NULL, updated_at = NOW() WHERE church_id = $1`

	userDeleteQuery = `DELETE FROM users WHERE id = $1`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.Role,
			&u.ChurchID,
			&u.PasswordHash,
			&u.LastLogin,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		entity, err := ToDomainUser(&u)
		if err != nil {
			return nil, err
		}
		users = append(users, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate user rows")
	}
	return users, nil
}

func (g *PgUserRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, userCountQuery).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return count, nil
}

func (g *PgUserRepository) GetAll(ctx context.Context) ([]user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" ORDER BY u.created_at")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get all users")
	}
	return users, nil
}

func (g *PgUserRepository) GetByChurchID(ctx context.Context, churchID string) ([]user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.church_id = $1 ORDER BY u.created_at", churchID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get users by church id")
	}
	return users, nil
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.id = $1", id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by id")
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.email = $1", email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by email")
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	var exists bool
	if err := tx.QueryRow(ctx, userExistsByEmailQuery, email).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check email existence")
	}
	return exists, nil
}

func (g *PgUserRepository) Create(ctx context.Context, entity user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbUser := toDBUser(entity)
	if _, err := tx.Exec(
		ctx,
		userInsertQuery,
		dbUser.ID,
		dbUser.Email,
		dbUser.FirstName,
		dbUser.LastName,
		dbUser.Role,
		dbUser.ChurchID,
		dbUser.PasswordHash,
		dbUser.LastLogin,
		dbUser.CreatedAt,
		dbUser.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert user")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgUserRepository) Update(ctx context.Context, entity user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbUser := toDBUser(entity)
	if _, err := tx.Exec(
		ctx,
		userUpdateQuery,
		dbUser.ID,
		dbUser.Email,
		dbUser.FirstName,
		dbUser.LastName,
		dbUser.Role,
		dbUser.ChurchID,
		dbUser.PasswordHash,
		dbUser.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, userUpdateLastLoginQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to update last login")
	}
	return nil
}

func (g *PgUserRepository) ReassignChurch(ctx context.Context, oldID, newID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, userReassignChurchQuery, oldID, newID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to reassign users to new church id")
	}
	return tag.RowsAffected(), nil
}

func (g *PgUserRepository) DetachChurch(ctx context.Context, churchID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, userDetachChurchQuery, churchID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to detach users from church")
	}
	return tag.RowsAffected(), nil
}

func (g *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, userDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	return nil
}
