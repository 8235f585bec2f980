package persistence

import (
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/core/domain/entities/session"
	"github.com/gracewave/gracewave/modules/core/infrastructure/persistence/models"
)

func ToDomainUser(dbUser *models.User) (user.User, error) {
	id, err := uuid.Parse(dbUser.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse user id")
	}
	role, err := user.NewRole(dbUser.Role)
	if err != nil {
		return nil, err
	}
	opts := []user.Option{
		user.WithID(id),
		user.WithRole(role),
		user.WithCreatedAt(dbUser.CreatedAt),
		user.WithUpdatedAt(dbUser.UpdatedAt),
	}
	if dbUser.ChurchID.Valid {
		opts = append(opts, user.WithChurchID(dbUser.ChurchID.String))
	}
	if dbUser.PasswordHash.Valid {
		opts = append(opts, user.WithPasswordHash(dbUser.PasswordHash.String))
	}
	if dbUser.LastLogin.Valid {
		opts = append(opts, user.WithLastLogin(dbUser.LastLogin.Time))
	}
	return user.New(dbUser.FirstName, dbUser.LastName, dbUser.Email, opts...), nil
}

func toDBUser(entity user.User) *models.User {
	return &models.User{
		ID:           entity.ID().String(),
		Email:        entity.Email(),
		FirstName:    entity.FirstName(),
		LastName:     entity.LastName(),
		Role:         string(entity.Role()),
		ChurchID:     nullString(entity.ChurchID()),
		PasswordHash: nullString(entity.PasswordHash()),
		LastLogin:    nullTime(entity.LastLogin()),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
}

func ToDomainSession(dbSession *models.Session) (*session.Session, error) {
	userID, err := uuid.Parse(dbSession.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse session user id")
	}
	return &session.Session{
		Token:     dbSession.Token,
		UserID:    userID,
		IP:        dbSession.IP,
		UserAgent: dbSession.UserAgent,
		ExpiresAt: dbSession.ExpiresAt,
		CreatedAt: dbSession.CreatedAt,
	}, nil
}

func toDBSession(entity *session.Session) *models.Session {
	return &models.Session{
		Token:     entity.Token,
		UserID:    entity.UserID.String(),
		IP:        entity.IP,
		UserAgent: entity.UserAgent,
		ExpiresAt: entity.ExpiresAt,
		CreatedAt: entity.CreatedAt,
	}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(v time.Time) sql.NullTime {
	return sql.NullTime{Time: v, Valid: !v.IsZero()}
}
