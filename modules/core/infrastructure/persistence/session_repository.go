package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gracewave/gracewave/modules/core/domain/entities/session"
	"github.com/gracewave/gracewave/modules/core/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

const (
	sessionFindQuery = `
        SELECT token, user_id, ip, user_agent, expires_at, created_at
        FROM sessions`

	sessionInsertQuery = `
        INSERT INTO sessions (token, user_id, ip, user_agent, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	sessionDeleteQuery = `DELETE FROM sessions WHERE token = $1`

	sessionDeleteByUserQuery = `DELETE FROM sessions WHERE user_id = $1`

	sessionDeleteExpiredQuery = `DELETE FROM sessions WHERE expires_at < NOW()`
)

type PgSessionRepository struct{}

func NewSessionRepository() session.Repository {
	return &PgSessionRepository{}
}

func (g *PgSessionRepository) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var s models.Session
	if err := tx.QueryRow(ctx, sessionFindQuery+" WHERE token = $1", token).Scan(
		&s.Token,
		&s.UserID,
		&s.IP,
		&s.UserAgent,
		&s.ExpiresAt,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "failed to get session by token")
	}
	return ToDomainSession(&s)
}

func (g *PgSessionRepository) Create(ctx context.Context, entity *session.Session) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	dbSession := toDBSession(entity)
	if _, err := tx.Exec(
		ctx,
		sessionInsertQuery,
		dbSession.Token,
		dbSession.UserID,
		dbSession.IP,
		dbSession.UserAgent,
		dbSession.ExpiresAt,
		dbSession.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert session")
	}
	return nil
}

func (g *PgSessionRepository) Delete(ctx context.Context, token string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, sessionDeleteQuery, token); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return nil
}

func (g *PgSessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, sessionDeleteByUserQuery, userID.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete sessions by user id")
	}
	return tag.RowsAffected(), nil
}

func (g *PgSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, sessionDeleteExpiredQuery)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired sessions")
	}
	return tag.RowsAffected(), nil
}
