package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/gracewave/gracewave/modules/church/domain/aggregates/church"
	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

var (
	ErrChurchNotFound = errors.New("church not found")
)

const (
	churchFindQuery = `
        SELECT
            c.id,
            c.name,
            c.description,
            c.active,
            c.created_at,
            c.updated_at
        FROM churches c`

	churchCountQuery = `SELECT COUNT(c.id) FROM churches c`

	churchExistsQuery = `SELECT EXISTS (SELECT 1 FROM churches WHERE id = $1)`

	churchInsertQuery = `
        INSERT INTO churches (id, name, description, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	churchUpdateQuery = `
        UPDATE churches
        SET name = $2,
            description = $3,
            active = $4,
            updated_at = $5
        WHERE id = $1`

	churchUpdateIDQuery = `UPDATE churches SET id = $2, updated_at = NOW() WHERE id = $1`

	churchDeleteQuery = `DELETE FROM churches WHERE id = $1`
)

type PgChurchRepository struct{}

func NewChurchRepository() church.Repository {
	return &PgChurchRepository{}
}

func (g *PgChurchRepository) queryChurches(ctx context.Context, query string, args ...interface{}) ([]church.Church, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query churches")
	}
	defer rows.Close()

	var churches []church.Church
	for rows.Next() {
		var c models.Church
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.Active,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan church row")
		}
		churches = append(churches, ToDomainChurch(&c))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate church rows")
	}
	return churches, nil
}

func (g *PgChurchRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, churchCountQuery).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count churches")
	}
	return count, nil
}

func (g *PgChurchRepository) GetAll(ctx context.Context) ([]church.Church, error) {
	churches, err := g.queryChurches(ctx, churchFindQuery+" ORDER BY c.created_at")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get all churches")
	}
	return churches, nil
}

func (g *PgChurchRepository) GetByID(ctx context.Context, id string) (church.Church, error) {
	churches, err := g.queryChurches(ctx, churchFindQuery+" WHERE c.id = $1", id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get church by id")
	}
	if len(churches) == 0 {
		return nil, ErrChurchNotFound
	}
	return churches[0], nil
}

func (g *PgChurchRepository) Exists(ctx context.Context, id string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	var exists bool
	if err := tx.QueryRow(ctx, churchExistsQuery, id).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check church existence")
	}
	return exists, nil
}

func (g *PgChurchRepository) Create(ctx context.Context, entity church.Church) (church.Church, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbChurch := toDBChurch(entity)
	if _, err := tx.Exec(
		ctx,
		churchInsertQuery,
		dbChurch.ID,
		dbChurch.Name,
		dbChurch.Description,
		dbChurch.Active,
		dbChurch.CreatedAt,
		dbChurch.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert church")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgChurchRepository) Update(ctx context.Context, entity church.Church) (church.Church, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbChurch := toDBChurch(entity)
	if _, err := tx.Exec(
		ctx,
		churchUpdateQuery,
		dbChurch.ID,
		dbChurch.Name,
		dbChurch.Description,
		dbChurch.Active,
		dbChurch.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update church")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgChurchRepository) UpdateID(ctx context.Context, oldID, newID string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, churchUpdateIDQuery, oldID, newID)
	if err != nil {
		return errors.Wrap(err, "failed to update church id")
	}
	if tag.RowsAffected() == 0 {
		return ErrChurchNotFound
	}
	return nil
}

func (g *PgChurchRepository) Delete(ctx context.Context, id string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, churchDeleteQuery, id); err != nil {
		return errors.Wrap(err, "failed to delete church")
	}
	return nil
}
