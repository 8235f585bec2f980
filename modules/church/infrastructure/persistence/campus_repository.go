package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/church/domain/entities/campus"
	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

var (
	ErrCampusNotFound = errors.New("campus not found")
)

const (
	campusFindQuery = `
        SELECT
            ca.id,
            ca.church_id,
            ca.name,
            ca.address,
            ca.active,
            ca.created_at,
            ca.updated_at
        FROM campuses ca`

	campusCountByChurchQuery = `SELECT COUNT(*) FROM campuses WHERE church_id = $1`

	campusInsertQuery = `
        INSERT INTO campuses (id, church_id, name, address, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	campusUpdateQuery = `
        UPDATE campuses
        SET name = $2,
            address = $3,
            active = $4,
            updated_at = $5
        WHERE id = $1`

	campusReassignChurchQuery = `UPDATE campuses SET church_id = $2, updated_at = NOW() WHERE church_id = $1`

	campusDeleteQuery = `DELETE FROM campuses WHERE id = $1`

	campusDeleteByChurchQuery = `DELETE FROM campuses WHERE church_id = $1`
)

type PgCampusRepository struct{}

func NewCampusRepository() campus.Repository {
	return &PgCampusRepository{}
}

func (g *PgCampusRepository) queryCampuses(ctx context.Context, query string, args ...interface{}) ([]*campus.Campus, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query campuses")
	}
	defer rows.Close()

	var campuses []*campus.Campus
	for rows.Next() {
		var c models.Campus
		if err := rows.Scan(
			&c.ID,
			&c.ChurchID,
			&c.Name,
			&c.Address,
			&c.Active,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan campus row")
		}
		entity, err := ToDomainCampus(&c)
		if err != nil {
			return nil, err
		}
		campuses = append(campuses, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate campus rows")
	}
	return campuses, nil
}

func (g *PgCampusRepository) GetByID(ctx context.Context, id uuid.UUID) (*campus.Campus, error) {
	campuses, err := g.queryCampuses(ctx, campusFindQuery+" WHERE ca.id = $1", id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get campus by id")
	}
	if len(campuses) == 0 {
		return nil, ErrCampusNotFound
	}
	return campuses[0], nil
}

func (g *PgCampusRepository) GetByChurchID(ctx context.Context, churchID string) ([]*campus.Campus, error) {
	campuses, err := g.queryCampuses(ctx, campusFindQuery+" WHERE ca.church_id = $1 ORDER BY ca.created_at", churchID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get campuses by church id")
	}
	return campuses, nil
}

func (g *PgCampusRepository) CountByChurchID(ctx context.Context, churchID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, campusCountByChurchQuery, churchID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count campuses by church id")
	}
	return count, nil
}

func (g *PgCampusRepository) Create(ctx context.Context, entity *campus.Campus) (*campus.Campus, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbCampus := toDBCampus(entity)
	if _, err := tx.Exec(
		ctx,
		campusInsertQuery,
		dbCampus.ID,
		dbCampus.ChurchID,
		dbCampus.Name,
		dbCampus.Address,
		dbCampus.Active,
		dbCampus.CreatedAt,
		dbCampus.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert campus")
	}
	return g.GetByID(ctx, entity.ID)
}

func (g *PgCampusRepository) Update(ctx context.Context, entity *campus.Campus) (*campus.Campus, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbCampus := toDBCampus(entity)
	if _, err := tx.Exec(
		ctx,
		campusUpdateQuery,
		dbCampus.ID,
		dbCampus.Name,
		dbCampus.Address,
		dbCampus.Active,
		dbCampus.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update campus")
	}
	return g.GetByID(ctx, entity.ID)
}

func (g *PgCampusRepository) ReassignChurch(ctx context.Context, oldID, newID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, campusReassignChurchQuery, oldID, newID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to reassign campuses to new church id")
	}
	return tag.RowsAffected(), nil
}

func (g *PgCampusRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, campusDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete campus")
	}
	return nil
}

func (g *PgCampusRepository) DeleteByChurchID(ctx context.Context, churchID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, campusDeleteByChurchQuery, churchID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete campuses by church id")
	}
	return tag.RowsAffected(), nil
}
