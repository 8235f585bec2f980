package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/pathway/domain/entities/progress"
	"github.com/gracewave/gracewave/modules/pathway/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

const (
	progressFindQuery = `
        SELECT
            pr.id,
            pr.member_id,
            pr.step_id,
            pr.completed_at
        FROM pathway_progress pr`

	progressExistsQuery = `SELECT EXISTS (SELECT 1 FROM pathway_progress WHERE member_id = $1 AND step_id = $2)`

	progressInsertQuery = `
        INSERT INTO pathway_progress (id, member_id, step_id, completed_at)
        VALUES ($1, $2, $3, $4)`

	progressCountByStepQuery = `
        SELECT s.id, COUNT(DISTINCT pr.member_id)
        FROM pathway_steps s
        LEFT JOIN pathway_progress pr ON pr.step_id = s.id
        WHERE s.pathway_id = $1
        GROUP BY s.id`

	progressCountParticipantsQuery = `
        SELECT COUNT(DISTINCT pr.member_id)
        FROM pathway_progress pr
        JOIN pathway_steps s ON pr.step_id = s.id
        WHERE s.pathway_id = $1`

	progressDeleteByMemberQuery = `DELETE FROM pathway_progress WHERE member_id = $1`
)

type PgProgressRepository struct{}

func NewProgressRepository() progress.Repository {
	return &PgProgressRepository{}
}

func toDomainProgress(dbProgress *models.Progress) (*progress.Progress, error) {
	id, err := uuid.Parse(dbProgress.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse progress id")
	}
	memberID, err := uuid.Parse(dbProgress.MemberID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse progress member id")
	}
	stepID, err := uuid.Parse(dbProgress.StepID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse progress step id")
	}
	return &progress.Progress{
		ID:          id,
		MemberID:    memberID,
		StepID:      stepID,
		CompletedAt: dbProgress.CompletedAt,
	}, nil
}

func (g *PgProgressRepository) GetByMemberID(ctx context.Context, memberID uuid.UUID) ([]*progress.Progress, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, progressFindQuery+" WHERE pr.member_id = $1 ORDER BY pr.completed_at", memberID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query progress")
	}
	defer rows.Close()

	var records []*progress.Progress
	for rows.Next() {
		var p models.Progress
		if err := rows.Scan(&p.ID, &p.MemberID, &p.StepID, &p.CompletedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan progress row")
		}
		entity, err := toDomainProgress(&p)
		if err != nil {
			return nil, err
		}
		records = append(records, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate progress rows")
	}
	return records, nil
}

func (g *PgProgressRepository) Exists(ctx context.Context, memberID, stepID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	var exists bool
	if err := tx.QueryRow(ctx, progressExistsQuery, memberID.String(), stepID.String()).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check progress existence")
	}
	return exists, nil
}

func (g *PgProgressRepository) Create(ctx context.Context, entity *progress.Progress) (*progress.Progress, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(
		ctx,
		progressInsertQuery,
		entity.ID.String(),
		entity.MemberID.String(),
		entity.StepID.String(),
		entity.CompletedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert progress")
	}
	return entity, nil
}

func (g *PgProgressRepository) CountByStep(ctx context.Context, pathwayID uuid.UUID) (map[uuid.UUID]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, progressCountByStepQuery, pathwayID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query progress counts")
	}
	defer rows.Close()

	out := map[uuid.UUID]int64{}
	for rows.Next() {
		var (
			stepID string
			count  int64
		)
		if err := rows.Scan(&stepID, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan progress count row")
		}
		id, err := uuid.Parse(stepID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse step id")
		}
		out[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate progress count rows")
	}
	return out, nil
}

func (g *PgProgressRepository) CountParticipants(ctx context.Context, pathwayID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, progressCountParticipantsQuery, pathwayID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count pathway participants")
	}
	return count, nil
}

func (g *PgProgressRepository) DeleteByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, progressDeleteByMemberQuery, memberID.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete progress by member id")
	}
	return tag.RowsAffected(), nil
}
