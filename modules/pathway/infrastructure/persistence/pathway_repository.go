package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/pathway/domain/entities/pathway"
	"github.com/gracewave/gracewave/modules/pathway/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

var (
	ErrPathwayNotFound = errors.New("pathway not found")
	ErrStepNotFound    = errors.New("step not found")
)

const (
	pathwayFindQuery = `
        SELECT
            p.id,
            p.church_id,
            p.name,
            p.description,
            p.active,
            p.created_at,
            p.updated_at
        FROM pathways p`

	pathwayInsertQuery = `
        INSERT INTO pathways (id, church_id, name, description, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	pathwayUpdateQuery = `
        UPDATE pathways
        SET name = $2,
            description = $3,
            active = $4,
            updated_at = $5
        WHERE id = $1`

	pathwayDeleteQuery = `DELETE FROM pathways WHERE id = $1`

	stepFindQuery = `
        SELECT
            s.id,
            s.pathway_id,
            s.name,
            s.sort_order,
            s.created_at,
            s.updated_at
        FROM pathway_steps s`

	stepInsertQuery = `
        INSERT INTO pathway_steps (id, pathway_id, name, sort_order, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	stepDeleteQuery = `DELETE FROM pathway_steps WHERE id = $1`
)

type PgPathwayRepository struct{}

func NewPathwayRepository() pathway.Repository {
	return &PgPathwayRepository{}
}

func toDomainPathway(dbPathway *models.Pathway) (*pathway.Pathway, error) {
	id, err := uuid.Parse(dbPathway.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse pathway id")
	}
	out := &pathway.Pathway{
		ID:        id,
		ChurchID:  dbPathway.ChurchID,
		Name:      dbPathway.Name,
		Active:    dbPathway.Active,
		CreatedAt: dbPathway.CreatedAt,
		UpdatedAt: dbPathway.UpdatedAt,
	}
	if dbPathway.Description.Valid {
		out.Description = dbPathway.Description.String
	}
	return out, nil
}

func toDomainStep(dbStep *models.Step) (*pathway.Step, error) {
	id, err := uuid.Parse(dbStep.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse step id")
	}
	pathwayID, err := uuid.Parse(dbStep.PathwayID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse step pathway id")
	}
	return &pathway.Step{
		ID:        id,
		PathwayID: pathwayID,
		Name:      dbStep.Name,
		Order:     dbStep.SortOrder,
		CreatedAt: dbStep.CreatedAt,
		UpdatedAt: dbStep.UpdatedAt,
	}, nil
}

func (g *PgPathwayRepository) queryPathways(ctx context.Context, query string, args ...interface{}) ([]*pathway.Pathway, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query pathways")
	}
	defer rows.Close()

	var pathways []*pathway.Pathway
	for rows.Next() {
		var p models.Pathway
		if err := rows.Scan(
			&p.ID,
			&p.ChurchID,
			&p.Name,
			&p.Description,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan pathway row")
		}
		entity, err := toDomainPathway(&p)
		if err != nil {
			return nil, err
		}
		pathways = append(pathways, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate pathway rows")
	}
	return pathways, nil
}

func (g *PgPathwayRepository) GetByID(ctx context.Context, id uuid.UUID) (*pathway.Pathway, error) {
	pathways, err := g.queryPathways(ctx, pathwayFindQuery+" WHERE p.id = $1", id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pathway by id")
	}
	if len(pathways) == 0 {
		return nil, ErrPathwayNotFound
	}
	return pathways[0], nil
}

func (g *PgPathwayRepository) GetByChurchID(ctx context.Context, churchID string) ([]*pathway.Pathway, error) {
	pathways, err := g.queryPathways(ctx, pathwayFindQuery+" WHERE p.church_id = $1 ORDER BY p.created_at", churchID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pathways by church id")
	}
	return pathways, nil
}

func (g *PgPathwayRepository) Create(ctx context.Context, entity *pathway.Pathway) (*pathway.Pathway, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var description interface{}
	if entity.Description != "" {
		description = entity.Description
	}
	if _, err := tx.Exec(
		ctx,
		pathwayInsertQuery,
		entity.ID.String(),
		entity.ChurchID,
		entity.Name,
		description,
		entity.Active,
		entity.CreatedAt,
		entity.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert pathway")
	}
	return g.GetByID(ctx, entity.ID)
}

func (g *PgPathwayRepository) Update(ctx context.Context, entity *pathway.Pathway) (*pathway.Pathway, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var description interface{}
	if entity.Description != "" {
		description = entity.Description
	}
	if _, err := tx.Exec(
		ctx,
		pathwayUpdateQuery,
		entity.ID.String(),
		entity.Name,
		description,
		entity.Active,
		entity.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update pathway")
	}
	return g.GetByID(ctx, entity.ID)
}

func (g *PgPathwayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, pathwayDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete pathway")
	}
	return nil
}

func (g *PgPathwayRepository) GetSteps(ctx context.Context, pathwayID uuid.UUID) ([]*pathway.Step, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, stepFindQuery+" WHERE s.pathway_id = $1 ORDER BY s.sort_order", pathwayID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query steps")
	}
	defer rows.Close()

	var steps []*pathway.Step
	for rows.Next() {
		var s models.Step
		if err := rows.Scan(
			&s.ID,
			&s.PathwayID,
			&s.Name,
			&s.SortOrder,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan step row")
		}
		entity, err := toDomainStep(&s)
		if err != nil {
			return nil, err
		}
		steps = append(steps, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate step rows")
	}
	return steps, nil
}

func (g *PgPathwayRepository) GetStepByID(ctx context.Context, id uuid.UUID) (*pathway.Step, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var s models.Step
	if err := tx.QueryRow(ctx, stepFindQuery+" WHERE s.id = $1", id.String()).Scan(
		&s.ID,
		&s.PathwayID,
		&s.Name,
		&s.SortOrder,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, ErrStepNotFound
	}
	return toDomainStep(&s)
}

func (g *PgPathwayRepository) CreateStep(ctx context.Context, entity *pathway.Step) (*pathway.Step, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(
		ctx,
		stepInsertQuery,
		entity.ID.String(),
		entity.PathwayID.String(),
		entity.Name,
		entity.Order,
		entity.CreatedAt,
		entity.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert step")
	}
	return g.GetStepByID(ctx, entity.ID)
}

func (g *PgPathwayRepository) DeleteStep(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, stepDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete step")
	}
	return nil
}
