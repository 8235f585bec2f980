package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/church/domain/entities/member"
	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

var (
	ErrMemberNotFound = errors.New("member not found")
)

const (
	memberFindQuery = `
        SELECT
            m.id,
            m.user_id,
            m.church_id,
            m.campus_id,
            m.role,
            m.joined_at,
            m.created_at,
            m.updated_at
        FROM church_members m`

	memberCountByChurchQuery = `SELECT COUNT(*) FROM church_members WHERE church_id = $1`

	memberInsertQuery = `
        INSERT INTO church_members (id, user_id, church_id, campus_id, role, joined_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	memberReassignChurchQuery = `UPDATE church_members SET church_id = $2, updated_at = NOW() WHERE church_id = $1`

	memberDeleteQuery = `DELETE FROM church_members WHERE id = $1`

	memberDeleteByUserQuery = `DELETE FROM church_members WHERE user_id = $1`

	memberDeleteByChurchQuery = `DELETE FROM church_members WHERE church_id = $1`
)

type PgMemberRepository struct{}

func NewMemberRepository() member.Repository {
	return &PgMemberRepository{}
}

func (g *PgMemberRepository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]*member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query members")
	}
	defer rows.Close()

	var members []*member.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.ChurchID,
			&m.CampusID,
			&m.Role,
			&m.JoinedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan member row")
		}
		entity, err := ToDomainMember(&m)
		if err != nil {
			return nil, err
		}
		members = append(members, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate member rows")
	}
	return members, nil
}

func (g *PgMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	members, err := g.queryMembers(ctx, memberFindQuery+" WHERE m.id = $1", id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member by id")
	}
	if len(members) == 0 {
		return nil, ErrMemberNotFound
	}
	return members[0], nil
}

func (g *PgMemberRepository) GetByChurchID(ctx context.Context, churchID string) ([]*member.Member, error) {
	members, err := g.queryMembers(ctx, memberFindQuery+" WHERE m.church_id = $1 ORDER BY m.joined_at", churchID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get members by church id")
	}
	return members, nil
}

func (g *PgMemberRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*member.Member, error) {
	members, err := g.queryMembers(ctx, memberFindQuery+" WHERE m.user_id = $1 ORDER BY m.joined_at", userID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get members by user id")
	}
	return members, nil
}

func (g *PgMemberRepository) CountByChurchID(ctx context.Context, churchID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, memberCountByChurchQuery, churchID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count members by church id")
	}
	return count, nil
}

func (g *PgMemberRepository) Create(ctx context.Context, entity *member.Member) (*member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbMember := toDBMember(entity)
	if _, err := tx.Exec(
		ctx,
		memberInsertQuery,
		dbMember.ID,
		dbMember.UserID,
		dbMember.ChurchID,
		dbMember.CampusID,
		dbMember.Role,
		dbMember.JoinedAt,
		dbMember.CreatedAt,
		dbMember.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert member")
	}
	return g.GetByID(ctx, entity.ID)
}

func (g *PgMemberRepository) ReassignChurch(ctx context.Context, oldID, newID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, memberReassignChurchQuery, oldID, newID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to reassign members to new church id")
	}
	return tag.RowsAffected(), nil
}

func (g *PgMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, memberDeleteQuery, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete member")
	}
	return nil
}

func (g *PgMemberRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, memberDeleteByUserQuery, userID.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete members by user id")
	}
	return tag.RowsAffected(), nil
}

func (g *PgMemberRepository) DeleteByChurchID(ctx context.Context, churchID string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, memberDeleteByChurchQuery, churchID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete members by church id")
	}
	return tag.RowsAffected(), nil
}
