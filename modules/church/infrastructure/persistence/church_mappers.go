package persistence

import (
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/church/domain/aggregates/church"
	"github.com/gracewave/gracewave/modules/church/domain/entities/campus"
	"github.com/gracewave/gracewave/modules/church/domain/entities/member"
	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence/models"
)

func ToDomainChurch(dbChurch *models.Church) church.Church {
	opts := []church.Option{
		church.WithActive(dbChurch.Active),
		church.WithCreatedAt(dbChurch.CreatedAt),
		church.WithUpdatedAt(dbChurch.UpdatedAt),
	}
	if dbChurch.Description.Valid {
		opts = append(opts, church.WithDescription(dbChurch.Description.String))
	}
	return church.New(dbChurch.ID, dbChurch.Name, opts...)
}

func toDBChurch(entity church.Church) *models.Church {
	return &models.Church{
		ID:          entity.ID(),
		Name:        entity.Name(),
		Description: nullString(entity.Description()),
		Active:      entity.Active(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}
}

func ToDomainCampus(dbCampus *models.Campus) (*campus.Campus, error) {
	id, err := uuid.Parse(dbCampus.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse campus id")
	}
	out := &campus.Campus{
		ID:        id,
		ChurchID:  dbCampus.ChurchID,
		Name:      dbCampus.Name,
		Active:    dbCampus.Active,
		CreatedAt: dbCampus.CreatedAt,
		UpdatedAt: dbCampus.UpdatedAt,
	}
	if dbCampus.Address.Valid {
		out.Address = dbCampus.Address.String
	}
	return out, nil
}

func toDBCampus(entity *campus.Campus) *models.Campus {
	return &models.Campus{
		ID:        entity.ID.String(),
		ChurchID:  entity.ChurchID,
		Name:      entity.Name,
		Address:   nullString(entity.Address),
		Active:    entity.Active,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func ToDomainMember(dbMember *models.Member) (*member.Member, error) {
	id, err := uuid.Parse(dbMember.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse member id")
	}
	userID, err := uuid.Parse(dbMember.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse member user id")
	}
	role, err := member.NewRole(dbMember.Role)
	if err != nil {
		return nil, err
	}
	out := &member.Member{
		ID:        id,
		UserID:    userID,
		ChurchID:  dbMember.ChurchID,
		Role:      role,
		JoinedAt:  dbMember.JoinedAt,
		CreatedAt: dbMember.CreatedAt,
		UpdatedAt: dbMember.UpdatedAt,
	}
	if dbMember.CampusID.Valid {
		campusID, err := uuid.Parse(dbMember.CampusID.String)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse member campus id")
		}
		out.CampusID = uuid.NullUUID{UUID: campusID, Valid: true}
	}
	return out, nil
}

func toDBMember(entity *member.Member) *models.Member {
	out := &models.Member{
		ID:        entity.ID.String(),
		UserID:    entity.UserID.String(),
		ChurchID:  entity.ChurchID,
		Role:      string(entity.Role),
		JoinedAt:  entity.JoinedAt,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
	if entity.CampusID.Valid {
		out.CampusID = sql.NullString{String: entity.CampusID.UUID.String(), Valid: true}
	}
	return out
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
