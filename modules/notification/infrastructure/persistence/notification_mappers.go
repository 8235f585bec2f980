package persistence

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/notification/domain/entities/notification"
	"github.com/gracewave/gracewave/modules/notification/infrastructure/persistence/models"
)

func ToDomainNotification(dbRow *models.Notification) (*notification.Notification, error) {
	id, err := uuid.Parse(dbRow.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse notification id")
	}
	userID, err := uuid.Parse(dbRow.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse notification user id")
	}
	return &notification.Notification{
		ID:        id,
		UserID:    userID,
		Title:     dbRow.Title,
		Body:      dbRow.Body,
		Read:      dbRow.Read,
		CreatedAt: dbRow.CreatedAt,
	}, nil
}

func toDBNotification(entity *notification.Notification) *models.Notification {
	return &models.Notification{
		ID:        entity.ID.String(),
		UserID:    entity.UserID.String(),
		Title:     entity.Title,
		Body:      entity.Body,
		Read:      entity.Read,
		CreatedAt: entity.CreatedAt,
	}
}
