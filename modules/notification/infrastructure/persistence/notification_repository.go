package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/notification/domain/entities/notification"
	"github.com/gracewave/gracewave/modules/notification/infrastructure/persistence/models"
	"github.com/gracewave/gracewave/pkg/composables"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

const (
	notificationFindQuery = `
        SELECT
            n.id,
            n.user_id,
            n.title,
            n.body,
            n.read,
            n.created_at
        FROM notifications n`

	notificationCountUnreadQuery = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`

	notificationInsertQuery = `
        INSERT INTO notifications (id, user_id, title, body, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	notificationMarkReadQuery = `UPDATE notifications SET read = TRUE WHERE id = $1`

	notificationMarkAllReadQuery = `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`
)

type PgNotificationRepository struct{}

func NewNotificationRepository() notification.Repository {
	return &PgNotificationRepository{}
}

func (g *PgNotificationRepository) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query notifications")
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Body,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan notification row")
		}
		entity, err := ToDomainNotification(&n)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate notification rows")
	}
	return notifications, nil
}

func (g *PgNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	notifications, err := g.queryNotifications(ctx, notificationFindQuery+" WHERE n.id = $1", id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get notification by id")
	}
	if len(notifications) == 0 {
		return nil, ErrNotificationNotFound
	}
	return notifications[0], nil
}

func (g *PgNotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	notifications, err := g.queryNotifications(ctx, notificationFindQuery+" WHERE n.user_id = $1 ORDER BY n.created_at DESC", userID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get notifications by user id")
	}
	return notifications, nil
}

func (g *PgNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, notificationCountUnreadQuery, userID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count unread notifications")
	}
	return count, nil
}

func (g *PgNotificationRepository) Create(ctx context.Context, entity *notification.Notification) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	dbNotification := toDBNotification(entity)
	if _, err := tx.Exec(
		ctx,
		notificationInsertQuery,
		dbNotification.ID,
		dbNotification.UserID,
		dbNotification.Title,
		dbNotification.Body,
		dbNotification.Read,
		dbNotification.CreatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert notification")
	}
	return g.GetByID(ctx, entity.ID)
}

func (g *PgNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, notificationMarkReadQuery, id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotificationNotFound
	}
	return g.GetByID(ctx, id)
}

func (g *PgNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, notificationMarkAllReadQuery, userID.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to mark notifications read")
	}
	return tag.RowsAffected(), nil
}
