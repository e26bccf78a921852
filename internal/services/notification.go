package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
	DefaultNotificationTTL   = 30 * 24 * time.Hour
)

type NotificationListParams struct {
	Limit      int
	UnreadOnly bool
	Before     *time.Time
}

// NotificationService is the postgres-backed history of delivered
// friend-request notifications.
type NotificationService struct {
	db        DBConn
	retention time.Duration
}

func NewNotificationService(db DBConn, retention time.Duration) *NotificationService {
	if retention <= 0 {
		retention = DefaultNotificationTTL
	}
	return &NotificationService{db: db, retention: retention}
}

// Record stores rec. Recording the same request twice for a user is a no-op.
func (s *NotificationService) Record(ctx context.Context, rec *models.NotificationRecord) error {
	if rec.UserID == "" {
		return ErrMissingUserID
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO notification_log (id, user_id, kind, request_id, actor_id, actor_name, title, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, request_id) DO NOTHING`,
		rec.ID, rec.UserID, string(rec.Kind), rec.RequestID, rec.ActorID, rec.ActorName, rec.Title, rec.Body, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, params NotificationListParams) ([]models.NotificationRecord, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	query := `SELECT id, user_id, kind, request_id, actor_id, actor_name, title, body, read_at, created_at
		FROM notification_log
		WHERE user_id = $1`
	args := []any{userID}
	if params.UnreadOnly {
		query += " AND read_at IS NULL"
	}
	if params.Before != nil {
		args = append(args, *params.Before)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	out := []models.NotificationRecord{}
	for rows.Next() {
		var rec models.NotificationRecord
		var kind string
		if err := rows.Scan(&rec.ID, &rec.UserID, &kind, &rec.RequestID, &rec.ActorID, &rec.ActorName,
			&rec.Title, &rec.Body, &rec.ReadAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		rec.Kind = models.NotificationKind(kind)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE notification_log SET read_at = NOW() WHERE id = $1 AND user_id = $2 AND read_at IS NULL",
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx,
		"UPDATE notification_log SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL",
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notification_log WHERE user_id = $1 AND read_at IS NULL",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// CleanupOld deletes entries older than the retention window.
func (s *NotificationService) CleanupOld(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	tag, err := s.db.Exec(ctx, "DELETE FROM notification_log WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
