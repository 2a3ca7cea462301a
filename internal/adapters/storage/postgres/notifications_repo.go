package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pet-lost-found/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `
	id, recipient_user_id, match_id,
	type, title, message,
	is_read, read_at, created_at
`

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, recipient_user_id, match_id,
			type, title, message,
			is_read, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		n.ID,
		n.RecipientUserID,
		toNullString(n.MatchID),
		n.Type,
		n.Title,
		n.Message,
		n.IsRead,
		n.CreatedAt,
	)
	return err
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return notifications.Notification{}, notifications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1
	`, id)

	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	return n, err
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE recipient_user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $2)
		WHERE id = $1
	`, id, now)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, userID string, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $2)
		WHERE recipient_user_id = $1 AND is_read = FALSE
	`, userID, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *NotificationsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_user_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	return count, err
}

func scanNotification(row rowScanner) (notifications.Notification, error) {
	var n notifications.Notification
	var matchID sql.NullString
	var readAt sql.NullTime
	if err := row.Scan(
		&n.ID,
		&n.RecipientUserID,
		&matchID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&readAt,
		&n.CreatedAt,
	); err != nil {
		return notifications.Notification{}, err
	}
	n.MatchID = matchID.String
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return n, nil
}

// match_id es una referencia débil: puede ser NULL.
func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
