package notifications

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)

	// ListByUser: más reciente primero.
	ListByUser(ctx context.Context, userID string) ([]Notification, error)

	// MarkRead es idempotente a nivel storage (marcar leída una ya leída
	// no es error).
	MarkRead(ctx context.Context, id string, now time.Time) error

	// MarkAllRead devuelve cuántas notificaciones cambiaron.
	MarkAllRead(ctx context.Context, userID string, now time.Time) (int, error)

	CountUnread(ctx context.Context, userID string) (int, error)
}
