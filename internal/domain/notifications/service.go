package notifications

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("notification not found")
	ErrForbidden    = errors.New("forbidden")
)

// Service expone las operaciones de inbox del usuario. La creación de
// notificaciones no pasa por acá: eso es trabajo del Dispatcher.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// MarkRead marca una notificación propia como leída. Idempotente.
func (s *Service) MarkRead(ctx context.Context, id, actingUserID string) (Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(actingUserID) == "" {
		return Notification{}, ErrInvalidInput
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Notification{}, ErrNotFound
	}
	if n.RecipientUserID != actingUserID {
		return Notification{}, ErrForbidden
	}
	if n.IsRead {
		return n, nil
	}

	if err := s.repo.MarkRead(ctx, id, s.now()); err != nil {
		return Notification{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// MarkAllRead marca todas las notificaciones del usuario. Idempotente;
// devuelve cuántas cambiaron.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.CountUnread(ctx, userID)
}
