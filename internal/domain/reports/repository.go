package reports

import (
	"context"
	"time"
)

// ListFilter filtra listados de reportes.
// OwnerUserID aplica a lost, ReporterUserID a found.
type ListFilter struct {
	Status         Status
	OwnerUserID    string
	ReporterUserID string
	PetType        PetType
	Limit          int
}

type Repository interface {
	CreateLost(ctx context.Context, rep LostReport) error
	CreateFound(ctx context.Context, rep FoundReport) error

	GetLost(ctx context.Context, id string) (LostReport, error)
	GetFound(ctx context.Context, id string) (FoundReport, error)

	ListLost(ctx context.Context, filter ListFilter) ([]LostReport, error)
	ListFound(ctx context.Context, filter ListFilter) ([]FoundReport, error)

	// UpdateLostStatus/UpdateFoundStatus mutan solo el campo status
	// (y resolved_at cuando status=resolved). El engine nunca borra reportes.
	UpdateLostStatus(ctx context.Context, id string, status Status, now time.Time) error
	UpdateFoundStatus(ctx context.Context, id string, status Status, now time.Time) error
}
