package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")

	// ErrDuplicateActive: ya existe un reporte de pérdida activo/matched
	// para la misma mascota del mismo dueño.
	ErrDuplicateActive = errors.New("an active lost report already exists for this pet")
)

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

type CreateLostInput struct {
	PetName          string
	PetType          string
	Breed            string
	Color            string
	Size             string
	Description      string
	LastSeenLocation string
	LastSeenDate     time.Time
}

type CreateFoundInput struct {
	PetType       string
	Breed         string
	Color         string
	Size          string
	Description   string
	LocationFound string
	DateFound     time.Time
	ContactEmail  string
	ContactPhone  string
}

func (s *Service) CreateLost(ctx context.Context, ownerUserID string, in CreateLostInput) (LostReport, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return LostReport{}, ErrInvalidInput
	}
	petType, err := normalizePetType(in.PetType)
	if err != nil {
		return LostReport{}, err
	}
	size, err := normalizeSize(in.Size)
	if err != nil {
		return LostReport{}, err
	}
	if strings.TrimSpace(in.PetName) == "" {
		return LostReport{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.LastSeenLocation) == "" || in.LastSeenDate.IsZero() {
		return LostReport{}, ErrInvalidInput
	}

	// Invariante: un solo reporte activo/matched por (owner, mascota).
	existing, err := s.repo.ListLost(ctx, ListFilter{OwnerUserID: ownerUserID})
	if err != nil {
		return LostReport{}, err
	}
	for _, r := range existing {
		if r.Status == StatusResolved {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(r.PetName), strings.TrimSpace(in.PetName)) && r.PetType == petType {
			return LostReport{}, ErrDuplicateActive
		}
	}

	now := s.now()
	rep := LostReport{
		ID:               uuid.NewString(),
		OwnerUserID:      ownerUserID,
		PetName:          strings.TrimSpace(in.PetName),
		PetType:          petType,
		Breed:            strings.TrimSpace(in.Breed),
		Color:            strings.TrimSpace(in.Color),
		Size:             size,
		Description:      strings.TrimSpace(in.Description),
		LastSeenLocation: strings.TrimSpace(in.LastSeenLocation),
		LastSeenDate:     dateOnly(in.LastSeenDate),
		Status:           StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.CreateLost(ctx, rep); err != nil {
		return LostReport{}, err
	}
	return rep, nil
}

func (s *Service) CreateFound(ctx context.Context, reporterUserID string, in CreateFoundInput) (FoundReport, error) {
	reporterUserID = strings.TrimSpace(reporterUserID)
	if reporterUserID == "" {
		return FoundReport{}, ErrInvalidInput
	}
	petType, err := normalizePetType(in.PetType)
	if err != nil {
		return FoundReport{}, err
	}
	size, err := normalizeSize(in.Size)
	if err != nil {
		return FoundReport{}, err
	}
	if strings.TrimSpace(in.LocationFound) == "" || in.DateFound.IsZero() {
		return FoundReport{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.ContactEmail) == "" && strings.TrimSpace(in.ContactPhone) == "" {
		return FoundReport{}, ErrInvalidInput
	}

	now := s.now()
	rep := FoundReport{
		ID:             uuid.NewString(),
		ReporterUserID: reporterUserID,
		PetType:        petType,
		Breed:          strings.TrimSpace(in.Breed),
		Color:          strings.TrimSpace(in.Color),
		Size:           size,
		Description:    strings.TrimSpace(in.Description),
		LocationFound:  strings.TrimSpace(in.LocationFound),
		DateFound:      dateOnly(in.DateFound),
		ContactEmail:   strings.TrimSpace(in.ContactEmail),
		ContactPhone:   strings.TrimSpace(in.ContactPhone),
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateFound(ctx, rep); err != nil {
		return FoundReport{}, err
	}
	return rep, nil
}

func (s *Service) GetLost(ctx context.Context, id string) (LostReport, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return LostReport{}, ErrInvalidInput
	}
	return s.repo.GetLost(ctx, id)
}

func (s *Service) GetFound(ctx context.Context, id string) (FoundReport, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return FoundReport{}, ErrInvalidInput
	}
	return s.repo.GetFound(ctx, id)
}

func (s *Service) ListLost(ctx context.Context, filter ListFilter) ([]LostReport, error) {
	return s.repo.ListLost(ctx, filter)
}

func (s *Service) ListFound(ctx context.Context, filter ListFilter) ([]FoundReport, error) {
	return s.repo.ListFound(ctx, filter)
}

// ResolveLost marca el reporte como resolved (acción directa del owner,
// p.ej. "mi mascota volvió sola"). Idempotente.
func (s *Service) ResolveLost(ctx context.Context, id, actingUserID string) (LostReport, error) {
	rep, err := s.GetLost(ctx, id)
	if err != nil {
		return LostReport{}, err
	}
	if rep.OwnerUserID != actingUserID {
		return LostReport{}, ErrForbidden
	}
	if rep.Status == StatusResolved {
		return rep, nil
	}

	now := s.now()
	if err := s.repo.UpdateLostStatus(ctx, id, StatusResolved, now); err != nil {
		return LostReport{}, err
	}
	return s.GetLost(ctx, id)
}

// ResolveFound es el equivalente para reportes de mascota encontrada.
func (s *Service) ResolveFound(ctx context.Context, id, actingUserID string) (FoundReport, error) {
	rep, err := s.GetFound(ctx, id)
	if err != nil {
		return FoundReport{}, err
	}
	if rep.ReporterUserID != actingUserID {
		return FoundReport{}, ErrForbidden
	}
	if rep.Status == StatusResolved {
		return rep, nil
	}

	now := s.now()
	if err := s.repo.UpdateFoundStatus(ctx, id, StatusResolved, now); err != nil {
		return FoundReport{}, err
	}
	return s.GetFound(ctx, id)
}

func normalizePetType(raw string) (PetType, error) {
	t := PetType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case PetTypeDog, PetTypeCat, PetTypeBird, PetTypeRabbit, PetTypeHamster, PetTypeOther:
		return t, nil
	default:
		return "", ErrInvalidInput
	}
}

func normalizeSize(raw string) (Size, error) {
	sz := Size(strings.ToLower(strings.TrimSpace(raw)))
	switch sz {
	case "":
		return "", nil // opcional
	case SizeSmall, SizeMedium, SizeLarge:
		return sz, nil
	default:
		return "", ErrInvalidInput
	}
}

// dateOnly trunca a medianoche UTC; las fechas de reporte son DATE, no timestamp.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
