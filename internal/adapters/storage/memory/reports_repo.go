package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-lost-found/internal/domain/reports"
)

// ReportsRepo es el store in-memory para dev/tests. El repo de matches lo
// referencia directamente para aplicar los cambios de estado de los reportes.
type ReportsRepo struct {
	mu    sync.RWMutex
	lost  map[string]reports.LostReport
	found map[string]reports.FoundReport
}

func NewReportsRepo() *ReportsRepo {
	return &ReportsRepo{
		lost:  make(map[string]reports.LostReport),
		found: make(map[string]reports.FoundReport),
	}
}

func (r *ReportsRepo) CreateLost(ctx context.Context, rep reports.LostReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("report id required")
	}
	if _, exists := r.lost[rep.ID]; exists {
		return errors.New("report already exists")
	}
	r.lost[rep.ID] = rep
	return nil
}

func (r *ReportsRepo) CreateFound(ctx context.Context, rep reports.FoundReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("report id required")
	}
	if _, exists := r.found[rep.ID]; exists {
		return errors.New("report already exists")
	}
	r.found[rep.ID] = rep
	return nil
}

func (r *ReportsRepo) GetLost(ctx context.Context, id string) (reports.LostReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.lost[id]
	if !ok {
		return reports.LostReport{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *ReportsRepo) GetFound(ctx context.Context, id string) (reports.FoundReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.found[id]
	if !ok {
		return reports.FoundReport{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *ReportsRepo) ListLost(ctx context.Context, filter reports.ListFilter) ([]reports.LostReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.LostReport, 0)
	for _, rep := range r.lost {
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		if filter.OwnerUserID != "" && rep.OwnerUserID != filter.OwnerUserID {
			continue
		}
		if filter.PetType != "" && rep.PetType != filter.PetType {
			continue
		}
		out = append(out, rep)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ReportsRepo) ListFound(ctx context.Context, filter reports.ListFilter) ([]reports.FoundReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.FoundReport, 0)
	for _, rep := range r.found {
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		if filter.ReporterUserID != "" && rep.ReporterUserID != filter.ReporterUserID {
			continue
		}
		if filter.PetType != "" && rep.PetType != filter.PetType {
			continue
		}
		out = append(out, rep)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ReportsRepo) UpdateLostStatus(ctx context.Context, id string, status reports.Status, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLostStatusLocked(id, status, now)
}

func (r *ReportsRepo) UpdateFoundStatus(ctx context.Context, id string, status reports.Status, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateFoundStatusLocked(id, status, now)
}

// updateLostStatusLocked asume r.mu tomado. Lo usa también el repo de matches
// para mantener match + reportes consistentes bajo su propia transición.
func (r *ReportsRepo) updateLostStatusLocked(id string, status reports.Status, now time.Time) error {
	rep, ok := r.lost[id]
	if !ok {
		return reports.ErrNotFound
	}
	rep.Status = status
	rep.UpdatedAt = now
	if status == reports.StatusResolved && rep.ResolvedAt == nil {
		t := now
		rep.ResolvedAt = &t
	}
	r.lost[id] = rep
	return nil
}

func (r *ReportsRepo) updateFoundStatusLocked(id string, status reports.Status, now time.Time) error {
	rep, ok := r.found[id]
	if !ok {
		return reports.ErrNotFound
	}
	rep.Status = status
	rep.UpdatedAt = now
	if status == reports.StatusResolved && rep.ResolvedAt == nil {
		t := now
		rep.ResolvedAt = &t
	}
	r.found[id] = rep
	return nil
}

// lostOwnerLocked/foundReporterLocked asumen r.mu tomado (al menos en lectura).
func (r *ReportsRepo) lostOwnerLocked(id string) (string, bool) {
	rep, ok := r.lost[id]
	return rep.OwnerUserID, ok
}

func (r *ReportsRepo) foundReporterLocked(id string) (string, bool) {
	rep, ok := r.found[id]
	return rep.ReporterUserID, ok
}
