package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
)

type pairKey struct {
	lostID  string
	foundID string
}

// MatchesRepo guarda matches en memoria. Las transiciones toman los dos locks
// en orden fijo (matches -> reports) para que el cambio de match y de reportes
// sea atómico frente a otros llamadores.
type MatchesRepo struct {
	mu      sync.RWMutex
	byID    map[string]matching.Match
	byPair  map[pairKey]string
	reports *ReportsRepo
}

func NewMatchesRepo(reportsRepo *ReportsRepo) *MatchesRepo {
	return &MatchesRepo{
		byID:    make(map[string]matching.Match),
		byPair:  make(map[pairKey]string),
		reports: reportsRepo,
	}
}

func (r *MatchesRepo) Upsert(ctx context.Context, m matching.Match) (matching.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return matching.Match{}, false, errors.New("match id required")
	}

	key := pairKey{lostID: m.LostReportID, foundID: m.FoundReportID}
	if existingID, ok := r.byPair[key]; ok {
		existing := r.byID[existingID]
		if existing.Status != matching.StatusPending {
			// settled: inmutable al rescoring
			return existing, false, nil
		}
		existing.Score = m.Score
		existing.Reasons = m.Reasons
		existing.UpdatedAt = m.UpdatedAt
		r.byID[existingID] = existing
		return existing, false, nil
	}

	r.byID[m.ID] = m
	r.byPair[key] = m.ID
	return m, true, nil
}

func (r *MatchesRepo) GetByID(ctx context.Context, id string) (matching.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return matching.Match{}, matching.ErrNotFound
	}
	return m, nil
}

func (r *MatchesRepo) ListByUser(ctx context.Context, userID string) ([]matching.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.reports.mu.RLock()
	defer r.reports.mu.RUnlock()

	out := make([]matching.Match, 0)
	for _, m := range r.byID {
		owner, _ := r.reports.lostOwnerLocked(m.LostReportID)
		reporter, _ := r.reports.foundReporterLocked(m.FoundReportID)
		if owner == userID || reporter == userID {
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MatchesRepo) ExistsForPair(ctx context.Context, lostReportID, foundReportID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byPair[pairKey{lostID: lostReportID, foundID: foundReportID}]
	return ok, nil
}

func (r *MatchesRepo) Confirm(ctx context.Context, matchID string, now time.Time) (matching.ConfirmOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports.mu.Lock()
	defer r.reports.mu.Unlock()

	m, ok := r.byID[matchID]
	if !ok {
		return matching.ConfirmOutcome{}, matching.ErrNotFound
	}
	if m.Status != matching.StatusPending {
		return matching.ConfirmOutcome{}, matching.ErrStateChanged
	}

	m.Status = matching.StatusConfirmed
	m.UpdatedAt = now
	r.byID[matchID] = m

	if err := r.reports.updateLostStatusLocked(m.LostReportID, reports.StatusMatched, now); err != nil {
		return matching.ConfirmOutcome{}, err
	}
	if err := r.reports.updateFoundStatusLocked(m.FoundReportID, reports.StatusMatched, now); err != nil {
		return matching.ConfirmOutcome{}, err
	}

	// Exclusividad: los demás pending sobre cualquiera de los dos reportes
	// quedan rejected en la misma operación.
	autoRejected := make([]matching.Match, 0)
	for id, other := range r.byID {
		if id == matchID || other.Status != matching.StatusPending {
			continue
		}
		if other.LostReportID != m.LostReportID && other.FoundReportID != m.FoundReportID {
			continue
		}
		other.Status = matching.StatusRejected
		other.UpdatedAt = now
		r.byID[id] = other
		autoRejected = append(autoRejected, other)
	}

	sort.Slice(autoRejected, func(i, j int) bool {
		return autoRejected[i].CreatedAt.Before(autoRejected[j].CreatedAt)
	})
	return matching.ConfirmOutcome{Match: m, AutoRejected: autoRejected}, nil
}

func (r *MatchesRepo) Reject(ctx context.Context, matchID string, now time.Time) (matching.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[matchID]
	if !ok {
		return matching.Match{}, matching.ErrNotFound
	}
	if m.Status != matching.StatusPending {
		return matching.Match{}, matching.ErrStateChanged
	}

	m.Status = matching.StatusRejected
	m.UpdatedAt = now
	r.byID[matchID] = m
	return m, nil
}

func (r *MatchesRepo) Resolve(ctx context.Context, matchID string, now time.Time) (matching.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports.mu.Lock()
	defer r.reports.mu.Unlock()

	m, ok := r.byID[matchID]
	if !ok {
		return matching.Match{}, matching.ErrNotFound
	}
	if m.Status != matching.StatusConfirmed {
		return matching.Match{}, matching.ErrStateChanged
	}

	m.Status = matching.StatusResolved
	m.UpdatedAt = now
	t := now
	m.ResolvedAt = &t
	r.byID[matchID] = m

	if err := r.reports.updateLostStatusLocked(m.LostReportID, reports.StatusResolved, now); err != nil {
		return matching.Match{}, err
	}
	if err := r.reports.updateFoundStatusLocked(m.FoundReportID, reports.StatusResolved, now); err != nil {
		return matching.Match{}, err
	}
	return m, nil
}
