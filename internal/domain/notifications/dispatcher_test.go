package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/platform/logger"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testNotifRepo struct {
	byID       map[string]Notification
	failCreate bool
}

func newTestNotifRepo() *testNotifRepo {
	return &testNotifRepo{byID: map[string]Notification{}}
}

func (r *testNotifRepo) Create(ctx context.Context, n Notification) error {
	if r.failCreate {
		return errors.New("repo: storage down")
	}
	r.byID[n.ID] = n
	return nil
}

func (r *testNotifRepo) GetByID(ctx context.Context, id string) (Notification, error) {
	n, ok := r.byID[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

func (r *testNotifRepo) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	out := make([]Notification, 0)
	for _, n := range r.byID {
		if n.RecipientUserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *testNotifRepo) MarkRead(ctx context.Context, id string, now time.Time) error {
	n, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if n.IsRead {
		return nil
	}
	n.IsRead = true
	t := now
	n.ReadAt = &t
	r.byID[id] = n
	return nil
}

func (r *testNotifRepo) MarkAllRead(ctx context.Context, userID string, now time.Time) (int, error) {
	changed := 0
	for id, n := range r.byID {
		if n.RecipientUserID != userID || n.IsRead {
			continue
		}
		n.IsRead = true
		t := now
		n.ReadAt = &t
		r.byID[id] = n
		changed++
	}
	return changed, nil
}

func (r *testNotifRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.byID {
		if n.RecipientUserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type testReportsRepo struct {
	lost  map[string]reports.LostReport
	found map[string]reports.FoundReport
}

func newTestReportsRepo() *testReportsRepo {
	return &testReportsRepo{
		lost:  map[string]reports.LostReport{},
		found: map[string]reports.FoundReport{},
	}
}

func (r *testReportsRepo) CreateLost(ctx context.Context, rep reports.LostReport) error {
	r.lost[rep.ID] = rep
	return nil
}

func (r *testReportsRepo) CreateFound(ctx context.Context, rep reports.FoundReport) error {
	r.found[rep.ID] = rep
	return nil
}

func (r *testReportsRepo) GetLost(ctx context.Context, id string) (reports.LostReport, error) {
	rep, ok := r.lost[id]
	if !ok {
		return reports.LostReport{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *testReportsRepo) GetFound(ctx context.Context, id string) (reports.FoundReport, error) {
	rep, ok := r.found[id]
	if !ok {
		return reports.FoundReport{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *testReportsRepo) ListLost(ctx context.Context, f reports.ListFilter) ([]reports.LostReport, error) {
	return nil, nil
}

func (r *testReportsRepo) ListFound(ctx context.Context, f reports.ListFilter) ([]reports.FoundReport, error) {
	return nil, nil
}

func (r *testReportsRepo) UpdateLostStatus(ctx context.Context, id string, status reports.Status, now time.Time) error {
	return nil
}

func (r *testReportsRepo) UpdateFoundStatus(ctx context.Context, id string, status reports.Status, now time.Time) error {
	return nil
}

// -------------------------
// Helpers
// -------------------------

func newTestDispatcher() (*Dispatcher, *testNotifRepo, *testReportsRepo) {
	notifRepo := newTestNotifRepo()
	reportsRepo := newTestReportsRepo()
	d := NewDispatcher(notifRepo, reportsRepo, logger.New(logger.Options{Level: logger.Error}))
	d.now = func() time.Time { return time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC) }
	return d, notifRepo, reportsRepo
}

func seedMatch(rr *testReportsRepo, matchID, lostID, foundID, ownerID, finderID string) matching.Match {
	rr.lost[lostID] = reports.LostReport{
		ID:          lostID,
		OwnerUserID: ownerID,
		PetName:     "Rocky",
		PetType:     reports.PetTypeDog,
		Status:      reports.StatusActive,
	}
	rr.found[foundID] = reports.FoundReport{
		ID:             foundID,
		ReporterUserID: finderID,
		PetType:        reports.PetTypeDog,
		LocationFound:  "Prospect Park",
		Status:         reports.StatusActive,
	}
	return matching.Match{
		ID:            matchID,
		LostReportID:  lostID,
		FoundReportID: foundID,
		Score:         87.5,
		Reasons:       []string{"Same pet type: dog"},
		Status:        matching.StatusPending,
	}
}

func byRecipient(ns map[string]Notification, userID string) []Notification {
	out := make([]Notification, 0)
	for _, n := range ns {
		if n.RecipientUserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// -------------------------
// Tests
// -------------------------

func TestDispatcher_MatchCreated_NotifiesBothParties(t *testing.T) {
	d, notifRepo, rr := newTestDispatcher()
	m := seedMatch(rr, "match-1", "lost-1", "found-1", "owner-1", "finder-1")

	d.MatchCreated(context.Background(), m)

	ownerNotifs := byRecipient(notifRepo.byID, "owner-1")
	if len(ownerNotifs) != 1 {
		t.Fatalf("expected 1 notification for owner, got %d", len(ownerNotifs))
	}
	if ownerNotifs[0].Type != TypeMatchFound {
		t.Fatalf("expected match_found, got %s", ownerNotifs[0].Type)
	}
	if !strings.Contains(ownerNotifs[0].Message, "Rocky") {
		t.Fatalf("owner message should mention pet name: %q", ownerNotifs[0].Message)
	}
	if ownerNotifs[0].MatchID != "match-1" {
		t.Fatalf("expected match back-reference, got %q", ownerNotifs[0].MatchID)
	}

	finderNotifs := byRecipient(notifRepo.byID, "finder-1")
	if len(finderNotifs) != 1 {
		t.Fatalf("expected 1 notification for finder, got %d", len(finderNotifs))
	}
}

func TestDispatcher_MatchConfirmed_NotifiesAutoRejectedOnce(t *testing.T) {
	d, notifRepo, rr := newTestDispatcher()
	confirmed := seedMatch(rr, "match-1", "lost-1", "found-1", "owner-1", "finder-1")
	confirmed.Status = matching.StatusConfirmed

	// dos matches auto-rechazados del mismo finder competidor: recibe 1 sola
	rejA := seedMatch(rr, "match-2", "lost-2", "found-2", "owner-2", "finder-2")
	rejB := seedMatch(rr, "match-3", "lost-3", "found-2", "owner-2", "finder-2")
	rejA.Status = matching.StatusRejected
	rejB.Status = matching.StatusRejected

	d.MatchConfirmed(context.Background(), confirmed, []matching.Match{rejA, rejB})

	for _, userID := range []string{"owner-1", "finder-1"} {
		ns := byRecipient(notifRepo.byID, userID)
		if len(ns) != 1 || ns[0].Type != TypeMatchConfirmed {
			t.Fatalf("expected 1 match_confirmed for %s, got %#v", userID, ns)
		}
	}

	// contrapartes de los auto-rechazados, de-duplicadas
	for _, userID := range []string{"owner-2", "finder-2"} {
		ns := byRecipient(notifRepo.byID, userID)
		if len(ns) != 1 || ns[0].Type != TypeMatchRejected {
			t.Fatalf("expected exactly 1 match_rejected for %s, got %d", userID, len(ns))
		}
	}
}

func TestDispatcher_MatchResolved_NotifiesBothParties(t *testing.T) {
	d, notifRepo, rr := newTestDispatcher()
	m := seedMatch(rr, "match-1", "lost-1", "found-1", "owner-1", "finder-1")
	m.Status = matching.StatusResolved

	d.MatchResolved(context.Background(), m)

	for _, userID := range []string{"owner-1", "finder-1"} {
		ns := byRecipient(notifRepo.byID, userID)
		if len(ns) != 1 || ns[0].Type != TypeMatchResolved {
			t.Fatalf("expected 1 match_resolved for %s", userID)
		}
	}
}

func TestDispatcher_DeliveryFailure_IsSwallowed(t *testing.T) {
	d, notifRepo, rr := newTestDispatcher()
	m := seedMatch(rr, "match-1", "lost-1", "found-1", "owner-1", "finder-1")
	notifRepo.failCreate = true

	// no debe panickear ni propagar el error
	d.MatchCreated(context.Background(), m)

	if len(notifRepo.byID) != 0 {
		t.Fatalf("expected no notifications persisted on failure, got %d", len(notifRepo.byID))
	}
}
