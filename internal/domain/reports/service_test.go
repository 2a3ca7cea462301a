package reports

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	lost  map[string]LostReport
	found map[string]FoundReport
}

func newTestRepo() *testRepo {
	return &testRepo{
		lost:  map[string]LostReport{},
		found: map[string]FoundReport{},
	}
}

func (r *testRepo) CreateLost(ctx context.Context, rep LostReport) error {
	if rep.ID == "" {
		return errors.New("repo: id required")
	}
	r.lost[rep.ID] = rep
	return nil
}

func (r *testRepo) CreateFound(ctx context.Context, rep FoundReport) error {
	if rep.ID == "" {
		return errors.New("repo: id required")
	}
	r.found[rep.ID] = rep
	return nil
}

func (r *testRepo) GetLost(ctx context.Context, id string) (LostReport, error) {
	rep, ok := r.lost[id]
	if !ok {
		return LostReport{}, ErrNotFound
	}
	return rep, nil
}

func (r *testRepo) GetFound(ctx context.Context, id string) (FoundReport, error) {
	rep, ok := r.found[id]
	if !ok {
		return FoundReport{}, ErrNotFound
	}
	return rep, nil
}

func (r *testRepo) ListLost(ctx context.Context, f ListFilter) ([]LostReport, error) {
	out := make([]LostReport, 0)
	for _, rep := range r.lost {
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		if f.OwnerUserID != "" && rep.OwnerUserID != f.OwnerUserID {
			continue
		}
		if f.PetType != "" && rep.PetType != f.PetType {
			continue
		}
		out = append(out, rep)
	}
	return out, nil
}

func (r *testRepo) ListFound(ctx context.Context, f ListFilter) ([]FoundReport, error) {
	out := make([]FoundReport, 0)
	for _, rep := range r.found {
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		if f.ReporterUserID != "" && rep.ReporterUserID != f.ReporterUserID {
			continue
		}
		out = append(out, rep)
	}
	return out, nil
}

func (r *testRepo) UpdateLostStatus(ctx context.Context, id string, status Status, now time.Time) error {
	rep, ok := r.lost[id]
	if !ok {
		return ErrNotFound
	}
	rep.Status = status
	rep.UpdatedAt = now
	if status == StatusResolved && rep.ResolvedAt == nil {
		t := now
		rep.ResolvedAt = &t
	}
	r.lost[id] = rep
	return nil
}

func (r *testRepo) UpdateFoundStatus(ctx context.Context, id string, status Status, now time.Time) error {
	rep, ok := r.found[id]
	if !ok {
		return ErrNotFound
	}
	rep.Status = status
	rep.UpdatedAt = now
	if status == StatusResolved && rep.ResolvedAt == nil {
		t := now
		rep.ResolvedAt = &t
	}
	r.found[id] = rep
	return nil
}

// -------------------------
// Tests
// -------------------------

func validLostInput() CreateLostInput {
	return CreateLostInput{
		PetName:          "Rocky",
		PetType:          "dog",
		Breed:            "beagle",
		Color:            "brown",
		Size:             "medium",
		LastSeenLocation: "Prospect Park",
		LastSeenDate:     time.Date(2025, 8, 1, 15, 30, 0, 0, time.UTC),
	}
}

func validFoundInput() CreateFoundInput {
	return CreateFoundInput{
		PetType:       "dog",
		Breed:         "beagle",
		LocationFound: "Prospect Park",
		DateFound:     time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC),
		ContactEmail:  "finder@example.com",
	}
}

func TestService_CreateLost_NormalizesAndTruncatesDate(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	in := validLostInput()
	in.PetType = "  DOG "
	in.Size = "MEDIUM"

	rep, err := svc.CreateLost(context.Background(), "owner-1", in)
	if err != nil {
		t.Fatalf("CreateLost error: %v", err)
	}
	if rep.Status != StatusActive {
		t.Fatalf("expected active, got %s", rep.Status)
	}
	if rep.PetType != PetTypeDog || rep.Size != SizeMedium {
		t.Fatalf("expected normalized type/size, got %s/%s", rep.PetType, rep.Size)
	}
	// la fecha es DATE: debe quedar a medianoche UTC
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if !rep.LastSeenDate.Equal(want) {
		t.Fatalf("expected truncated date %v, got %v", want, rep.LastSeenDate)
	}
	if rep.CreatedAt != now || rep.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt = now")
	}
}

func TestService_CreateLost_RejectsUnknownPetType(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validLostInput()
	in.PetType = "dinosaur"

	_, err := svc.CreateLost(context.Background(), "owner-1", in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_CreateLost_DuplicateActiveGuard(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.CreateLost(context.Background(), "owner-1", validLostInput()); err != nil {
		t.Fatalf("CreateLost #1 error: %v", err)
	}

	// mismo nombre (case-insensitive) y tipo -> 409
	in := validLostInput()
	in.PetName = "  rocky "
	_, err := svc.CreateLost(context.Background(), "owner-1", in)
	if !errors.Is(err, ErrDuplicateActive) {
		t.Fatalf("expected ErrDuplicateActive, got %v", err)
	}

	// otro dueño con el mismo nombre: permitido
	if _, err := svc.CreateLost(context.Background(), "owner-2", validLostInput()); err != nil {
		t.Fatalf("other owner should not collide: %v", err)
	}

	// misma mascota con otro tipo: permitido (no es el mismo animal)
	in = validLostInput()
	in.PetType = "cat"
	if _, err := svc.CreateLost(context.Background(), "owner-1", in); err != nil {
		t.Fatalf("different pet type should not collide: %v", err)
	}
}

func TestService_CreateLost_AllowedAfterResolve(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	rep, err := svc.CreateLost(context.Background(), "owner-1", validLostInput())
	if err != nil {
		t.Fatalf("CreateLost error: %v", err)
	}
	if _, err := svc.ResolveLost(context.Background(), rep.ID, "owner-1"); err != nil {
		t.Fatalf("ResolveLost error: %v", err)
	}

	// la mascota se volvió a perder: el reporte resuelto no bloquea
	if _, err := svc.CreateLost(context.Background(), "owner-1", validLostInput()); err != nil {
		t.Fatalf("expected new report after resolve, got %v", err)
	}
}

func TestService_CreateFound_RequiresContact(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validFoundInput()
	in.ContactEmail = ""
	in.ContactPhone = ""

	_, err := svc.CreateFound(context.Background(), "finder-1", in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without contact, got %v", err)
	}

	in.ContactPhone = "+1 555 0100"
	if _, err := svc.CreateFound(context.Background(), "finder-1", in); err != nil {
		t.Fatalf("phone-only contact should be valid: %v", err)
	}
}

func TestService_ResolveLost_OwnerOnlyAndIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	rep, err := svc.CreateLost(context.Background(), "owner-1", validLostInput())
	if err != nil {
		t.Fatalf("CreateLost error: %v", err)
	}

	if _, err := svc.ResolveLost(context.Background(), rep.ID, "stranger-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	resolved, err := svc.ResolveLost(context.Background(), rep.ID, "owner-1")
	if err != nil {
		t.Fatalf("ResolveLost error: %v", err)
	}
	if resolved.Status != StatusResolved || resolved.ResolvedAt == nil {
		t.Fatalf("expected resolved with timestamp, got %#v", resolved)
	}

	// idempotente
	again, err := svc.ResolveLost(context.Background(), rep.ID, "owner-1")
	if err != nil {
		t.Fatalf("idempotent ResolveLost error: %v", err)
	}
	if again.Status != StatusResolved {
		t.Fatalf("expected resolved, got %s", again.Status)
	}
}
