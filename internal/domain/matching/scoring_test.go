package matching

import (
	"reflect"
	"testing"
	"time"

	"pet-lost-found/internal/domain/reports"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseLost() reports.LostReport {
	return reports.LostReport{
		ID:               "lost-1",
		OwnerUserID:      "owner-1",
		PetName:          "Rocky",
		PetType:          reports.PetTypeDog,
		Breed:            "beagle",
		Color:            "brown",
		Size:             reports.SizeMedium,
		LastSeenLocation: "Prospect Park",
		LastSeenDate:     date(2025, 8, 1),
		Status:           reports.StatusActive,
	}
}

func baseFound() reports.FoundReport {
	return reports.FoundReport{
		ID:             "found-1",
		ReporterUserID: "finder-1",
		PetType:        reports.PetTypeDog,
		Breed:          "beagle",
		Color:          "brown",
		Size:           reports.SizeMedium,
		LocationFound:  "Prospect Park",
		DateFound:      date(2025, 8, 1),
		Status:         reports.StatusActive,
	}
}

func TestScore_IdenticalReports_ScoreIs100(t *testing.T) {
	res := Score(baseLost(), baseFound())
	if res.Score != 100 {
		t.Fatalf("expected score 100, got %v", res.Score)
	}
	if len(res.Reasons) == 0 {
		t.Fatalf("expected reasons for perfect match")
	}
	if res.Reasons[0] != "Same pet type: dog" {
		t.Fatalf("expected pet type as top reason, got %q", res.Reasons[0])
	}
}

func TestScore_TypeMismatch_VetoesPair(t *testing.T) {
	found := baseFound()
	found.PetType = reports.PetTypeCat

	res := Score(baseLost(), found)
	if res.Score != 0 {
		t.Fatalf("expected score 0 on type mismatch, got %v", res.Score)
	}
	if len(res.Reasons) != 0 {
		t.Fatalf("expected no reasons on type mismatch, got %#v", res.Reasons)
	}
}

func TestScore_AbsentAttributes_DoNotPenalize(t *testing.T) {
	// found sin breed: el peso de breed sale del denominador.
	// color exacto (20), size adyacente (5), location overlap (10),
	// 3 días de distancia (10 * 27/30 = 9).
	// got = 30+20+5+10+9 = 74; possible = 30+20+10+10+10 = 80 -> 92.5
	found := baseFound()
	found.Breed = ""
	found.Size = reports.SizeSmall
	found.LocationFound = "Prospect Park, Brooklyn"
	found.DateFound = date(2025, 8, 4)

	res := Score(baseLost(), found)
	if res.Score != 92.5 {
		t.Fatalf("expected score 92.5, got %v", res.Score)
	}

	want := []string{
		"Same pet type: dog",
		"Color matches: brown",
		"Location overlap: Prospect Park / Prospect Park, Brooklyn",
		"Found 3 day(s) after last seen",
		"Similar size: medium / small",
	}
	if !reflect.DeepEqual(res.Reasons, want) {
		t.Fatalf("reasons mismatch:\n got %#v\nwant %#v", res.Reasons, want)
	}
}

func TestScore_Deterministic(t *testing.T) {
	lost, found := baseLost(), baseFound()
	found.Breed = "beagle mix"
	found.DateFound = date(2025, 8, 10)

	first := Score(lost, found)
	for i := 0; i < 5; i++ {
		again := Score(lost, found)
		if again.Score != first.Score || !reflect.DeepEqual(again.Reasons, first.Reasons) {
			t.Fatalf("scoring is not deterministic: %#v vs %#v", first, again)
		}
	}
}

func TestScore_DateWindow_DecaysToZero(t *testing.T) {
	found := baseFound()
	found.DateFound = date(2025, 8, 31) // exactamente 30 días

	res := Score(baseLost(), found)
	for _, r := range res.Reasons {
		if r == "Found 30 day(s) after last seen" {
			t.Fatalf("date at window edge should not contribute, reasons=%#v", res.Reasons)
		}
	}
	// got = 30+20+20+10+10 = 90; possible = 100 (la fecha sigue presente)
	if res.Score != 90 {
		t.Fatalf("expected score 90, got %v", res.Score)
	}
}

func TestScore_PartialTextMatch_HalfWeight(t *testing.T) {
	found := baseFound()
	found.Breed = "beagle mix" // contención -> medio peso
	found.Color = "white"      // presente sin match -> 0

	// got = 30 + 10 + 0 + 10 + 10 + 10 = 70; possible = 100
	res := Score(baseLost(), found)
	if res.Score != 70 {
		t.Fatalf("expected score 70, got %v", res.Score)
	}

	foundReason := false
	for _, r := range res.Reasons {
		if r == "Breed partially matches: beagle / beagle mix" {
			foundReason = true
		}
	}
	if !foundReason {
		t.Fatalf("expected partial breed reason, got %#v", res.Reasons)
	}
}

func TestFindCandidates_FiltersBelowThreshold(t *testing.T) {
	lost := baseLost()

	weak := baseFound()
	weak.Breed = "poodle"
	weak.Color = "white"
	weak.Size = ""
	weak.LocationFound = "Harlem"
	weak.DateFound = date(2025, 9, 20) // fuera de ventana

	// got = 30; possible = 30+20+20+10+10 = 90 -> 33.33 < MinMatchScore
	cands := FindCandidatesForLost(lost, []reports.FoundReport{weak})
	if len(cands) != 0 {
		t.Fatalf("expected weak candidate filtered out, got %d", len(cands))
	}

	strong := baseFound()
	cands = FindCandidatesForLost(lost, []reports.FoundReport{weak, strong})
	if len(cands) != 1 || cands[0].Found.ID != strong.ID {
		t.Fatalf("expected only the strong candidate, got %#v", cands)
	}
}

func TestFindCandidates_ExcludesSelfMatch(t *testing.T) {
	lost := baseLost()
	own := baseFound()
	own.ReporterUserID = lost.OwnerUserID

	cands := FindCandidatesForLost(lost, []reports.FoundReport{own})
	if len(cands) != 0 {
		t.Fatalf("expected own found report excluded, got %d candidates", len(cands))
	}
}

func TestFindCandidates_CapsAndOrdersByScore(t *testing.T) {
	lost := baseLost()

	pool := make([]reports.FoundReport, 0, MaxCandidatesPerReport+3)
	for i := 0; i < MaxCandidatesPerReport+3; i++ {
		f := baseFound()
		f.ID = "found-" + string(rune('a'+i))
		f.ReporterUserID = "finder-" + string(rune('a'+i))
		f.CreatedAt = date(2025, 8, 1).Add(time.Duration(i) * time.Hour)
		pool = append(pool, f)
	}
	// uno con score menor, para validar el orden
	pool[0].Color = "white"

	cands := FindCandidatesForLost(lost, pool)
	if len(cands) != MaxCandidatesPerReport {
		t.Fatalf("expected cap at %d, got %d", MaxCandidatesPerReport, len(cands))
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Result.Score > cands[i-1].Result.Score {
			t.Fatalf("candidates not ordered by score desc")
		}
	}
	// empates: el found más antiguo primero
	if cands[0].Found.ID != "found-b" {
		t.Fatalf("expected oldest top-score candidate first, got %s", cands[0].Found.ID)
	}
}
