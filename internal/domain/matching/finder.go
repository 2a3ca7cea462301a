package matching

import (
	"sort"

	"pet-lost-found/internal/domain/reports"
)

// Candidate es un match candidato aún no persistido.
type Candidate struct {
	Lost   reports.LostReport
	Found  reports.FoundReport
	Result Result
}

// FindCandidatesForLost evalúa el pool de found reports activos contra un
// lost report y devuelve los candidatos con score >= MinMatchScore,
// ordenados por score descendente y acotados a MaxCandidatesPerReport.
// Excluye found reports del propio dueño (self-matching).
func FindCandidatesForLost(lost reports.LostReport, pool []reports.FoundReport) []Candidate {
	out := make([]Candidate, 0)
	for _, found := range pool {
		if found.Status != reports.StatusActive {
			continue
		}
		if found.ReporterUserID == lost.OwnerUserID {
			continue
		}
		res := Score(lost, found)
		if res.Score < MinMatchScore {
			continue
		}
		out = append(out, Candidate{Lost: lost, Found: found, Result: res})
	}
	return capCandidates(out)
}

// FindCandidatesForFound es el camino inverso: un found report nuevo contra
// el pool de lost reports activos.
func FindCandidatesForFound(found reports.FoundReport, pool []reports.LostReport) []Candidate {
	out := make([]Candidate, 0)
	for _, lost := range pool {
		if lost.Status != reports.StatusActive {
			continue
		}
		if lost.OwnerUserID == found.ReporterUserID {
			continue
		}
		res := Score(lost, found)
		if res.Score < MinMatchScore {
			continue
		}
		out = append(out, Candidate{Lost: lost, Found: found, Result: res})
	}
	return capCandidates(out)
}

func capCandidates(cands []Candidate) []Candidate {
	// Empates por score: el par más antiguo primero (determinista).
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Result.Score != cands[j].Result.Score {
			return cands[i].Result.Score > cands[j].Result.Score
		}
		return cands[i].Found.CreatedAt.Before(cands[j].Found.CreatedAt)
	})
	if len(cands) > MaxCandidatesPerReport {
		cands = cands[:MaxCandidatesPerReport]
	}
	return cands
}
