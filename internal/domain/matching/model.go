package matching

import (
	"strings"
	"time"
)

// MatchStatus define el ciclo de vida de un match.
// Flujo: pending -> confirmed -> resolved, o pending -> rejected (terminal).
type MatchStatus string

const (
	StatusPending   MatchStatus = "pending"
	StatusConfirmed MatchStatus = "confirmed"
	StatusRejected  MatchStatus = "rejected"
	StatusResolved  MatchStatus = "resolved"
)

// Match es un candidato de pareo entre un lost report y un found report.
// Único por par (lost_report_id, found_report_id); nunca se borra (auditoría).
type Match struct {
	ID string

	LostReportID  string
	FoundReportID string

	// Score 0-100 (no necesariamente entero).
	Score float64

	// Reasons ordenadas por contribución descendente.
	// Se serializan unidas por "; " para transporte/persistencia.
	Reasons []string

	Status MatchStatus

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// IsConfirmed es derivado: true desde confirmed en adelante.
func (m Match) IsConfirmed() bool {
	return m.Status == StatusConfirmed || m.Status == StatusResolved
}

// ReasonsText serializa las razones para transporte.
func (m Match) ReasonsText() string {
	return strings.Join(m.Reasons, "; ")
}

// SplitReasons es la inversa de ReasonsText (para los adapters de storage).
func SplitReasons(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "; ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
