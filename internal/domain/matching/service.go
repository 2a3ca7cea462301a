package matching

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"

	"github.com/google/uuid"
)

// Notifier es el canal de notificaciones inyectado en el state machine
// (nada de colas globales). Los métodos no devuelven error: la entrega es
// best-effort y una notificación perdida jamás revierte una transición.
type Notifier interface {
	MatchCreated(ctx context.Context, m Match)
	MatchConfirmed(ctx context.Context, confirmed Match, autoRejected []Match)
	MatchResolved(ctx context.Context, m Match)
}

type Service struct {
	matches  Repository
	reports  reports.Repository
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(matches Repository, reportsRepo reports.Repository, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		matches:  matches,
		reports:  reportsRepo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Detail es un match con sus dos reportes embebidos (para respuestas de API).
type Detail struct {
	Match Match
	Lost  reports.LostReport
	Found reports.FoundReport
}

// RecomputeForLost genera/actualiza matches candidatos para un lost report
// recién creado (o re-disparado vía POST /matches/recompute).
func (s *Service) RecomputeForLost(ctx context.Context, lostReportID string) error {
	lost, err := s.reports.GetLost(ctx, lostReportID)
	if err != nil {
		s.log.Warn("recompute: lost report not found", map[string]any{"report_id": lostReportID})
		return err
	}
	if lost.Status != reports.StatusActive {
		return nil // solo reportes activos generan candidatos nuevos
	}

	pool, err := s.reports.ListFound(ctx, reports.ListFilter{
		Status:  reports.StatusActive,
		PetType: lost.PetType,
	})
	if err != nil {
		return err
	}

	for _, cand := range FindCandidatesForLost(lost, pool) {
		if err := s.persistCandidate(ctx, cand); err != nil {
			s.log.Error("recompute: upsert failed", map[string]any{
				"lost_report_id":  cand.Lost.ID,
				"found_report_id": cand.Found.ID,
				"error":           err.Error(),
			})
			return err
		}
	}
	return nil
}

// RecomputeForFound es el camino inverso, disparado por un found report nuevo.
func (s *Service) RecomputeForFound(ctx context.Context, foundReportID string) error {
	found, err := s.reports.GetFound(ctx, foundReportID)
	if err != nil {
		s.log.Warn("recompute: found report not found", map[string]any{"report_id": foundReportID})
		return err
	}
	if found.Status != reports.StatusActive {
		return nil
	}

	pool, err := s.reports.ListLost(ctx, reports.ListFilter{
		Status:  reports.StatusActive,
		PetType: found.PetType,
	})
	if err != nil {
		return err
	}

	for _, cand := range FindCandidatesForFound(found, pool) {
		if err := s.persistCandidate(ctx, cand); err != nil {
			s.log.Error("recompute: upsert failed", map[string]any{
				"lost_report_id":  cand.Lost.ID,
				"found_report_id": cand.Found.ID,
				"error":           err.Error(),
			})
			return err
		}
	}
	return nil
}

// Sweep recorre los lost reports activos buscando matches tardíos.
// Saltea pares que ya tienen un match en cualquier estado: una decisión
// settled nunca se re-puntúa desde el sweep.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	lostReports, err := s.reports.ListLost(ctx, reports.ListFilter{Status: reports.StatusActive})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, lost := range lostReports {
		pool, err := s.reports.ListFound(ctx, reports.ListFilter{
			Status:  reports.StatusActive,
			PetType: lost.PetType,
		})
		if err != nil {
			return created, err
		}

		for _, cand := range FindCandidatesForLost(lost, pool) {
			exists, err := s.matches.ExistsForPair(ctx, cand.Lost.ID, cand.Found.ID)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
			if err := s.persistCandidate(ctx, cand); err != nil {
				return created, err
			}
			created++
		}
	}

	metrics.SweepRuns.Inc()
	return created, nil
}

// persistCandidate hace el upsert de un candidato y notifica solo cuando el
// match es nuevo (el rescoring de un pending existente no re-notifica).
func (s *Service) persistCandidate(ctx context.Context, cand Candidate) error {
	now := s.now()
	m := Match{
		ID:            uuid.NewString(),
		LostReportID:  cand.Lost.ID,
		FoundReportID: cand.Found.ID,
		Score:         cand.Result.Score,
		Reasons:       cand.Result.Reasons,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	saved, created, err := s.matches.Upsert(ctx, m)
	if err != nil {
		return err
	}
	if created {
		metrics.MatchesCreated.Inc()
		s.notifier.MatchCreated(ctx, saved)
	}
	return nil
}

// Get devuelve un match si el usuario participa en él.
func (s *Service) Get(ctx context.Context, matchID, actingUserID string) (Detail, error) {
	m, lost, found, err := s.loadParticipants(ctx, matchID, actingUserID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Match: m, Lost: lost, Found: found}, nil
}

// ListByUser devuelve los matches del usuario (cualquiera de los dos lados),
// más reciente primero, con los reportes embebidos.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Detail, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	matches, err := s.matches.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Detail, 0, len(matches))
	for _, m := range matches {
		lost, err := s.reports.GetLost(ctx, m.LostReportID)
		if err != nil {
			return nil, err
		}
		found, err := s.reports.GetFound(ctx, m.FoundReportID)
		if err != nil {
			return nil, err
		}
		out = append(out, Detail{Match: m, Lost: lost, Found: found})
	}
	return out, nil
}

// Confirm: pending -> confirmed. Solo un participante puede confirmar.
// Efectos (atómicos, en el repo): ambos reportes pasan a matched y todos los
// otros pending que tocan cualquiera de los dos reportes quedan rejected.
func (s *Service) Confirm(ctx context.Context, matchID, actingUserID string) (Match, error) {
	m, _, _, err := s.loadParticipants(ctx, matchID, actingUserID)
	if err != nil {
		return Match{}, err
	}
	if _, err := nextStatus(m.Status, ActionConfirm); err != nil {
		return Match{}, err
	}

	outcome, err := s.matches.Confirm(ctx, m.ID, s.now())
	if err != nil {
		return Match{}, s.mapStateChanged(ctx, m.ID, ActionConfirm, err)
	}

	metrics.MatchTransitions.WithLabelValues(string(ActionConfirm)).Inc()
	s.notifier.MatchConfirmed(ctx, outcome.Match, outcome.AutoRejected)
	return outcome.Match, nil
}

// Reject: pending -> rejected (terminal). No altera los reportes; los demás
// candidatos siguen viables. Silencioso hacia la contraparte: descartar un
// candidato no amerita alarmar al otro usuario.
func (s *Service) Reject(ctx context.Context, matchID, actingUserID string) (Match, error) {
	m, _, _, err := s.loadParticipants(ctx, matchID, actingUserID)
	if err != nil {
		return Match{}, err
	}
	if _, err := nextStatus(m.Status, ActionReject); err != nil {
		return Match{}, err
	}

	rejected, err := s.matches.Reject(ctx, m.ID, s.now())
	if err != nil {
		return Match{}, s.mapStateChanged(ctx, m.ID, ActionReject, err)
	}

	metrics.MatchTransitions.WithLabelValues(string(ActionReject)).Inc()
	return rejected, nil
}

// Resolve: confirmed -> resolved. Ambos reportes pasan a resolved.
// Idempotente: resolver un match ya resuelto es un no-op exitoso (el usuario
// puede reintentar tras un timeout de red).
func (s *Service) Resolve(ctx context.Context, matchID, actingUserID string) (Match, error) {
	m, _, _, err := s.loadParticipants(ctx, matchID, actingUserID)
	if err != nil {
		return Match{}, err
	}
	if m.Status == StatusResolved {
		return m, nil
	}
	if _, err := nextStatus(m.Status, ActionResolve); err != nil {
		return Match{}, err
	}

	resolved, err := s.matches.Resolve(ctx, m.ID, s.now())
	if err != nil {
		// Carrera resolve-vs-resolve: si otro request ya lo resolvió,
		// seguimos siendo idempotentes.
		if errors.Is(err, ErrStateChanged) {
			if fresh, gerr := s.matches.GetByID(ctx, m.ID); gerr == nil && fresh.Status == StatusResolved {
				return fresh, nil
			}
		}
		return Match{}, s.mapStateChanged(ctx, m.ID, ActionResolve, err)
	}

	metrics.MatchTransitions.WithLabelValues(string(ActionResolve)).Inc()
	s.notifier.MatchResolved(ctx, resolved)
	return resolved, nil
}

// loadParticipants carga match + reportes y valida que el actor sea dueño de
// alguno de los dos lados.
func (s *Service) loadParticipants(ctx context.Context, matchID, actingUserID string) (Match, reports.LostReport, reports.FoundReport, error) {
	matchID = strings.TrimSpace(matchID)
	actingUserID = strings.TrimSpace(actingUserID)
	if matchID == "" || actingUserID == "" {
		return Match{}, reports.LostReport{}, reports.FoundReport{}, ErrInvalidInput
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return Match{}, reports.LostReport{}, reports.FoundReport{}, ErrNotFound
	}

	lost, err := s.reports.GetLost(ctx, m.LostReportID)
	if err != nil {
		return Match{}, reports.LostReport{}, reports.FoundReport{}, err
	}
	found, err := s.reports.GetFound(ctx, m.FoundReportID)
	if err != nil {
		return Match{}, reports.LostReport{}, reports.FoundReport{}, err
	}

	if lost.OwnerUserID != actingUserID && found.ReporterUserID != actingUserID {
		return Match{}, reports.LostReport{}, reports.FoundReport{}, ErrForbidden
	}
	return m, lost, found, nil
}

// mapStateChanged traduce el guard transaccional del repo a TransitionError
// con el estado fresco (p.ej. el segundo confirm concurrente ve "confirmed").
func (s *Service) mapStateChanged(ctx context.Context, matchID string, action Action, err error) error {
	if !errors.Is(err, ErrStateChanged) {
		return err
	}
	fresh, gerr := s.matches.GetByID(ctx, matchID)
	if gerr != nil {
		return err
	}
	return &TransitionError{Current: fresh.Status, Requested: targetStatus[action]}
}
