package notifications

import (
	"context"
	"fmt"
	"time"

	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"

	"github.com/google/uuid"
)

// Dispatcher implementa matching.Notifier: arma título/mensaje por tipo de
// evento y encola registros de notificación. Entrega best-effort,
// at-most-once: un fallo se loguea y se traga, nunca bloquea ni revierte la
// transición que lo disparó.
type Dispatcher struct {
	repo    Repository
	reports reports.Repository
	log     logger.Logger
	now     func() time.Time
}

func NewDispatcher(repo Repository, reportsRepo reports.Repository, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		reports: reportsRepo,
		log:     log,
		now:     time.Now,
	}
}

// MatchCreated notifica a ambos reporters cuando nace un match candidato.
func (d *Dispatcher) MatchCreated(ctx context.Context, m matching.Match) {
	lost, found, ok := d.loadReports(ctx, m)
	if !ok {
		return
	}

	d.deliver(ctx, Notification{
		RecipientUserID: lost.OwnerUserID,
		MatchID:         m.ID,
		Type:            TypeMatchFound,
		Title:           "Potential match for your lost pet",
		Message: fmt.Sprintf(
			"A pet matching %q may have been found near %s. Match score: %.0f%%. Reasons: %s",
			lost.PetName, found.LocationFound, m.Score, m.ReasonsText(),
		),
	})
	d.deliver(ctx, Notification{
		RecipientUserID: found.ReporterUserID,
		MatchID:         m.ID,
		Type:            TypeMatchFound,
		Title:           "Potential match for a pet you found",
		Message: fmt.Sprintf(
			"A lost pet report may match the %s you found. Match score: %.0f%%. Check the match details.",
			found.PetType, m.Score,
		),
	})
}

// MatchConfirmed notifica a ambas partes del match confirmado y a la
// contraparte de cada match auto-rechazado por la exclusividad.
func (d *Dispatcher) MatchConfirmed(ctx context.Context, confirmed matching.Match, autoRejected []matching.Match) {
	lost, found, ok := d.loadReports(ctx, confirmed)
	if !ok {
		return
	}

	d.deliver(ctx, Notification{
		RecipientUserID: lost.OwnerUserID,
		MatchID:         confirmed.ID,
		Type:            TypeMatchConfirmed,
		Title:           "Match confirmed!",
		Message:         fmt.Sprintf("The match for %q has been confirmed. Coordinate the reunion with the finder.", lost.PetName),
	})
	d.deliver(ctx, Notification{
		RecipientUserID: found.ReporterUserID,
		MatchID:         confirmed.ID,
		Type:            TypeMatchConfirmed,
		Title:           "Match confirmed!",
		Message:         fmt.Sprintf("The owner confirmed that the %s you found is %q.", found.PetType, lost.PetName),
	})

	// Partes ya notificadas por la confirmación: no duplicar.
	seen := map[string]struct{}{
		lost.OwnerUserID:     {},
		found.ReporterUserID: {},
	}

	for _, rej := range autoRejected {
		rl, rf, ok := d.loadReports(ctx, rej)
		if !ok {
			continue
		}
		for _, recipient := range []string{rl.OwnerUserID, rf.ReporterUserID} {
			if _, dup := seen[recipient]; dup {
				continue
			}
			seen[recipient] = struct{}{}
			d.deliver(ctx, Notification{
				RecipientUserID: recipient,
				MatchID:         rej.ID,
				Type:            TypeMatchRejected,
				Title:           "A match candidate was closed",
				Message:         "One of your match candidates is no longer available because another match was confirmed.",
			})
		}
	}
}

// MatchResolved emite la notificación de cierre a ambas partes.
func (d *Dispatcher) MatchResolved(ctx context.Context, m matching.Match) {
	lost, found, ok := d.loadReports(ctx, m)
	if !ok {
		return
	}

	d.deliver(ctx, Notification{
		RecipientUserID: lost.OwnerUserID,
		MatchID:         m.ID,
		Type:            TypeMatchResolved,
		Title:           "Reunited!",
		Message:         fmt.Sprintf("Your lost pet report for %q is now resolved. Welcome home!", lost.PetName),
	})
	d.deliver(ctx, Notification{
		RecipientUserID: found.ReporterUserID,
		MatchID:         m.ID,
		Type:            TypeMatchResolved,
		Title:           "Reunited!",
		Message:         "The found pet report is now resolved. Thanks for helping a pet get home.",
	})
}

func (d *Dispatcher) loadReports(ctx context.Context, m matching.Match) (reports.LostReport, reports.FoundReport, bool) {
	lost, err := d.reports.GetLost(ctx, m.LostReportID)
	if err != nil {
		d.logFailure(m.ID, err)
		return reports.LostReport{}, reports.FoundReport{}, false
	}
	found, err := d.reports.GetFound(ctx, m.FoundReportID)
	if err != nil {
		d.logFailure(m.ID, err)
		return reports.LostReport{}, reports.FoundReport{}, false
	}
	return lost, found, true
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	n.ID = uuid.NewString()
	n.CreatedAt = d.now()

	if err := d.repo.Create(ctx, n); err != nil {
		d.logFailure(n.MatchID, err)
		return
	}
	metrics.NotificationsDispatched.Inc()
}

// logFailure: DispatchFailure se recupera localmente. La transición que la
// disparó ya comiteó; acá solo queda registrar y seguir.
func (d *Dispatcher) logFailure(matchID string, err error) {
	metrics.NotificationFailures.Inc()
	d.log.Error("notification dispatch failed", map[string]any{
		"match_id": matchID,
		"error":    err.Error(),
	})
}
