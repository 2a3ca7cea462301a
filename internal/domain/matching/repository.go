package matching

import (
	"context"
	"time"
)

// ConfirmOutcome es el resultado de confirmar un match: el match confirmado
// más los pending competidores que quedaron auto-rechazados en la misma
// transacción (exclusividad de confirmación).
type ConfirmOutcome struct {
	Match        Match
	AutoRejected []Match
}

// Repository persiste matches. Las operaciones de transición (Confirm,
// Reject, Resolve) llevan guard de estado: si el match ya no está en el
// estado de origen devuelven ErrStateChanged (gana el primer commit).
type Repository interface {
	// Upsert crea el match en pending o, si el par (lost, found) ya existe
	// y sigue pending, actualiza score/reasons in place. Matches settled
	// (confirmed/rejected/resolved) son inmutables al rescoring: se
	// devuelven sin tocar. El bool indica si se creó una fila nueva.
	// Debe estar serializado por par (unique index + upsert-on-conflict).
	Upsert(ctx context.Context, m Match) (Match, bool, error)

	GetByID(ctx context.Context, id string) (Match, error)

	// ListByUser devuelve los matches donde el usuario es dueño de
	// cualquiera de los dos reportes, más reciente primero.
	ListByUser(ctx context.Context, userID string) ([]Match, error)

	// ExistsForPair permite al sweep saltear pares ya evaluados
	// (con match existente en cualquier estado).
	ExistsForPair(ctx context.Context, lostReportID, foundReportID string) (bool, error)

	// Confirm aplica atómicamente: match -> confirmed, ambos reportes ->
	// matched, y todos los otros pending que referencien cualquiera de los
	// dos reportes -> rejected. Aplicación parcial no debe ser observable.
	Confirm(ctx context.Context, matchID string, now time.Time) (ConfirmOutcome, error)

	// Reject: match -> rejected. No toca los reportes (los demás
	// candidatos siguen viables).
	Reject(ctx context.Context, matchID string, now time.Time) (Match, error)

	// Resolve aplica atómicamente: match -> resolved y ambos reportes ->
	// resolved.
	Resolve(ctx context.Context, matchID string, now time.Time) (Match, error)
}
