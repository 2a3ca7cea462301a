package reports

import (
	"context"
	"fmt"
)

// Matcher es el puerto hacia el motor de matching.
// Se define aquí (y no en matching) para evitar ciclos de imports:
// matching importa reports por los tipos de reporte.
type Matcher interface {
	// CheckFoundConflict valida que el usuario no esté reportando como
	// "encontrada" a su propia mascota perdida. Devuelve *ConflictError.
	CheckFoundConflict(ctx context.Context, reporterUserID string, candidate FoundReport) error

	// RecomputeForLost/RecomputeForFound generan/actualizan matches candidatos
	// para un reporte recién creado.
	RecomputeForLost(ctx context.Context, lostReportID string) error
	RecomputeForFound(ctx context.Context, foundReportID string) error
}

// ConflictError: el reporte found colisiona con un lost report activo del mismo usuario.
// El caller debe redirigir al flujo "marcar mi reporte como resuelto".
type ConflictError struct {
	LostReportID string
	PetName      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("found report conflicts with own lost report %s", e.LostReportID)
}
