package matching

import (
	"context"
	"strings"

	"pet-lost-found/internal/domain/reports"
)

// CheckFoundConflict implementa el ConflictGuard: antes de aceptar un found
// report, verifica que el usuario no tenga un lost report activo/matched que
// plausiblemente refiera al mismo animal. En ese caso devuelve
// *reports.ConflictError con el id del lost report existente, para que el
// caller redirija al flujo "marcar como resuelto".
//
// Es un guard de regla de negocio, no un cómputo de matching: corre antes
// del finder e independiente del scoring.
func (s *Service) CheckFoundConflict(ctx context.Context, reporterUserID string, candidate reports.FoundReport) error {
	reporterUserID = strings.TrimSpace(reporterUserID)
	if reporterUserID == "" {
		return ErrInvalidInput
	}

	owned, err := s.reports.ListLost(ctx, reports.ListFilter{OwnerUserID: reporterUserID})
	if err != nil {
		return err
	}

	for _, lost := range owned {
		if lost.Status == reports.StatusResolved {
			continue
		}
		if plausiblySameAnimal(lost, candidate) {
			return &reports.ConflictError{LostReportID: lost.ID, PetName: lost.PetName}
		}
	}
	return nil
}

// plausiblySameAnimal: mismo pet_type, y si breed/color están presentes en
// ambos lados, tienen que coincidir (exacto o por contención).
func plausiblySameAnimal(lost reports.LostReport, found reports.FoundReport) bool {
	if lost.PetType == "" || lost.PetType != found.PetType {
		return false
	}
	if !textCompatible(lost.Breed, found.Breed) {
		return false
	}
	if !textCompatible(lost.Color, found.Color) {
		return false
	}
	return true
}

func textCompatible(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return true // dato ausente: no descarta
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
