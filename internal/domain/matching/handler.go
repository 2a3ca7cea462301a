package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/matches", func(mr chi.Router) {
		mr.Get("/", listMatchesHandler(svc))
		mr.Post("/recompute", recomputeHandler(svc))
		mr.Get("/{matchID}", getMatchHandler(svc))
		mr.Post("/{matchID}/confirm", transitionHandler(svc, ActionConfirm))
		mr.Post("/{matchID}/reject", transitionHandler(svc, ActionReject))
		mr.Post("/{matchID}/resolve", transitionHandler(svc, ActionResolve))
	})
}

// reportSummary es la vista liviana de un reporte embebida en un match.
type reportSummary struct {
	ID       string          `json:"id"`
	PetName  string          `json:"pet_name,omitempty"`
	PetType  reports.PetType `json:"pet_type"`
	Location string          `json:"location"`
	Date     string          `json:"date"`
	Status   reports.Status  `json:"status"`
}

// matchResponse representa un match devuelto por la API.
// match_reasons viaja como string unido por "; " (formato de transporte).
type matchResponse struct {
	ID            string         `json:"id"`
	LostReportID  string         `json:"lost_report_id"`
	FoundReportID string         `json:"found_report_id"`
	MatchScore    float64        `json:"match_score"`
	MatchReasons  string         `json:"match_reasons"`
	Status        MatchStatus    `json:"status"`
	IsConfirmed   bool           `json:"is_confirmed"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
	Lost          *reportSummary `json:"lost_report,omitempty"`
	Found         *reportSummary `json:"found_report,omitempty"`
}

type recomputeRequest struct {
	ReportID string `json:"report_id"`
	Kind     string `json:"kind" enums:"lost,found"`
}

// listMatchesHandler godoc
// @Summary Listar matches del usuario
// @Description Devuelve los matches donde el usuario autenticado es dueño del lost report o reporter del found report, más reciente primero, con resúmenes de ambos reportes embebidos. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags matches
// @Produce json
// @Success 200 {array} matchResponse
// @Failure 401 {string} string "unauthorized"
// @Router /matches [get]
func listMatchesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		details, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]matchResponse, 0, len(details))
		for _, d := range details {
			out = append(out, toMatchResponse(d.Match, &d.Lost, &d.Found))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getMatchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		d, err := svc.Get(r.Context(), chi.URLParam(r, "matchID"), claims.UserID)
		if err != nil {
			writeMatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMatchResponse(d.Match, &d.Lost, &d.Found))
	}
}

// transitionHandler godoc
// @Summary Confirmar / rechazar / resolver un match
// @Description Aplica una transición del state machine (pending→confirmed, pending→rejected, confirmed→resolved). Solo participantes del match. Confirmar auto-rechaza los demás pending que tocan cualquiera de los dos reportes; resolver es idempotente.
// @Tags matches
// @Produce json
// @Param matchID path string true "ID del match"
// @Success 200 {object} matchResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "match not found"
// @Failure 409 {object} map[string]string "transición ilegal (this match is no longer pending)"
// @Router /matches/{matchID}/confirm [post]
func transitionHandler(svc *Service, action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		matchID := chi.URLParam(r, "matchID")

		var (
			m   Match
			err error
		)
		switch action {
		case ActionConfirm:
			m, err = svc.Confirm(r.Context(), matchID, claims.UserID)
		case ActionReject:
			m, err = svc.Reject(r.Context(), matchID, claims.UserID)
		case ActionResolve:
			m, err = svc.Resolve(r.Context(), matchID, claims.UserID)
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		if err != nil {
			writeMatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMatchResponse(m, nil, nil))
	}
}

// recomputeHandler es el trigger interno: re-corre el finder para un reporte.
func recomputeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req recomputeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var err error
		switch reports.Kind(strings.ToLower(strings.TrimSpace(req.Kind))) {
		case reports.KindLost:
			err = svc.RecomputeForLost(r.Context(), req.ReportID)
		case reports.KindFound:
			err = svc.RecomputeForFound(r.Context(), req.ReportID)
		default:
			http.Error(w, "kind must be lost or found", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "recomputed"})
	}
}

func writeMatchError(w http.ResponseWriter, err error) {
	var transition *TransitionError
	switch {
	case errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, map[string]string{
			"detail":           transition.Error(),
			"current_status":   string(transition.Current),
			"requested_status": string(transition.Requested),
		})
	case errors.Is(err, ErrForbidden):
		http.Error(w, "you are not involved in this match", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "match not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toMatchResponse(m Match, lost *reports.LostReport, found *reports.FoundReport) matchResponse {
	out := matchResponse{
		ID:            m.ID,
		LostReportID:  m.LostReportID,
		FoundReportID: m.FoundReportID,
		MatchScore:    m.Score,
		MatchReasons:  m.ReasonsText(),
		Status:        m.Status,
		IsConfirmed:   m.IsConfirmed(),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		ResolvedAt:    m.ResolvedAt,
	}
	if lost != nil {
		out.Lost = &reportSummary{
			ID:       lost.ID,
			PetName:  lost.PetName,
			PetType:  lost.PetType,
			Location: lost.LastSeenLocation,
			Date:     lost.LastSeenDate.Format("2006-01-02"),
			Status:   lost.Status,
		}
	}
	if found != nil {
		out.Found = &reportSummary{
			ID:       found.ID,
			PetType:  found.PetType,
			Location: found.LocationFound,
			Date:     found.DateFound.Format("2006-01-02"),
			Status:   found.Status,
		}
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
