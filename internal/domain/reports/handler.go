package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-lost-found/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, matcher Matcher) {
	r.Route("/lost-reports", func(lr chi.Router) {
		lr.Post("/", createLostHandler(svc, matcher))
		lr.Get("/", listLostHandler(svc))
		lr.Get("/{reportID}", getLostHandler(svc))
		lr.Post("/{reportID}/resolve", resolveLostHandler(svc))
	})

	r.Route("/found-reports", func(fr chi.Router) {
		fr.Post("/", createFoundHandler(svc, matcher))
		fr.Get("/", listFoundHandler(svc))
		fr.Get("/{reportID}", getFoundHandler(svc))
		fr.Post("/{reportID}/resolve", resolveFoundHandler(svc))
	})
}

type createLostRequest struct {
	PetName          string `json:"pet_name"`
	PetType          string `json:"pet_type"`
	Breed            string `json:"breed"`
	Color            string `json:"color"`
	Size             string `json:"size"`
	Description      string `json:"description"`
	LastSeenLocation string `json:"last_seen_location"`
	LastSeenDate     string `json:"last_seen_date"` // YYYY-MM-DD
}

type createFoundRequest struct {
	PetType       string `json:"pet_type"`
	Breed         string `json:"breed"`
	Color         string `json:"color"`
	Size          string `json:"size"`
	Description   string `json:"description"`
	LocationFound string `json:"location_found"`
	DateFound     string `json:"date_found"` // YYYY-MM-DD
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
}

type lostResponse struct {
	ID               string     `json:"id"`
	OwnerUserID      string     `json:"owner_user_id"`
	PetName          string     `json:"pet_name"`
	PetType          PetType    `json:"pet_type"`
	Breed            string     `json:"breed"`
	Color            string     `json:"color"`
	Size             Size       `json:"size,omitempty"`
	Description      string     `json:"description"`
	LastSeenLocation string     `json:"last_seen_location"`
	LastSeenDate     string     `json:"last_seen_date"`
	Status           Status     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

type foundResponse struct {
	ID             string     `json:"id"`
	ReporterUserID string     `json:"reporter_user_id"`
	PetType        PetType    `json:"pet_type"`
	Breed          string     `json:"breed"`
	Color          string     `json:"color"`
	Size           Size       `json:"size,omitempty"`
	Description    string     `json:"description"`
	LocationFound  string     `json:"location_found"`
	DateFound      string     `json:"date_found"`
	ContactEmail   string     `json:"contact_email"`
	ContactPhone   string     `json:"contact_phone"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

func createLostHandler(svc *Service, matcher Matcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createLostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		seen, err := parseDate(req.LastSeenDate)
		if err != nil {
			http.Error(w, "last_seen_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		rep, err := svc.CreateLost(r.Context(), claims.UserID, CreateLostInput{
			PetName:          req.PetName,
			PetType:          req.PetType,
			Breed:            req.Breed,
			Color:            req.Color,
			Size:             req.Size,
			Description:      req.Description,
			LastSeenLocation: req.LastSeenLocation,
			LastSeenDate:     seen,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrDuplicateActive):
				writeJSON(w, http.StatusConflict, map[string]string{"detail": err.Error()})
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// Dispara el matching inline; si falla, el reporte ya quedó creado
		// (los errores se loguean dentro del engine).
		_ = matcher.RecomputeForLost(r.Context(), rep.ID)

		writeJSON(w, http.StatusCreated, toLostResponse(rep))
	}
}

func createFoundHandler(svc *Service, matcher Matcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createFoundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		found, err := parseDate(req.DateFound)
		if err != nil {
			http.Error(w, "date_found must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		// Precondición (ConflictGuard): el usuario no puede reportar como
		// "encontrada" a su propia mascota perdida.
		candidate := FoundReport{
			ReporterUserID: claims.UserID,
			PetType:        PetType(strings.ToLower(strings.TrimSpace(req.PetType))),
			Breed:          strings.TrimSpace(req.Breed),
			Color:          strings.TrimSpace(req.Color),
			Size:           Size(strings.ToLower(strings.TrimSpace(req.Size))),
			LocationFound:  strings.TrimSpace(req.LocationFound),
			DateFound:      found,
		}
		if err := matcher.CheckFoundConflict(r.Context(), claims.UserID, candidate); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				writeJSON(w, http.StatusConflict, map[string]string{
					"detail":         "You already reported this pet as lost. Mark your lost report as resolved instead.",
					"lost_report_id": conflict.LostReportID,
					"pet_name":       conflict.PetName,
				})
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rep, err := svc.CreateFound(r.Context(), claims.UserID, CreateFoundInput{
			PetType:       req.PetType,
			Breed:         req.Breed,
			Color:         req.Color,
			Size:          req.Size,
			Description:   req.Description,
			LocationFound: req.LocationFound,
			DateFound:     found,
			ContactEmail:  req.ContactEmail,
			ContactPhone:  req.ContactPhone,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		_ = matcher.RecomputeForFound(r.Context(), rep.ID)

		writeJSON(w, http.StatusCreated, toFoundResponse(rep))
	}
}

func listLostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Cada usuario ve sus propios reportes; status opcional por query param.
		filter := ListFilter{OwnerUserID: claims.UserID}
		if st := strings.TrimSpace(r.URL.Query().Get("status")); st != "" {
			filter.Status = Status(st)
		}

		items, err := svc.ListLost(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]lostResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, toLostResponse(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listFoundHandler(svc *Service) http.HandlerFunc {
	// Los found reports son públicos (cualquiera puede revisar mascotas encontradas).
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{Status: StatusActive}
		if st := strings.TrimSpace(r.URL.Query().Get("status")); st != "" {
			filter.Status = Status(st)
		}
		if pt := strings.TrimSpace(r.URL.Query().Get("pet_type")); pt != "" {
			filter.PetType = PetType(strings.ToLower(pt))
		}

		items, err := svc.ListFound(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]foundResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, toFoundResponse(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getLostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.GetLost(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toLostResponse(rep))
	}
}

func getFoundHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.GetFound(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toFoundResponse(rep))
	}
}

func resolveLostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rep, err := svc.ResolveLost(r.Context(), chi.URLParam(r, "reportID"), claims.UserID)
		if err != nil {
			writeReportError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLostResponse(rep))
	}
}

func resolveFoundHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rep, err := svc.ResolveFound(r.Context(), chi.URLParam(r, "reportID"), claims.UserID)
		if err != nil {
			writeReportError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFoundResponse(rep))
	}
}

func writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		// repos devuelven su propio not found; lo tratamos como 404
		http.Error(w, "report not found", http.StatusNotFound)
	}
}

func toLostResponse(rep LostReport) lostResponse {
	return lostResponse{
		ID:               rep.ID,
		OwnerUserID:      rep.OwnerUserID,
		PetName:          rep.PetName,
		PetType:          rep.PetType,
		Breed:            rep.Breed,
		Color:            rep.Color,
		Size:             rep.Size,
		Description:      rep.Description,
		LastSeenLocation: rep.LastSeenLocation,
		LastSeenDate:     rep.LastSeenDate.Format("2006-01-02"),
		Status:           rep.Status,
		CreatedAt:        rep.CreatedAt,
		ResolvedAt:       rep.ResolvedAt,
	}
}

func toFoundResponse(rep FoundReport) foundResponse {
	return foundResponse{
		ID:             rep.ID,
		ReporterUserID: rep.ReporterUserID,
		PetType:        rep.PetType,
		Breed:          rep.Breed,
		Color:          rep.Color,
		Size:           rep.Size,
		Description:    rep.Description,
		LocationFound:  rep.LocationFound,
		DateFound:      rep.DateFound.Format("2006-01-02"),
		ContactEmail:   rep.ContactEmail,
		ContactPhone:   rep.ContactPhone,
		Status:         rep.Status,
		CreatedAt:      rep.CreatedAt,
		ResolvedAt:     rep.ResolvedAt,
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// writeJSON está duplicado en handlers de distintos módulos a propósito,
// igual que en el resto de los módulos (ver nota en matching/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
