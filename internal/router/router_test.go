package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-lost-found/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, _ := router.NewRouter(router.Options{AuthVerifier: nil})
	return httptest.NewServer(h)
}

func TestHTTP_EndToEnd_MatchLifecycle(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	ownerID := "owner-1"
	finderID := "finder-1"

	// 1) Owner reporta mascota perdida
	lostID := createLostReport(t, ts.URL, ownerID, map[string]any{
		"pet_name":           "Rocky",
		"pet_type":           "dog",
		"breed":              "beagle",
		"color":              "brown",
		"size":               "medium",
		"last_seen_location": "Prospect Park",
		"last_seen_date":     "2025-08-01",
	})

	// 2) El owner no puede reportar como encontrada a su propia mascota
	{
		st, body := doReq(t, ts.URL, "POST", "/found-reports/", ownerID, map[string]any{
			"pet_type":       "dog",
			"breed":          "beagle",
			"location_found": "Prospect Park",
			"date_found":     "2025-08-02",
			"contact_email":  "owner@example.com",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 conflict guard, got %d body=%s", st, string(body))
		}
		var resp struct {
			LostReportID string `json:"lost_report_id"`
			PetName      string `json:"pet_name"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.LostReportID != lostID || resp.PetName != "Rocky" {
			t.Fatalf("conflict body should reference the lost report, got %s", string(body))
		}
	}

	// 3) Un finder reporta la mascota encontrada; el matching corre inline
	foundID := createFoundReport(t, ts.URL, finderID, map[string]any{
		"pet_type":       "dog",
		"breed":          "beagle",
		"color":          "brown",
		"size":           "medium",
		"location_found": "Prospect Park",
		"date_found":     "2025-08-02",
		"contact_email":  "finder@example.com",
	})

	// 4) El owner ve el match con score alto y reportes embebidos
	matchID := ""
	{
		st, body := doReq(t, ts.URL, "GET", "/matches/", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing matches, got %d body=%s", st, string(body))
		}
		var matches []matchDTO
		_ = json.Unmarshal(body, &matches)
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d body=%s", len(matches), string(body))
		}
		m := matches[0]
		if m.Status != "pending" || m.IsConfirmed {
			t.Fatalf("expected pending unconfirmed match, got %+v", m)
		}
		if m.LostReportID != lostID || m.FoundReportID != foundID {
			t.Fatalf("match references wrong reports: %+v", m)
		}
		if m.MatchScore < 90 {
			t.Fatalf("expected near-perfect score, got %v", m.MatchScore)
		}
		if m.MatchReasons == "" || m.Lost == nil || m.Found == nil {
			t.Fatalf("expected reasons and embedded reports: %+v", m)
		}
		matchID = m.ID
	}

	// 5) Ambas partes reciben notificación match_found
	{
		st, body := doReq(t, ts.URL, "GET", "/notifications/unread-count", finderID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 unread count, got %d", st)
		}
		var resp struct {
			UnreadCount int `json:"unread_count"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.UnreadCount != 1 {
			t.Fatalf("expected 1 unread for finder, got %d", resp.UnreadCount)
		}
	}

	// 6) Un tercero no participa: 403
	{
		st, _ := doReq(t, ts.URL, "GET", "/matches/"+matchID, "stranger-1", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-participant, got %d", st)
		}
	}

	// 7) Owner confirma
	{
		st, body := doReq(t, ts.URL, "POST", "/matches/"+matchID+"/confirm", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 confirm, got %d body=%s", st, string(body))
		}
		var m matchDTO
		_ = json.Unmarshal(body, &m)
		if m.Status != "confirmed" || !m.IsConfirmed {
			t.Fatalf("expected confirmed, got %+v", m)
		}
	}

	// 8) Confirmar dos veces: 409 con el estado actual
	{
		st, body := doReq(t, ts.URL, "POST", "/matches/"+matchID+"/confirm", ownerID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on double confirm, got %d body=%s", st, string(body))
		}
		var resp struct {
			CurrentStatus string `json:"current_status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.CurrentStatus != "confirmed" {
			t.Fatalf("expected current_status confirmed, got %s", string(body))
		}
	}

	// 9) El reporte quedó matched
	{
		st, body := doReq(t, ts.URL, "GET", "/lost-reports/"+lostID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get lost report, got %d", st)
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "matched" {
			t.Fatalf("expected matched lost report, got %s", resp.Status)
		}
	}

	// 10) Resolve cierra match y reportes; repetirlo es no-op exitoso
	{
		st, body := doReq(t, ts.URL, "POST", "/matches/"+matchID+"/resolve", finderID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 resolve, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "POST", "/matches/"+matchID+"/resolve", finderID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected idempotent resolve 200, got %d", st)
		}

		st, body = doReq(t, ts.URL, "GET", "/lost-reports/"+lostID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get lost report, got %d", st)
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "resolved" {
			t.Fatalf("expected resolved lost report, got %s", resp.Status)
		}
	}

	// 11) El owner puede marcar sus notificaciones como leídas
	{
		st, body := doReq(t, ts.URL, "POST", "/notifications/read-all", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 read-all, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/notifications/unread-count", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 unread count, got %d", st)
		}
		var resp struct {
			UnreadCount int `json:"unread_count"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.UnreadCount != 0 {
			t.Fatalf("expected 0 unread after read-all, got %d", resp.UnreadCount)
		}
	}
}

func TestHTTP_DuplicateLostReport_Conflict(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	payload := map[string]any{
		"pet_name":           "Luna",
		"pet_type":           "cat",
		"last_seen_location": "5th Avenue",
		"last_seen_date":     "2025-08-03",
	}
	createLostReport(t, ts.URL, "owner-1", payload)

	st, _ := doReq(t, ts.URL, "POST", "/lost-reports/", "owner-1", payload)
	if st != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate active lost report, got %d", st)
	}
}

func TestHTTP_RejectedMatch_KeepsReportsActive(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	lostID := createLostReport(t, ts.URL, "owner-1", map[string]any{
		"pet_name":           "Max",
		"pet_type":           "dog",
		"breed":              "labrador",
		"last_seen_location": "Riverside",
		"last_seen_date":     "2025-08-05",
	})
	createFoundReport(t, ts.URL, "finder-1", map[string]any{
		"pet_type":       "dog",
		"breed":          "labrador",
		"location_found": "Riverside",
		"date_found":     "2025-08-06",
		"contact_phone":  "+1 555 0100",
	})

	st, body := doReq(t, ts.URL, "GET", "/matches/", "finder-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing matches, got %d", st)
	}
	var matches []matchDTO
	_ = json.Unmarshal(body, &matches)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	// el finder descarta el candidato
	st, _ = doReq(t, ts.URL, "POST", "/matches/"+matches[0].ID+"/reject", "finder-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 reject, got %d", st)
	}

	// los reportes siguen activos para otros candidatos
	st, body = doReq(t, ts.URL, "GET", "/lost-reports/"+lostID, "owner-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get lost report, got %d", st)
	}
	var resp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Status != "active" {
		t.Fatalf("expected active lost report after reject, got %s", resp.Status)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
}

type matchDTO struct {
	ID            string  `json:"id"`
	LostReportID  string  `json:"lost_report_id"`
	FoundReportID string  `json:"found_report_id"`
	MatchScore    float64 `json:"match_score"`
	MatchReasons  string  `json:"match_reasons"`
	Status        string  `json:"status"`
	IsConfirmed   bool    `json:"is_confirmed"`
	Lost          *struct {
		ID string `json:"id"`
	} `json:"lost_report"`
	Found *struct {
		ID string `json:"id"`
	} `json:"found_report"`
}

func createLostReport(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/lost-reports/", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create lost report, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create lost report: missing id body=%s", string(body))
	}
	return resp.ID
}

func createFoundReport(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/found-reports/", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create found report, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create found report: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
