package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
	"github.com/commu-practical/helpmap/internal/usecase/area"
	healthuc "github.com/commu-practical/helpmap/internal/usecase/health"
)

// --- Mocks ---

type lookupCall struct {
	town             string
	page, distanceKm int
}

type mockAreaReporter struct {
	lookupFn func(town string, page, distanceKm int) (area.Report, error)
	calls    []lookupCall
}

func (m *mockAreaReporter) Lookup(_ context.Context, town string, page, distanceKm int) (area.Report, error) {
	m.calls = append(m.calls, lookupCall{town: town, page: page, distanceKm: distanceKm})
	return m.lookupFn(town, page, distanceKm)
}

type mockHealthChecker struct {
	report healthuc.Report
}

func (m *mockHealthChecker) Check(context.Context) healthuc.Report { return m.report }

var helsinki = domain.Location{Name: "Helsinki, Uusimaa, Finland", Lat: 60.1699, Long: 24.9384}

func okReport() area.Report {
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	category := "help_with_groceries"
	return area.Report{
		Town:     "Helsinki",
		Location: helsinki,
		Result: notice.SearchResult{
			Successful: true,
			DistanceKm: 50,
			Notices: []notice.Notice{{
				ID:            "42",
				Title:         "Groceries",
				Type:          "looking_for_help",
				CreatedAt:     &created,
				Position:      &notice.Position{Lat: 60.1699, Long: 24.9384},
				MainCategory:  &category,
				SubCategories: []string{"shopping"},
			}},
			Paginator: notice.PaginatorInfo{Count: 1, Total: 1, CurrentPage: 1, LastPage: 1, PerPage: 25},
		},
		Summary:          "Mostly groceries.",
		SummaryBasis:     area.BasisRecent,
		SummaryPostCount: 1,
		Outcome:          area.OutcomeOK,
	}
}

func newTestRouter(areas AreaReporter) http.Handler {
	health := &mockHealthChecker{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}}
	return NewRouter(NewServer(areas, health, nil), nil)
}

func doGet(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return rec, body
}

// --- GET /v1/area ---

func TestGetArea_OK(t *testing.T) {
	areas := &mockAreaReporter{lookupFn: func(string, int, int) (area.Report, error) { return okReport(), nil }}
	rec, body := doGet(t, newTestRouter(areas), "/v1/area?town=Helsinki")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("unexpected content type %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if len(areas.calls) != 1 || areas.calls[0] != (lookupCall{town: "Helsinki", page: 1, distanceKm: 0}) {
		t.Errorf("unexpected lookup calls: %+v", areas.calls)
	}
	if body["distance_km"] != float64(50) {
		t.Errorf("expected distance_km 50, got %v", body["distance_km"])
	}

	notices := body["notices"].([]any)
	if len(notices) != 1 {
		t.Fatalf("expected 1 notice, got %d", len(notices))
	}
	n := notices[0].(map[string]any)
	if n["category_label"] != "Help With Groceries" {
		t.Errorf("unexpected category_label %v", n["category_label"])
	}
	if n["type_label"] != "Looking For Help" {
		t.Errorf("unexpected type_label %v", n["type_label"])
	}
	if n["created_date"] != "2025-06-01" {
		t.Errorf("unexpected created_date %v", n["created_date"])
	}
	if n["distance_km"] != float64(0) {
		t.Errorf("expected distance_km 0 for a notice at the town centre, got %v", n["distance_km"])
	}

	summary := body["summary"].(map[string]any)
	if summary["text"] != "Mostly groceries." || summary["basis"] != "recent" || summary["post_count"] != float64(1) {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestGetArea_PageAndDistanceClamped(t *testing.T) {
	areas := &mockAreaReporter{lookupFn: func(string, int, int) (area.Report, error) { return okReport(), nil }}
	router := newTestRouter(areas)

	doGet(t, router, "/v1/area?town=Espoo&page=0&distance=-5")
	doGet(t, router, "/v1/area?town=Espoo&page=3&distance=100")

	want := []lookupCall{
		{town: "Espoo", page: 1, distanceKm: 1},
		{town: "Espoo", page: 3, distanceKm: 100},
	}
	for i, w := range want {
		if areas.calls[i] != w {
			t.Errorf("call %d: expected %+v, got %+v", i, w, areas.calls[i])
		}
	}
}

func TestGetArea_InvalidParam(t *testing.T) {
	areas := &mockAreaReporter{}
	rec, body := doGet(t, newTestRouter(areas), "/v1/area?town=Espoo&page=abc")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != codeBadRequest {
		t.Errorf("unexpected code %v", body["code"])
	}
	if len(areas.calls) != 0 {
		t.Error("lookup must not run for invalid params")
	}
}

func TestGetArea_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"blank town", domain.ErrInvalidTown, http.StatusBadRequest, codeInvalidTown, msgInvalidTown},
		{"not found", fmt.Errorf("resolve: %w", domain.ErrLocationNotFound), http.StatusNotFound,
			codeLocationNotFound, area.MsgNotFound},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, codeInternalError, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			areas := &mockAreaReporter{lookupFn: func(string, int, int) (area.Report, error) {
				return area.Report{}, tc.err
			}}
			rec, body := doGet(t, newTestRouter(areas), "/v1/area?town=x")

			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if body["code"] != tc.wantCode || body["message"] != tc.wantMsg {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestGetArea_UpstreamFailure(t *testing.T) {
	areas := &mockAreaReporter{lookupFn: func(town string, page, _ int) (area.Report, error) {
		return area.Report{
			Town:     town,
			Location: helsinki,
			Result:   notice.Failed(200, page, 25, domain.KindAuth, "Unauthenticated."),
			Recent:   []notice.Notice{},
			Message:  area.MsgAuthFailure,
			Outcome:  area.OutcomeUpstreamFailure,
		}, nil
	}}
	rec, body := doGet(t, newTestRouter(areas), "/v1/area?town=Helsinki&page=2")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if body["error_kind"] != string(domain.KindAuth) || body["message"] != area.MsgAuthFailure {
		t.Errorf("unexpected body %+v", body)
	}
	if _, ok := body["summary"]; ok {
		t.Error("summary must be absent on failure")
	}
	paginator := body["paginator"].(map[string]any)
	if paginator["current_page"] != float64(2) || paginator["total"] != float64(0) {
		t.Errorf("unexpected paginator %+v", paginator)
	}
}

func TestGetArea_Empty(t *testing.T) {
	areas := &mockAreaReporter{lookupFn: func(town string, _, _ int) (area.Report, error) {
		return area.Report{
			Town:     town,
			Location: helsinki,
			Result:   notice.SearchResult{Successful: true, DistanceKm: 25, Notices: []notice.Notice{}},
			Message:  area.MsgEmpty,
			Outcome:  area.OutcomeEmpty,
		}, nil
	}}
	rec, body := doGet(t, newTestRouter(areas), "/v1/area?town=Helsinki")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["message"] != area.MsgEmpty || body["outcome"] != "empty" {
		t.Errorf("unexpected body %+v", body)
	}
	if notices := body["notices"].([]any); len(notices) != 0 {
		t.Errorf("expected empty notices, got %v", notices)
	}
}

// --- Other routes ---

func TestHealthCheck(t *testing.T) {
	rec, body := doGet(t, newTestRouter(&mockAreaReporter{}), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected status %v", body["status"])
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	health := &mockHealthChecker{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}}
	router := NewRouter(NewServer(&mockAreaReporter{}, health, nil), nil)
	rec, _ := doGet(t, router, "/health")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&mockAreaReporter{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	rec, body := doGet(t, newTestRouter(&mockAreaReporter{}), "/v2/nothing")

	if rec.Code != http.StatusNotFound || body["code"] != "not_found" {
		t.Errorf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestRecoverer(t *testing.T) {
	areas := &mockAreaReporter{lookupFn: func(string, int, int) (area.Report, error) { panic("boom") }}
	rec, body := doGet(t, newTestRouter(areas), "/v1/area?town=x")

	if rec.Code != http.StatusInternalServerError || body["code"] != codeInternalError {
		t.Errorf("unexpected response %d %+v", rec.Code, body)
	}
}

func TestHeadline(t *testing.T) {
	tests := map[string]string{
		"help_with_groceries": "Help With Groceries",
		"uncategorized":       "Uncategorized",
		"offer":               "Offer",
		"  odd__spacing_ ":    "Odd Spacing",
	}
	for in, want := range tests {
		if got := headline(in); got != want {
			t.Errorf("headline(%q) = %q, want %q", in, got, want)
		}
	}
}
