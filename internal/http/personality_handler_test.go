package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bigfive-insight/internal/domain"
	"bigfive-insight/internal/repository"
	"bigfive-insight/internal/service"
)

type mockResultRepo struct {
	results   map[string]domain.PersonalityResult
	createErr error
}

func newMockResultRepo() *mockResultRepo {
	return &mockResultRepo{results: make(map[string]domain.PersonalityResult)}
}

func (m *mockResultRepo) Create(_ context.Context, result domain.PersonalityResult) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.results[result.ID] = result
	return nil
}

func (m *mockResultRepo) FindByID(_ context.Context, id string) (domain.PersonalityResult, error) {
	result, ok := m.results[id]
	if !ok {
		return domain.PersonalityResult{}, repository.ErrNotFound
	}
	return result, nil
}

func setupPersonalityRouter(limit int, repo repository.ResultRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	insights := service.NewInsightService(nil, service.InsightConfig{}, logger)
	svc := service.NewPersonalityService(
		service.NewSlidingWindowLimiter(0),
		service.AdmissionPolicy{Limit: limit, Window: time.Hour},
		service.NewTraitScorer(nil),
		insights,
		repo,
		logger,
	)
	return NewRouter(logger, NewPersonalityHandler(logger, svc))
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	return performRawRequest(r, method, path, string(payload))
}

func performRawRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func testAnswers(n int, v any) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestPersonalityHandlerSubmit_Success(t *testing.T) {
	r := setupPersonalityRouter(5, newMockResultRepo())

	rec := performRequest(r, http.MethodPost, "/api/personality-test", map[string]any{
		"answers":      testAnswers(50, 4),
		"demographics": map[string]any{"name": "Ana", "careerStage": "junior"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["provenance"] != string(domain.ProvenanceLocal) {
		t.Fatalf("expected local provenance, got %v", body["provenance"])
	}
	scores, ok := body["scores"].(map[string]any)
	if !ok || len(scores) != 5 {
		t.Fatalf("expected 5 scores, got %v", body["scores"])
	}
	if scores["openness"] != 75.0 {
		t.Fatalf("expected openness 75, got %v", scores["openness"])
	}
	pcts := body["percentiles"].(map[string]any)
	if pcts["openness"] != 80.0 {
		t.Fatalf("expected openness percentile 80, got %v", pcts["openness"])
	}
	if id, _ := body["id"].(string); id == "" {
		t.Fatalf("expected result id")
	}
	if narrative, _ := body["narrative"].(string); !strings.Contains(narrative, "## Your Personality Profile") {
		t.Fatalf("unexpected narrative %q", narrative)
	}
}

func TestPersonalityHandlerSubmit_ValidationErrors(t *testing.T) {
	r := setupPersonalityRouter(1, nil)

	outOfRange := testAnswers(44, 3)
	outOfRange[10] = 7

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "malformed json", body: `{"answers": [1, 2`, wantCode: "invalid_request"},
		{name: "answers not array", body: `{"answers": "1,2,3"}`, wantCode: "invalid_request"},
		{name: "missing answers", body: `{}`, wantCode: "invalid_request"},
		{name: "wrong length", body: mustJSON(map[string]any{"answers": testAnswers(40, 3)}), wantCode: "invalid_length"},
		{name: "non numeric", body: mustJSON(map[string]any{"answers": testAnswers(44, true)}), wantCode: "invalid_type"},
		{name: "out of range", body: mustJSON(map[string]any{"answers": outOfRange}), wantCode: "out_of_range"},
		{name: "bad demographics", body: mustJSON(map[string]any{"answers": testAnswers(44, 3), "demographics": map[string]any{"age": 300}}), wantCode: "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performRawRequest(r, http.MethodPost, "/api/personality-test", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if body["success"] != false || body["code"] != tt.wantCode {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}

	// ninguna request invalida consumio el unico slot
	rec := performRequest(r, http.MethodPost, "/api/personality-test", map[string]any{"answers": testAnswers(44, 3)})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after invalid requests, got %d", rec.Code)
	}
}

func TestPersonalityHandlerSubmit_RateLimited(t *testing.T) {
	r := setupPersonalityRouter(2, nil)
	payload := map[string]any{"answers": testAnswers(44, 2)}

	for i := 0; i < 2; i++ {
		if rec := performRequest(r, http.MethodPost, "/api/personality-test", payload); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := performRequest(r, http.MethodPost, "/api/personality-test", payload)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", rec.Code, rec.Body.String())
	}

	if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("unexpected X-RateLimit-Limit %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("unexpected X-RateLimit-Remaining %q", got)
	}
	reset, err := strconv.ParseInt(rec.Header().Get("X-RateLimit-Reset"), 10, 64)
	if err != nil || reset <= time.Now().Unix() {
		t.Fatalf("unexpected X-RateLimit-Reset %q", rec.Header().Get("X-RateLimit-Reset"))
	}
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retry < 1 || retry > 3600 {
		t.Fatalf("unexpected Retry-After %q", rec.Header().Get("Retry-After"))
	}

	body := decodeBody(t, rec)
	if body["success"] != false || body["error"] != "Rate limit exceeded" {
		t.Fatalf("unexpected body %v", body)
	}
	details, ok := body["details"].(map[string]any)
	if !ok {
		t.Fatalf("missing details: %v", body)
	}
	if details["limit"] != 2.0 || details["window"] != 3600.0 || details["remaining"] != 0.0 {
		t.Fatalf("unexpected details %v", details)
	}
	if _, err := time.Parse(time.RFC3339, details["reset_at"].(string)); err != nil {
		t.Fatalf("reset_at not RFC3339: %v", details["reset_at"])
	}
}

func TestPersonalityHandlerSubmit_PersistFailure(t *testing.T) {
	repo := newMockResultRepo()
	repo.createErr = errors.New("db down")
	r := setupPersonalityRouter(5, repo)

	rec := performRequest(r, http.MethodPost, "/api/personality-test", map[string]any{"answers": testAnswers(50, 3)})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestPersonalityHandlerGetResult(t *testing.T) {
	repo := newMockResultRepo()
	r := setupPersonalityRouter(5, repo)

	rec := performRequest(r, http.MethodPost, "/api/personality-test", map[string]any{"answers": testAnswers(44, 5)})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	id := decodeBody(t, rec)["id"].(string)

	rec = performRequest(r, http.MethodGet, "/api/personality-test/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	result, ok := decodeBody(t, rec)["result"].(map[string]any)
	if !ok || result["id"] != id {
		t.Fatalf("unexpected result %v", result)
	}

	rec = performRequest(r, http.MethodGet, "/api/personality-test/6f1c2a8e-0000-4000-8000-000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPersonalityHandlerGetResult_StoreDisabled(t *testing.T) {
	r := setupPersonalityRouter(5, nil)
	rec := performRequest(r, http.MethodGet, "/api/personality-test/6f1c2a8e-0000-4000-8000-000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := setupPersonalityRouter(5, nil)
	rec := performRequest(r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
