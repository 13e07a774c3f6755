package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/example/participation-check/internal/repository"
	"github.com/example/participation-check/internal/usecase"
)

type stubVerifier struct {
	resp   *usecase.Response
	err    error
	rec    *repository.ParticipationRecord
	recErr error
	gotReq usecase.Request
}

func (s *stubVerifier) Verify(ctx context.Context, req usecase.Request) (*usecase.Response, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubVerifier) GetResult(ctx context.Context, requestID string) (*repository.ParticipationRecord, error) {
	if s.recErr != nil {
		return nil, s.recErr
	}
	return s.rec, nil
}

func newTestRouter(t *testing.T, v Verifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, v)
	return router
}

func TestPreflightRespondsWithCORSHeaders(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{})

	req := httptest.NewRequest(http.MethodOptions, "/process-image", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected permissive origin header, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); got != "OPTIONS,POST,GET" {
		t.Fatalf("unexpected methods header: %q", got)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["message"] != "CORS preflight successful" {
		t.Fatalf("unexpected preflight body: %v", body)
	}
}

func TestProcessImageReturnsPipelineResponse(t *testing.T) {
	v := &stubVerifier{
		resp: &usecase.Response{
			Participation:    true,
			Name:             "jane doe",
			NameMatch:        true,
			ExtractedNames:   [][]string{{"jane doe"}},
			SimilarityScores: []float64{},
			RequestID:        "req-1",
		},
	}
	router := newTestRouter(t, v)

	payload := map[string]string{
		"name":               "Jane Doe",
		"email":              "jane@example.com",
		"class_date":         "2024-09-01",
		"uploaded_image_key": "uploads/2024-09-01/jane doe.jpg",
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/process-image", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if v.gotReq.ClassDate != "2024-09-01" || v.gotReq.ImageKey != "uploads/2024-09-01/jane doe.jpg" {
		t.Fatalf("request not forwarded: %+v", v.gotReq)
	}

	var out usecase.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if !out.Participation || out.RequestID != "req-1" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatal("CORS headers missing on POST response")
	}
}

func TestProcessImageErrorRendersUniformEnvelope(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{err: usecase.ErrMissingFields})

	body, _ := json.Marshal(map[string]string{"email": "jane@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/process-image", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if out["participation"] != false {
		t.Fatalf("expected participation false, got %v", out["participation"])
	}
	if out["error"] != usecase.ErrMissingFields.Error() {
		t.Fatalf("unexpected error message: %v", out["error"])
	}
	// Evidence arrays must be present and empty, never null.
	for _, field := range []string{"extracted_names", "uploaded_faces", "reference_faces", "similarity_scores"} {
		arr, ok := out[field].([]interface{})
		if !ok {
			t.Fatalf("field %s is not an array: %v", field, out[field])
		}
		if len(arr) != 0 {
			t.Fatalf("field %s not empty: %v", field, arr)
		}
	}
}

func TestProcessImageMalformedBodyRendersEnvelope(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/process-image", bytes.NewReader([]byte("{not-json")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if out["participation"] != false || out["error"] == nil {
		t.Fatalf("unexpected envelope: %v", out)
	}
}

func TestResultsFound(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{
		rec: &repository.ParticipationRecord{RequestID: "req-9", Name: "jane doe", Participation: true},
	})

	req := httptest.NewRequest(http.MethodGet, "/results/req-9", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out repository.ParticipationRecord
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if out.RequestID != "req-9" || !out.Participation {
		t.Fatalf("unexpected record: %+v", out)
	}
}

func TestResultsNotFound(t *testing.T) {
	router := newTestRouter(t, &stubVerifier{recErr: errors.New("no rows")})

	req := httptest.NewRequest(http.MethodGet, "/results/unknown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
