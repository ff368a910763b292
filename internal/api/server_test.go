// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"loan-eligibility-workers/internal/common/config"
	"loan-eligibility-workers/internal/common/logger"
	"loan-eligibility-workers/internal/common/observability"
	"loan-eligibility-workers/internal/eligibility"
	"loan-eligibility-workers/internal/eligibility/classifier"
	"loan-eligibility-workers/internal/eligibility/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

// capturingClassifier approves on the credit flag and remembers the last vector it saw.
type capturingClassifier struct {
	mu   sync.Mutex
	last features.FeatureVector
}

func (c *capturingClassifier) Predict(ctx context.Context, v features.FeatureVector) (classifier.Label, error) {
	c.mu.Lock()
	c.last = v
	c.mu.Unlock()
	if v[features.IdxCreditFlag] == 1 {
		return "Y", nil
	}
	return "N", nil
}

func newTestServer(t *testing.T, c classifier.Classifier) *Server {
	log := logger.NewTestLogger(t)
	obs := observability.New("api-test", config.TracingConfig{}, log)
	t.Cleanup(obs.Shutdown)
	return NewServer(config.ServerConfig{Address: ":0"}, eligibility.NewEvaluator(c, log), obs, log)
}

func doRequest(t *testing.T, s *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// ==========================
// Predict Endpoint Tests
// ==========================

func TestPredict_JSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		approved bool
		result   string
		status   string
	}{
		{
			name:     "good credit",
			body:     `{"credit":"820","ApplicantIncome":"6000","LoanAmount":"150","dependents":"2","married":"Yes"}`,
			approved: true,
			result:   "Eligible for loan",
			status:   "Approved",
		},
		{
			name:     "numeric credit",
			body:     `{"credit":900}`,
			approved: true,
			result:   "Eligible for loan",
			status:   "Approved",
		},
		{
			name:     "defaults only",
			body:     `{}`,
			approved: false,
			result:   "Not eligible",
			status:   "Rejected",
		},
		{
			name:     "empty body",
			body:     ``,
			approved: false,
			result:   "Not eligible",
			status:   "Rejected",
		},
		{
			name:     "malformed fields still answer",
			body:     `{"credit":"excellent","ApplicantIncome":"lots","LoanAmount":null}`,
			approved: false,
			result:   "Not eligible",
			status:   "Rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &capturingClassifier{})

			rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", "application/json", tt.body)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var resp PredictResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.approved, resp.Approved)
			assert.Equal(t, tt.result, resp.Result)
			assert.Equal(t, tt.status, resp.Status)
			assert.True(t, resp.Recognized)
		})
	}
}

func TestPredict_AppliesFormDefaults(t *testing.T) {
	c := &capturingClassifier{}
	s := newTestServer(t, c)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", "application/json", `{"credit":"820"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	want := features.Encode(features.RawApplication{"credit": "820"}.WithDefaults(features.FormDefaults))
	assert.Equal(t, want, c.last)
}

func TestPredict_Form(t *testing.T) {
	s := newTestServer(t, &capturingClassifier{})
	form := url.Values{"credit": {"950"}, "gender": {"Female"}}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", "application/x-www-form-urlencoded", form.Encode())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PredictResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Approved)
	assert.Equal(t, "Eligible for loan", resp.Result)
}

func TestPredict_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"credit":`},
		{"array", `[1,2,3]`},
		{"string", `"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &capturingClassifier{})

			rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", "application/json", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, "INPUT_VALIDATION_FAILED", resp.Code)
		})
	}
}

func TestPredict_ClassificationFailureHidesCause(t *testing.T) {
	failing := classifier.Func(func(ctx context.Context, v features.FeatureVector) (classifier.Label, error) {
		return nil, errors.New("dial tcp 10.0.0.5:9000: connection refused")
	})
	s := newTestServer(t, failing)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/predict", "application/json", `{"credit":"820"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "classification failed", resp.Error)
	assert.Equal(t, "CLASSIFICATION_FAILED", resp.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &capturingClassifier{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/predict", "", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ==========================
// Health, Readiness, Metrics
// ==========================

func TestHealth(t *testing.T) {
	s := newTestServer(t, &capturingClassifier{})

	rec := doRequest(t, s, http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestReady(t *testing.T) {
	s := newTestServer(t, &capturingClassifier{})
	s.AddReadinessCheck("postgres", func(ctx context.Context) error { return nil })

	rec := doRequest(t, s, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	s.AddReadinessCheck("redis", func(ctx context.Context) error { return errors.New("redis ping failed") })

	rec = doRequest(t, s, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "not_ready", body["status"])
	failures := body["failures"].(map[string]interface{})
	assert.Equal(t, "redis ping failed", failures["redis"])
	assert.NotContains(t, failures, "postgres")
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, &capturingClassifier{})
	doRequest(t, s, http.MethodPost, "/api/v1/predict", "application/json", `{"credit":"820"}`)

	rec := doRequest(t, s, http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eligibility_decisions_total")
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := newTestServer(t, &capturingClassifier{})
	s.httpServer.Addr = "127.0.0.1:0"

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}
