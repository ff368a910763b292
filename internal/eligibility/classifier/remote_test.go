// internal/eligibility/classifier/remote_test.go
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-eligibility-workers/internal/eligibility/features"
)

func newModelServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteClassifier_Predict(t *testing.T) {
	var received remoteRequest
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"label":"Y"}`))
	})

	c := NewRemoteClassifier(srv.URL, time.Second)
	v := features.Encode(features.RawApplication{features.FieldCredit: "820", features.FieldLoanAmount: "150"})

	label, err := c.Predict(context.Background(), v)

	require.NoError(t, err)
	assert.Equal(t, "Y", label)
	require.Len(t, received.Features, features.Size)
	assert.Equal(t, v.Slice(), received.Features)
}

func TestRemoteClassifier_NumericLabel(t *testing.T) {
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":1}`))
	})

	label, err := NewRemoteClassifier(srv.URL, time.Second).Predict(context.Background(), features.FeatureVector{})

	require.NoError(t, err)
	assert.Equal(t, 1.0, label)
}

func TestRemoteClassifier_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusServiceUnavailable, `model warming up`, "503"},
		{"bad request", http.StatusBadRequest, `{"error":"bad shape"}`, "400"},
		{"malformed body", http.StatusOK, `{"label":`, "decode model response"},
		{"missing label", http.StatusOK, `{"probability":0.7}`, "no label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			label, err := NewRemoteClassifier(srv.URL, time.Second).Predict(context.Background(), features.FeatureVector{})

			require.Error(t, err)
			assert.Nil(t, label)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRemoteClassifier_MissingLabelSentinel(t *testing.T) {
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := NewRemoteClassifier(srv.URL, time.Second).Predict(context.Background(), features.FeatureVector{})
	assert.True(t, errors.Is(err, ErrMissingLabel))
}

func TestRemoteClassifier_Timeout(t *testing.T) {
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"label":"Y"}`))
	})

	_, err := NewRemoteClassifier(srv.URL, 20*time.Millisecond).Predict(context.Background(), features.FeatureVector{})
	assert.Error(t, err)
}

func TestRemoteClassifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemoteClassifier(url, time.Second).Predict(context.Background(), features.FeatureVector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call model server")
}
