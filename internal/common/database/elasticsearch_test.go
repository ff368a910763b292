// internal/common/database/elasticsearch_test.go
package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"loan-eligibility-workers/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeElasticsearch(t *testing.T, handler http.HandlerFunc) *ElasticsearchClient {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return c
}

func TestElasticsearchClient_Ping(t *testing.T) {
	c := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, c.Ping(context.Background()))
}

func TestElasticsearchClient_EnsureDecisionIndex_Creates(t *testing.T) {
	var created bool
	c := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			assert.Equal(t, "/eligibility-decisions", r.URL.Path)
			created = true
			_, _ = w.Write([]byte(`{"acknowledged":true,"index":"eligibility-decisions"}`))
		}
	})

	ok, err := c.EnsureDecisionIndex(context.Background(), "eligibility-decisions")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, created)
}

func TestElasticsearchClient_EnsureDecisionIndex_Exists(t *testing.T) {
	c := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	ok, err := c.EnsureDecisionIndex(context.Background(), "eligibility-decisions")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestElasticsearchClient_EnsureDecisionIndex_CreateFails(t *testing.T) {
	c := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_index_name_exception"},"status":400}`))
	})

	_, err := c.EnsureDecisionIndex(context.Background(), "Bad Index")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_index_name_exception")
}
