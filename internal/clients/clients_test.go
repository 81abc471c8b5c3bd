package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/storyguard/config"
)

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.True(t, isConnectionError(errors.New("read: i/o timeout")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE")))
}

func TestNewOpensearchClientRequiresEndpoint(t *testing.T) {
	_, err := NewOpensearchClient(context.Background(), "dev", config.OpenSearchConfig{})
	require.Error(t, err)
}

func TestNewOpensearchClientLocal(t *testing.T) {
	client, err := NewOpensearchClient(context.Background(), "dev", config.OpenSearchConfig{
		Endpoint: "http://localhost:9200",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestIsOpensearchHealthy(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"cluster_name":"local","status":"green"}`))
	}))
	defer srv.Close()

	client, err := NewOpensearchClient(context.Background(), "dev", config.OpenSearchConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	assert.True(t, IsOpensearchHealthy(context.Background(), client))

	status.Store(http.StatusServiceUnavailable)
	assert.False(t, IsOpensearchHealthy(context.Background(), client))
}
