package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30.044400,31.235700", r.URL.Query().Get("latlng"))
		assert.Equal(t, "key-1", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Tahrir Square, Cairo"},{"formatted_address":"Cairo"}]}`))
	}))
	defer srv.Close()

	g := NewGeocoder("key-1", time.Second, zap.NewNop(), WithEndpoint(srv.URL))
	got, err := g.Reverse(context.Background(), 30.0444, 31.2357)
	require.NoError(t, err)
	assert.Equal(t, "Tahrir Square, Cairo", got)
}

func TestReverse_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	g := NewGeocoder("key-1", time.Second, zap.NewNop(), WithEndpoint(srv.URL))
	got, err := g.Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReverse_Disabled(t *testing.T) {
	g := NewGeocoder("", time.Second, zap.NewNop(), WithEndpoint("http://127.0.0.1:1"))
	assert.False(t, g.Enabled())

	got, err := g.Reverse(context.Background(), 30, 31)
	require.NoError(t, err)
	assert.Empty(t, got)
}
