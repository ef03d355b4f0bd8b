package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queerlil/handles/internal/domain"
)

func TestHandleGatewayAdd(t *testing.T) {
	var queries []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bsky-handle.ps1", r.URL.Path)
		queries = append(queries, r.URL.Query())
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("already taken"))
	}))
	defer srv.Close()

	gw := NewHandleGateway(srv.URL+"/bsky-handle.ps1", "s3cret")
	result, err := gw.Add(context.Background(), "nick", "did:plc:alice")
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, result.StatusCode)
	assert.Equal(t, "already taken", result.Body)
	require.Len(t, queries, 1)
	assert.Equal(t, "nick", queries[0].Get("domain"))
	assert.Equal(t, "did:plc:alice", queries[0].Get("did"))
	assert.False(t, queries[0].Has("remove"))
}

func TestHandleGatewayRemoveSendsSecret(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	gw := NewHandleGateway(srv.URL, "s3cret")
	result, err := gw.Remove(context.Background(), "nick", "did:plc:alice")
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, result.StatusCode)
	assert.Equal(t, "s3cret", query.Get("remove"))
	assert.Equal(t, "nick", query.Get("domain"))
}

func TestHandleGatewayTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	gw := NewHandleGateway(endpoint, "")
	_, err := gw.Add(context.Background(), "nick", "did:plc:alice")
	assert.Error(t, err)
}

func TestHandleGatewayWaitsForSlowEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("registered"))
	}))
	defer srv.Close()

	gw := NewHandleGateway(srv.URL, "")
	assert.Zero(t, gw.client.Timeout)

	result, err := gw.Add(context.Background(), "nick", "did:plc:alice")
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeResult{StatusCode: http.StatusCreated, Body: "registered"}, result)
}

func TestHandleGatewayHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHandleGateway(srv.URL, "").Add(ctx, "nick", "did:plc:alice")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListingGateway(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handles_records.json")
	listing := `[{"alice.is.vgay.fyi":"did:plc:alice"},{"bob.hasa.gripe":"did:plc:bob"},{}]`
	require.NoError(t, os.WriteFile(path, []byte(listing), 0o644))

	gw := NewListingGateway(path)
	entries, err := gw.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice.is.vgay.fyi", entries[0].Handle)
	assert.Equal(t, "did:plc:alice", entries[0].Owner)
	assert.Equal(t, "bob.hasa.gripe", entries[1].Handle)

	// the file is not cached between calls
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	entries, err = gw.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = NewListingGateway(filepath.Join(t.TempDir(), "missing.json")).List(context.Background())
	assert.Error(t, err)
}

func TestPageFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<p>page</p>"))
	}))
	defer srv.Close()

	f := NewPageFetcher(srv.Client())
	body, err := f.Fetch(context.Background(), srv.URL+"/raw")
	require.NoError(t, err)
	assert.Equal(t, "<p>page</p>", body)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}
