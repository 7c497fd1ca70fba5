package supabase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet3d-backend/internal/config"
	"pet3d-backend/internal/supabase"
)

type recorded struct {
	method string
	path   string
	body   []byte
	header http.Header
}

func recordingServer(t *testing.T, status int, response string) (*httptest.Server, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: body, header: r.Header.Clone()})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestStorageClientPut(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusOK, `{"Key":"pet3d-assets/models/u1/m1.glb"}`)
	store, err := supabase.NewStorageClient(srv.URL+"/", "service-key", "pet3d-assets")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "models/u1/m1.glb", []byte("glTF"), "model/gltf-binary")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/pet3d-assets/models/u1/m1.glb", url)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/storage/v1/object/pet3d-assets/models/u1/m1.glb", reqs[0].path)
	assert.Equal(t, []byte("glTF"), reqs[0].body)
}

func TestStorageClientPutRejectsEmpty(t *testing.T) {
	store, err := supabase.NewStorageClient("https://project.supabase.co", "key", "pet3d-assets")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "models/x.glb", nil, "model/gltf-binary")
	assert.Error(t, err)
}

func TestNewStorageClientRequiresBucket(t *testing.T) {
	_, err := supabase.NewStorageClient("https://project.supabase.co", "key", "")
	assert.Error(t, err)
}

func TestNotificationSinkInsertsRow(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusCreated, `[]`)
	client, err := supabase.NewClient(&config.Config{SupabaseURL: srv.URL, SupabasePublishableKey: "anon"})
	require.NoError(t, err)

	sink := supabase.NewNotificationSink(client, "")
	require.NoError(t, sink.Notify(context.Background(), "New order", "Order PET3D-1-ABCDEF"))

	var insert *recorded
	for _, r := range requests() {
		if r.path == "/rest/v1/operator_notifications" {
			r := r
			insert = &r
		}
	}
	require.NotNil(t, insert)
	assert.Equal(t, http.MethodPost, insert.method)

	var row map[string]interface{}
	require.NoError(t, json.Unmarshal(insert.body, &row))
	assert.Equal(t, "New order", row["title"])
	assert.Equal(t, "Order PET3D-1-ABCDEF", row["content"])
}
