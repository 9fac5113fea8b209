package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluffgo/pluffgo/pkg/pluff"
)

func TestAdminServer_Health(t *testing.T) {
	pluff.Init()
	defer pluff.Destroy()
	pctx := pluff.NewContext(nil, nil, nil)
	defer pctx.Destroy(context.Background())

	s := newAdminServer(pctx)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAdminServer_PluginsEmpty(t *testing.T) {
	pluff.Init()
	defer pluff.Destroy()
	pctx := pluff.NewContext(nil, nil, nil)
	defer pctx.Destroy(context.Background())

	s := newAdminServer(pctx)
	req := httptest.NewRequest(http.MethodGet, "/plugins", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 0, body["count"])
}

func TestAdminServer_PluginByID(t *testing.T) {
	pluff.Init()
	defer pluff.Destroy()
	pctx := pluff.NewContext(nil, nil, nil)
	defer pctx.Destroy(context.Background())

	d, err := pluff.NewDescriptor(pluff.Descriptor{ID: "com.example.a"})
	require.NoError(t, err)
	_, err = pctx.Install(d)
	require.NoError(t, err)

	s := newAdminServer(pctx)

	req := httptest.NewRequest(http.MethodGet, "/plugins/com.example.a", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "com.example.a", body["id"])
	assert.Equal(t, "INSTALLED", body["state"])

	req = httptest.NewRequest(http.MethodGet, "/plugins/com.example.missing", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminServer_PluginStartStop(t *testing.T) {
	pluff.Init()
	defer pluff.Destroy()
	pctx := pluff.NewContext(nil, nil, nil)
	defer pctx.Destroy(context.Background())

	d, err := pluff.NewDescriptor(pluff.Descriptor{ID: "com.example.a"})
	require.NoError(t, err)
	_, err = pctx.Install(d)
	require.NoError(t, err)

	s := newAdminServer(pctx)

	req := httptest.NewRequest(http.MethodPost, "/plugins/com.example.a/start", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ACTIVE", body["state"])

	req = httptest.NewRequest(http.MethodPost, "/plugins/com.example.a/stop", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RESOLVED", body["state"])

	req = httptest.NewRequest(http.MethodPost, "/plugins/com.example.missing/start", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
