package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmap/internal/app"
	"stockmap/internal/core"
)

type testEnv struct {
	svc     app.ApplicationService
	handler http.Handler
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	registry, err := core.LoadRegistry(dir, filepath.Join(dir, "graphics"))
	require.NoError(t, err)
	items, err := core.LoadItemStore(filepath.Join(dir, "inventario_global.json"))
	require.NoError(t, err)
	placements := core.NewPlacementStore(registry)
	svc := app.NewAppService(items, registry, placements,
		core.NewQueryFacade(items, placements, registry), core.NewScanCart(items), nil)
	return &testEnv{svc: svc, handler: NewHandler(svc, "", ""), dataDir: dir}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListLevels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"Principal", "Nivel Dos"} {
		_, err := env.svc.AddLevel(ctx, app.AddLevelRequest{Name: name})
		require.NoError(t, err)
	}

	rec := env.get(t, "/api/bodegas")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"Principal", "Nivel Dos"}, names)
}

func TestListLevelsFallbackScan(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.dataDir, "yrz_nivel_dos.json"), []byte("[]"), 0o644))

	rec := env.get(t, "/api/bodegas")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"Nivel Dos"}, names)
}

func TestLevelPlacementsWireShape(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.AddLevel(ctx, app.AddLevelRequest{Name: "Principal"})
	require.NoError(t, err)
	_, err = env.svc.SwitchLevel(ctx, "Principal")
	require.NoError(t, err)
	_, err = env.svc.CreatePlacement(ctx, app.CreatePlacementRequest{X: 10, Y: 20, Name: "Estante A", Manager: "Marta"})
	require.NoError(t, err)

	rec := env.get(t, "/api/puntos/Principal")
	require.Equal(t, http.StatusOK, rec.Code)
	var points []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, "Estante A", points[0]["nombre"])
	assert.Equal(t, float64(15), points[0]["radio"])
	assert.Equal(t, "Marta", points[0]["encargado"])
	assert.Equal(t, "0000001", points[0]["codigo"])
	assert.Contains(t, points[0], "suplementos")
}

func TestLevelPlacementsUnknownLevelIsEmptyArray(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/api/puntos/Fantasma")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestLevelImage(t *testing.T) {
	env := newTestEnv(t)
	graphics := filepath.Join(env.dataDir, "graphics")
	require.NoError(t, os.MkdirAll(graphics, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(graphics, "nivel_dos.png"), []byte("png"), 0o644))

	rec := env.get(t, "/api/imagen/Nivel%20Dos")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = env.get(t, "/api/imagen/Fantasma")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInventoryWireShape(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.CreateItem(context.Background(), app.CreateItemRequest{Code: "100", Name: "Correa", Stock: 7})
	require.NoError(t, err)

	rec := env.get(t, "/api/inventario")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"100":{"nombre":"Correa","stock":7}}`, rec.Body.String())
}

func TestIntegrityEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/api/integrity")
	require.Equal(t, http.StatusOK, rec.Code)
	var report core.IntegrityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Empty(t, report.Issues)
}

func TestCORSAllowAllByDefault(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/api/health")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedList(t *testing.T) {
	env := newTestEnv(t)
	restricted := NewHandler(env.svc, "", "http://allowed.local")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://other.local")
	rec := httptest.NewRecorder()
	restricted.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://allowed.local")
	rec = httptest.NewRecorder()
	restricted.ServeHTTP(rec, req)
	assert.Equal(t, "http://allowed.local", rec.Header().Get("Access-Control-Allow-Origin"))
}
