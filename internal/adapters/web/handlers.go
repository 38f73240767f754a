package web

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"stockmap/internal/app"
	"stockmap/internal/core"
)

// Handler serves the read-only warehouse mirror: level list, placement data
// and floor-plan images in the exact shapes the interactive map expects, plus
// the static single-page frontend.
type Handler struct {
	svc       app.ApplicationService
	staticDir string
}

// NewHandler creates and wires the chi router with all routes. staticDir may
// be empty when no frontend bundle is installed; the API still serves.
func NewHandler(svc app.ApplicationService, staticDir, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc, staticDir: staticDir}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)
	r.Get("/api/bodegas", h.listLevels)
	r.Get("/api/puntos/{bodega}", h.levelPlacements)
	r.Get("/api/imagen/{bodega}", h.levelImage)
	r.Get("/api/inventario", h.inventory)
	r.Get("/api/integrity", h.integrity)

	if staticDir != "" {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
			http.StripPrefix("/static", fileServer).ServeHTTP(w, req)
		})
		r.Get("/", h.index)
	}

	return r
}

// health reports liveness in the shape the desktop control panel polls.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// listLevels returns the registered level names as a bare JSON array, in
// registration order. When nothing is registered the data directory is
// scanned for yrz_*.json files and their names are derived instead.
func (h *Handler) listLevels(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.LevelNames(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

// levelPlacements returns a level's placements as a bare JSON array in the
// persisted wire shape. An unknown level is an empty array, not a 404, so
// the map renders blank instead of erroring on freshly created levels.
func (h *Handler) levelPlacements(w http.ResponseWriter, r *http.Request) {
	placements, err := h.svc.LevelPlacements(r.Context(), levelParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if placements == nil {
		placements = []*core.Placement{}
	}
	writeJSON(w, placements)
}

// levelImage serves the level's floor-plan PNG.
func (h *Handler) levelImage(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.LevelImage(r.Context(), levelParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// inventory returns the global item table in the persisted wire shape:
// an object mapping item code to {nombre, stock}.
func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make(map[string]core.Item, len(res.Items))
	for _, it := range res.Items {
		out[it.Code] = it
	}
	writeJSON(w, out)
}

// integrity returns the cross-file consistency report.
func (h *Handler) integrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.CheckIntegrity(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if report.Issues == nil {
		report.Issues = []core.IntegrityIssue{}
	}
	writeJSON(w, report)
}

// levelParam extracts the {bodega} URL parameter. Level names carry spaces,
// so the segment arrives percent-encoded and must be unescaped.
func levelParam(r *http.Request) string {
	raw := chi.URLParam(r, "bodega")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// index serves the frontend entry point.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticDir, "index.html")
	if _, err := os.Stat(path); err != nil {
		writeError(w, r, "index.html not found in static directory", "NOT_FOUND", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}
