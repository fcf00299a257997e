// Package control is the local HTTP command surface: the backend half of
// the popup and options UIs. Commands are idempotent and payloads are
// checked for shape only.
package control

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/tilesift/config"
	"github.com/hazyhaar/tilesift/scan"
)

// Engine is what the control surface needs from the agent. Implementations
// must be callable from HTTP handler goroutines; the agent bridges onto its
// run loop internally.
type Engine interface {
	SetReveal(on bool)
	Rescan()
	Stats() scan.Stats
	Settings() config.Settings
	SaveSettings(s config.Settings) error
}

// NewServer builds the control HTTP server. It binds to a localhost address;
// this is a collaborator boundary, not a public API.
func NewServer(listen string, eng Engine, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"stats":  eng.Stats(),
			"reveal": eng.Settings().Reveal,
		})
	})

	r.Post("/api/reveal", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			On *bool `json:"on"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.On == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected {\"on\": bool}"})
			return
		}
		eng.SetReveal(*body.On)
		writeJSON(w, http.StatusOK, map[string]bool{"reveal": *body.On})
	})

	r.Post("/api/rescan", func(w http.ResponseWriter, req *http.Request) {
		eng.Rescan()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "rescan scheduled"})
	})

	r.Get("/api/settings", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, eng.Settings())
	})

	r.Put("/api/settings", func(w http.ResponseWriter, req *http.Request) {
		var s config.Settings
		if err := json.NewDecoder(req.Body).Decode(&s); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed settings"})
			return
		}
		if err := eng.SaveSettings(s); err != nil {
			logger.Warn("control: save settings failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save failed"})
			return
		}
		writeJSON(w, http.StatusOK, s)
	})

	return &http.Server{Addr: listen, Handler: r}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
