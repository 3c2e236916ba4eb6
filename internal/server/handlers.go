package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/pacer/internal/model"
)

// Operation handlers answer with the post-operation status so the UI can
// render the new session without a second round trip. Unknown preset ids
// are no-ops per the engine contract, not errors.

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.engine.Start()
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.engine.Pause()
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.engine.Reset()
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleResync(w http.ResponseWriter, r *http.Request) {
	s.engine.Resync()
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleToggleMute(w http.ResponseWriter, r *http.Request) {
	s.engine.ToggleMute()
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleToggleKeepAwake(w http.ResponseWriter, r *http.Request) {
	s.engine.ToggleKeepAwake()
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleWakeLockRevoked(w http.ResponseWriter, r *http.Request) {
	s.engine.WakeLockRevoked()
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleSelectPreset(w http.ResponseWriter, r *http.Request) {
	s.engine.SelectPreset(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Presets())
}

type createPresetRequest struct {
	BaseID string `json:"baseId"`
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	p, ok := s.engine.AddPreset(req.BaseID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown base preset"})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	var p model.IntervalPreset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	p.ID = chi.URLParam(r, "id")

	if err := s.engine.UpdatePreset(p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Presets())
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	s.engine.DeletePreset(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, s.engine.Presets())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
