package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/davidbz/freeloader/internal/domain"
	"github.com/davidbz/freeloader/internal/observability"
	"go.uber.org/zap"
)

// Handler handles HTTP requests.
type Handler struct {
	artifacts domain.ArtifactStore
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(artifacts domain.ArtifactStore) *Handler {
	return &Handler{
		artifacts: artifacts,
	}
}

// layerView carries the parts of the published layer the read endpoints serve.
type layerView struct {
	UpdatedAt string                     `json:"updated_at"`
	Profiles  map[string]json.RawMessage `json:"profiles"`
	Models    json.RawMessage            `json:"models"`
}

// HandleModelLayer serves the raw published model layer.
func (h *Handler) HandleModelLayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, ok := h.readLayer(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		observability.FromContext(r.Context()).Error("failed to write response", zap.Error(err))
	}
}

// HandleModels serves the model index of the published layer.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, ok := h.readLayerView(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, map[string]any{
		"updated_at": view.UpdatedAt,
		"models":     view.Models,
	})
}

// HandleProfiles serves the profile map of the published layer.
func (h *Handler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, ok := h.readLayerView(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, map[string]any{
		"updated_at": view.UpdatedAt,
		"profiles":   view.Profiles,
	})
}

// HandleProfile serves a single profile by ID.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profileID := strings.TrimPrefix(r.URL.Path, "/v1/profiles/")
	if profileID == "" {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return
	}

	view, ok := h.readLayerView(w, r)
	if !ok {
		return
	}

	profile, exists := view.Profiles[profileID]
	if !exists {
		http.Error(w, fmt.Sprintf("unknown profile %q", profileID), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(profile); err != nil {
		observability.FromContext(r.Context()).Error("failed to write response", zap.Error(err))
	}
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

func (h *Handler) readLayer(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := h.artifacts.ReadLayer(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrLayerNotFound) {
			http.Error(w, "model layer not published yet", http.StatusNotFound)
			return nil, false
		}
		observability.FromContext(r.Context()).Error("failed to read model layer", zap.Error(err))
		http.Error(w, "failed to read model layer", http.StatusInternalServerError)
		return nil, false
	}
	return data, true
}

func (h *Handler) readLayerView(w http.ResponseWriter, r *http.Request) (*layerView, bool) {
	data, ok := h.readLayer(w, r)
	if !ok {
		return nil, false
	}

	var view layerView
	if err := json.Unmarshal(data, &view); err != nil {
		observability.FromContext(r.Context()).Error("failed to parse model layer", zap.Error(err))
		http.Error(w, "failed to parse model layer", http.StatusInternalServerError)
		return nil, false
	}
	return &view, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.FromContext(r.Context()).Error("failed to encode response", zap.Error(err))
	}
}
