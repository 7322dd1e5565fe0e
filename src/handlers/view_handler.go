package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/finapp/finsync/src/loaders"
	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/views"
)

// DefaultActivationWait is how long a first view waits for its fetch before the
// loading state is returned. It stays below the server's WriteTimeout.
const DefaultActivationWait = 10 * time.Second

// ViewHandler serves the rendered screens. Reading a screen keeps its loader active.
type ViewHandler struct {
	registry       *loaders.Registry
	tracker        *loaders.ScreenTracker
	activationWait time.Duration
}

func NewViewHandler(registry *loaders.Registry, tracker *loaders.ScreenTracker) *ViewHandler {
	return &ViewHandler{registry: registry, tracker: tracker, activationWait: DefaultActivationWait}
}

// ScreenInfo is one entry of the screen list.
type ScreenInfo struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (h *ViewHandler) HandleListScreens(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	out := make([]ScreenInfo, 0, len(names))
	for _, name := range names {
		v, _ := h.registry.Get(name)
		out = append(out, ScreenInfo{Name: name, Active: v.Active()})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	screen := chi.URLParam(r, "screen")
	v, _, ok := h.touch(w, r, screen)
	if !ok {
		return
	}
	h.render(w, r, screen, v)
}

// HandleRefreshView refetches a screen now instead of waiting for the next change event.
func (h *ViewHandler) HandleRefreshView(w http.ResponseWriter, r *http.Request) {
	screen := chi.URLParam(r, "screen")
	v, activated, ok := h.touch(w, r, screen)
	if !ok {
		return
	}
	// A fresh activation has just fetched.
	if !activated {
		ctx, cancel := context.WithTimeout(r.Context(), h.activationWait)
		defer cancel()
		if err := v.Refresh(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("Screen refresh failed", "screen", screen, "error", err)
		}
	}
	h.render(w, r, screen, v)
}

// HandleReleaseView deactivates a screen the dashboard has navigated away from.
func (h *ViewHandler) HandleReleaseView(w http.ResponseWriter, r *http.Request) {
	screen := chi.URLParam(r, "screen")
	if _, ok := h.registry.Get(screen); !ok {
		sendJSONError(w, r, "Unknown screen: "+screen, http.StatusNotFound)
		return
	}
	h.tracker.Release(screen)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewHandler) touch(w http.ResponseWriter, r *http.Request, screen string) (v loaders.View, activated, ok bool) {
	// The fetch keeps running after the wait ends; the response then shows it loading.
	ctx, cancel := context.WithTimeout(r.Context(), h.activationWait)
	defer cancel()

	v, activated, err := h.tracker.Touch(ctx, screen)
	if errors.Is(err, loaders.ErrUnknownScreen) {
		sendJSONError(w, r, "Unknown screen: "+screen, http.StatusNotFound)
		return nil, false, false
	}
	// Fetch failures are part of the screen state, not of the response status.
	if err != nil {
		logger.FromContext(r.Context()).Warn("Screen activation did not complete", "screen", screen, "error", err)
	} else if activated {
		logger.FromContext(r.Context()).Info("Screen activated", "screen", screen)
	}
	return v, activated, true
}

func (h *ViewHandler) render(w http.ResponseWriter, r *http.Request, screen string, v loaders.View) {
	view, err := views.Build(screen, v.Snapshot())
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to build screen view", "screen", screen, "error", err)
		sendJSONError(w, r, "Failed to render screen", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}
