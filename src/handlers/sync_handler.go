package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/model"
	"github.com/username/finapp/finsync/src/services"
)

const maxSyncLogLimit = 500

// SyncHandler exposes connectivity state and the manual sync trigger.
type SyncHandler struct {
	sync   *services.SyncService
	db     *sql.DB
	userID int64
}

func NewSyncHandler(syncService *services.SyncService, db *sql.DB, userID int64) *SyncHandler {
	return &SyncHandler{sync: syncService, db: db, userID: userID}
}

func (h *SyncHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *SyncHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.sync.Status())
}

// HandleTriggerSync checks the backend now and, if it answers, notifies every active screen.
func (h *SyncHandler) HandleTriggerSync(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.TriggerManualSync(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("Manual sync failed", "error", err)
		sendJSONError(w, r, "Backend unreachable: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, r, http.StatusOK, h.sync.Status())
}

func (h *SyncHandler) HandleGetSyncLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSyncLogLimit {
			sendJSONError(w, r, "limit must be between 1 and "+strconv.Itoa(maxSyncLogLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := model.ListRecentSyncLogs(h.db, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list sync log", "error", err)
		sendJSONError(w, r, "Failed to retrieve sync log", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// HandleClearSnapshots forgets the saved screen data of the current user. Screens
// already on display keep their data until the next fetch.
func (h *SyncHandler) HandleClearSnapshots(w http.ResponseWriter, r *http.Request) {
	n, err := model.DeleteSnapshots(h.db, h.userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to clear snapshots", "userID", h.userID, "error", err)
		sendJSONError(w, r, "Failed to clear saved screens", http.StatusInternalServerError)
		return
	}
	logger.FromContext(r.Context()).Info("Snapshots cleared", "userID", h.userID, "deleted", n)
	writeJSON(w, r, http.StatusOK, map[string]int64{"deleted": n})
}
