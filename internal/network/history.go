// Match-history endpoints: a JSON export of the persisted event audit trail,
// for reviewing a finished game action by action.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/infra/storage"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/logger"
)

// HistoryHandler serves the match-history API from the SQLite audit trail.
// The trail is write-through from the in-memory log, so very recent events
// may land a moment after the command that produced them.
type HistoryHandler struct {
	repo   storage.EventRepository
	gameID string
	logger *logger.Logger
}

// NewHistoryHandler creates a new match-history handler over the audit
// repository.
func NewHistoryHandler(repo storage.EventRepository, gameID string, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, gameID: gameID, logger: log}
}

// HistoryEvent is the export format for one recorded action.
type HistoryEvent struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Phase     int         `json:"phase"`
	Type      string      `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	TargetID  string      `json:"target_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// HistoryResponse is the API response for a history export.
type HistoryResponse struct {
	TotalEvents int            `json:"total_events"`
	FilteredBy  string         `json:"filtered_by,omitempty"`
	GeneratedAt string         `json:"generated_at"`
	Events      []HistoryEvent `json:"events"`
}

// HandleHistory returns the recorded game history. The most selective filter
// becomes the repository query; the rest narrow the result in memory.
// GET /api/history?phase=N&type=TILE_CLAIMED&actor_id=0
func (hh *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	phaseStr := r.URL.Query().Get("phase")
	eventType := r.URL.Query().Get("type")
	actorID := r.URL.Query().Get("actor_id")

	ctx := r.Context()
	var (
		stored     []storage.GameEvent
		err        error
		filterDesc string
	)
	switch {
	case actorID != "":
		stored, err = hh.repo.GetByActorID(ctx, hh.gameID, actorID)
		filterDesc = "Actor " + actorID
	case eventType != "":
		stored, err = hh.repo.GetByEventType(ctx, hh.gameID, eventType)
		filterDesc = "Type " + eventType
	case phaseStr != "":
		phase, convErr := strconv.Atoi(phaseStr)
		if convErr != nil {
			hh.jsonError(w, "Invalid phase", http.StatusBadRequest)
			return
		}
		stored, err = hh.repo.GetByPhase(ctx, hh.gameID, phase)
		filterDesc = "Phase " + phaseStr
	default:
		stored, err = hh.repo.GetByGameID(ctx, hh.gameID)
	}
	if err != nil {
		hh.logger.Error("History query failed: " + err.Error())
		hh.jsonError(w, "History unavailable", http.StatusInternalServerError)
		return
	}

	out := []HistoryEvent{}
	for _, e := range stored {
		if phaseStr != "" {
			phase, _ := strconv.Atoi(phaseStr)
			if e.Phase != phase {
				continue
			}
		}
		if eventType != "" && e.EventType != eventType {
			continue
		}
		if actorID != "" && e.ActorID != actorID {
			continue
		}
		out = append(out, HistoryEvent{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Phase:     e.Phase,
			Type:      e.EventType,
			ActorID:   e.ActorID,
			TargetID:  e.TargetID,
			Payload:   e.Payload,
		})
	}

	response := HistoryResponse{
		TotalEvents: len(out),
		FilteredBy:  filterDesc,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      out,
	}

	hh.logger.Event("HISTORY_EXPORT", "api", "Events:"+strconv.Itoa(len(out)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleStats returns aggregate counts per event type.
// GET /api/history/stats
func (hh *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stored, err := hh.repo.GetByGameID(r.Context(), hh.gameID)
	if err != nil {
		hh.logger.Error("History stats query failed: " + err.Error())
		hh.jsonError(w, "History unavailable", http.StatusInternalServerError)
		return
	}

	counts := map[string]int{}
	for _, e := range stored {
		counts[e.EventType]++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        counts,
	})
}

// RegisterRoutes sets up the match-history routes.
func (hh *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/history", hh.HandleHistory)
	mux.HandleFunc("/api/history/stats", hh.HandleStats)
}

// jsonError sends an error response.
func (hh *HistoryHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
