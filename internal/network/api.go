// REST bridge for state snapshots and pause control. The WebSocket surface
// carries the per-turn commands; these endpoints serve pull-style reads and
// the operator's pause switch.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/engine"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/logger"
)

// APIBridge handles the REST query and control endpoints.
type APIBridge struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewAPIBridge creates the REST handler set around the engine.
func NewAPIBridge(eng *engine.Engine, log *logger.Logger) *APIBridge {
	return &APIBridge{engine: eng, logger: log}
}

// HandleState returns the full game snapshot.
// GET /api/state
func (ab *APIBridge) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ab.jsonSuccess(w, ab.engine.Snapshot())
}

// HandleMarket returns current market quotes and the money pool.
// GET /api/market
func (ab *APIBridge) HandleMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ab.jsonSuccess(w, map[string]interface{}{
		"quotes":       ab.engine.MarketQuotes(),
		"market_money": ab.engine.MarketMoney(),
		"timestamp":    time.Now().Unix(),
	})
}

// HandleTrades returns the trades awaiting a player's decision.
// GET /api/trades?player_id=N
func (ab *APIBridge) HandleTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	playerID, err := strconv.Atoi(r.URL.Query().Get("player_id"))
	if err != nil {
		ab.jsonError(w, "Missing or invalid player_id", http.StatusBadRequest)
		return
	}
	ab.jsonSuccess(w, map[string]interface{}{
		"player_id": playerID,
		"trades":    ab.engine.PendingTrades(playerID),
	})
}

// HandlePause freezes the game.
// POST /api/pause
func (ab *APIBridge) HandlePause(w http.ResponseWriter, r *http.Request) {
	ab.handleControl(w, r, "pause", ab.engine.Pause)
}

// HandleResume unfreezes the game.
// POST /api/resume
func (ab *APIBridge) HandleResume(w http.ResponseWriter, r *http.Request) {
	ab.handleControl(w, r, "resume", ab.engine.Resume)
}

func (ab *APIBridge) handleControl(w http.ResponseWriter, r *http.Request, name string, cmd func() error) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := cmd(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error":  err.Error(),
			"reason": string(engine.ReasonOf(err)),
		})
		return
	}
	ab.logger.Event("GAME_CONTROL", "operator", name)
	ab.jsonSuccess(w, map[string]string{"status": "ok", "action": name})
}

// RegisterRoutes sets up the REST API routes.
func (ab *APIBridge) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", ab.HandleState)
	mux.HandleFunc("/api/market", ab.HandleMarket)
	mux.HandleFunc("/api/trades", ab.HandleTrades)
	mux.HandleFunc("/api/pause", ab.HandlePause)
	mux.HandleFunc("/api/resume", ab.HandleResume)
}

// jsonError sends an error response.
func (ab *APIBridge) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (ab *APIBridge) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
