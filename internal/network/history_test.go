package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/infra/storage"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/logger"
)

func historyFixture(t *testing.T) *HistoryHandler {
	t.Helper()
	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := storage.NewSQLiteEventRepository(db)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seed := []storage.GameEvent{
		{ID: "e1", GameID: "G1", Timestamp: base, EventType: "GAME_INITIALIZED", Phase: 1},
		{ID: "e2", GameID: "G1", Timestamp: base.Add(time.Second), EventType: "TILE_CLAIMED", ActorID: "0", Phase: 1,
			Payload: map[string]interface{}{"tile_id": 1}},
		{ID: "e3", GameID: "G1", Timestamp: base.Add(2 * time.Second), EventType: "TILE_CLAIMED", ActorID: "1", Phase: 1,
			Payload: map[string]interface{}{"tile_id": 2}},
		{ID: "e4", GameID: "G1", Timestamp: base.Add(3 * time.Second), EventType: "MARKET_BUY", ActorID: "0", Phase: 2},
		{ID: "e5", GameID: "OTHER", Timestamp: base, EventType: "TILE_CLAIMED", ActorID: "0", Phase: 1},
	}
	for _, ev := range seed {
		if err := repo.Append(context.Background(), ev); err != nil {
			t.Fatalf("Append %s: %v", ev.ID, err)
		}
	}
	return NewHistoryHandler(repo, "G1", logger.NewLogger())
}

func getHistory(t *testing.T, hh *HistoryHandler, target string) HistoryResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	hh.HandleHistory(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", target, rr.Code, rr.Body.String())
	}
	var resp HistoryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHistoryServesPersistedEvents(t *testing.T) {
	hh := historyFixture(t)

	resp := getHistory(t, hh, "/api/history")
	if resp.TotalEvents != 4 {
		t.Fatalf("Expected the 4 events of this game, got %d", resp.TotalEvents)
	}
	// Oldest first, and the other game's rows stay out.
	if resp.Events[0].ID != "e1" || resp.Events[3].ID != "e4" {
		t.Errorf("Expected e1..e4 in timestamp order, got %s..%s", resp.Events[0].ID, resp.Events[3].ID)
	}
	if resp.Events[1].Payload == nil {
		t.Error("Expected payload round-tripped through storage")
	}
}

func TestHistoryFilters(t *testing.T) {
	hh := historyFixture(t)

	byType := getHistory(t, hh, "/api/history?type=TILE_CLAIMED")
	if byType.TotalEvents != 2 || byType.FilteredBy != "Type TILE_CLAIMED" {
		t.Errorf("Type filter: expected 2 events, got %d (%q)", byType.TotalEvents, byType.FilteredBy)
	}

	byActor := getHistory(t, hh, "/api/history?actor_id=0")
	if byActor.TotalEvents != 2 {
		t.Errorf("Actor filter: expected 2 events, got %d", byActor.TotalEvents)
	}

	byPhase := getHistory(t, hh, "/api/history?phase=2")
	if byPhase.TotalEvents != 1 || byPhase.Events[0].ID != "e4" {
		t.Errorf("Phase filter: expected only e4, got %+v", byPhase.Events)
	}

	combined := getHistory(t, hh, "/api/history?actor_id=0&phase=1")
	if combined.TotalEvents != 1 || combined.Events[0].ID != "e2" {
		t.Errorf("Combined filter: expected only e2, got %+v", combined.Events)
	}
}

func TestHistoryStatsCountsByType(t *testing.T) {
	hh := historyFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history/stats", nil)
	rr := httptest.NewRecorder()
	hh.HandleStats(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("stats returned %d", rr.Code)
	}
	var resp struct {
		Stats map[string]int `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if resp.Stats["TILE_CLAIMED"] != 2 || resp.Stats["MARKET_BUY"] != 1 {
		t.Errorf("Unexpected stats: %v", resp.Stats)
	}
}

func TestHistoryRejectsNonGet(t *testing.T) {
	hh := historyFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/history", nil)
	rr := httptest.NewRecorder()
	hh.HandleHistory(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rr.Code)
	}
}
