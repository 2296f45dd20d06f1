// Package main is the entry point for the Roboticon Quest game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamfractal/roboticon-quest/server/internal/engine"
	"github.com/teamfractal/roboticon-quest/server/internal/events"
	"github.com/teamfractal/roboticon-quest/server/internal/infra/storage"
	"github.com/teamfractal/roboticon-quest/server/internal/network"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/config"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/logger"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/metrics"
)

// defaultGameID labels the singleton game's rows in the audit trail.
const defaultGameID = "GAME_1"

// SQLitePersisterAdapter translates in-memory events to storage events.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.GameEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	storageEvent := storage.GameEvent{
		ID:        event.ID,
		GameID:    defaultGameID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		TargetID:  event.TargetID,
		Payload:   payloadMap,
		Phase:     event.Phase,
	}
	start := time.Now()
	err := a.repo.Append(context.Background(), storageEvent)
	metrics.Get().RecordEventWrite(time.Since(start), err)
	return err
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "quest.db", "SQLite database path for the event audit trail")
	tuningPath := flag.String("tuning", "", "YAML tuning file (defaults when empty)")
	humans := flag.Int("humans", 1, "Number of human players")
	ais := flag.Int("ais", 1, "Number of AI players")
	flag.Parse()

	log.Println("[QUEST-SERVER] Initializing 'Roboticon Quest' Authoritative Server...")

	appLogger := logger.NewLogger()

	tuning := config.Default()
	if *tuningPath != "" {
		loaded, err := config.Load(*tuningPath)
		if err != nil {
			appLogger.Error("Failed to load tuning: " + err.Error())
			os.Exit(1)
		}
		tuning = loaded
	}

	appLogger.Info("Initializing SQLite database '" + *dbPath + "'...")
	db, err := storage.InitSQLite(*dbPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventPersister)

	appLogger.Info("Bootstrapping Engine...")
	gameEngine := engine.NewEngine(tuning, eventLog, appLogger)
	if err := gameEngine.Initialize(*humans, *ais); err != nil {
		appLogger.Error("Failed to initialize game: " + err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(gameEngine, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	// Setup API Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	apiBridge := network.NewAPIBridge(gameEngine, appLogger)
	apiBridge.RegisterRoutes(mux)

	historyHandler := network.NewHistoryHandler(eventRepo, defaultGameID, appLogger)
	historyHandler.RegisterRoutes(mux)

	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	go func() {
		log.Println("[QUEST-SERVER] HTTP API & WS Server listening on " + *addr)
		if err := http.ListenAndServe(*addr, mux); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[QUEST-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[QUEST-SERVER] Shutting down...")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the dev frontend
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
