// Package metrics provides observability for the game server.
// Counters are cheap enough to leave on in soak runs.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers engine and gateway counters.
type Collector struct {
	// Command metrics
	CommandsProcessed int64
	CommandsRefused   int64
	refusalsByReason  map[string]int64

	// Phase machine metrics
	PhaseTransitions int64
	GamesEnded       int64

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64 // nanoseconds
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime:        time.Now(),
	refusalsByReason: make(map[string]int64),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordCommand records a successfully applied command.
func (c *Collector) RecordCommand() {
	atomic.AddInt64(&c.CommandsProcessed, 1)
}

// RecordCommandRefused records a refused command by reason code.
func (c *Collector) RecordCommandRefused(reason string) {
	atomic.AddInt64(&c.CommandsRefused, 1)
	c.mu.Lock()
	c.refusalsByReason[reason]++
	c.mu.Unlock()
}

// RecordPhaseTransition records one turn advance.
func (c *Collector) RecordPhaseTransition() {
	atomic.AddInt64(&c.PhaseTransitions, 1)
}

// RecordGameEnded records a completed game.
func (c *Collector) RecordGameEnded() {
	atomic.AddInt64(&c.GamesEnded, 1)
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	var eventAvg float64
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6 // ms
	}

	c.mu.RLock()
	byReason := make(map[string]int64, len(c.refusalsByReason))
	for reason, n := range c.refusalsByReason {
		byReason[reason] = n
	}
	c.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"commands": map[string]interface{}{
			"processed":          atomic.LoadInt64(&c.CommandsProcessed),
			"refused":            atomic.LoadInt64(&c.CommandsRefused),
			"refusals_by_reason": byReason,
		},

		"game": map[string]interface{}{
			"phase_transitions": atomic.LoadInt64(&c.PhaseTransitions),
			"games_ended":       atomic.LoadInt64(&c.GamesEnded),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		// Command metrics
		fmt.Fprintf(w, "# HELP roboticon_commands_processed Total commands applied\n")
		fmt.Fprintf(w, "# TYPE roboticon_commands_processed counter\n")
		fmt.Fprintf(w, "roboticon_commands_processed %d\n\n", atomic.LoadInt64(&c.CommandsProcessed))

		fmt.Fprintf(w, "# HELP roboticon_commands_refused Total commands refused\n")
		fmt.Fprintf(w, "# TYPE roboticon_commands_refused counter\n")
		c.mu.RLock()
		reasons := make([]string, 0, len(c.refusalsByReason))
		for reason := range c.refusalsByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(w, "roboticon_commands_refused{reason=%q} %d\n", reason, c.refusalsByReason[reason])
		}
		c.mu.RUnlock()
		fmt.Fprintf(w, "\n")

		// Phase machine metrics
		fmt.Fprintf(w, "# HELP roboticon_phase_transitions Total turn advances\n")
		fmt.Fprintf(w, "# TYPE roboticon_phase_transitions counter\n")
		fmt.Fprintf(w, "roboticon_phase_transitions %d\n\n", atomic.LoadInt64(&c.PhaseTransitions))

		fmt.Fprintf(w, "# HELP roboticon_games_ended Total completed games\n")
		fmt.Fprintf(w, "# TYPE roboticon_games_ended counter\n")
		fmt.Fprintf(w, "roboticon_games_ended %d\n\n", atomic.LoadInt64(&c.GamesEnded))

		// Event metrics
		fmt.Fprintf(w, "# HELP roboticon_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE roboticon_events_written counter\n")
		fmt.Fprintf(w, "roboticon_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP roboticon_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE roboticon_event_write_errors counter\n")
		fmt.Fprintf(w, "roboticon_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		// WebSocket metrics
		fmt.Fprintf(w, "# HELP roboticon_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE roboticon_ws_connections gauge\n")
		fmt.Fprintf(w, "roboticon_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP roboticon_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE roboticon_ws_messages_total counter\n")
		fmt.Fprintf(w, "roboticon_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "roboticon_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
