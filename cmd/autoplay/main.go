// Package main - autoplay
// Headless soak driver: plays randomized all-AI games in-process against the
// engine and checks the invariants that must hold over many iterations.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
	"github.com/teamfractal/roboticon-quest/server/internal/engine"
	"github.com/teamfractal/roboticon-quest/server/internal/events"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/config"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/logger"
)

// Stats tracks soak run outcomes.
type Stats struct {
	GamesPlayed    int
	GamesCompleted int
	Violations     int
	TotalEvents    int
	TotalTrades    int
	TotalEffects   int
	WinsByPlayer   map[int]int
}

func main() {
	games := flag.Int("games", 100, "Number of games to play")
	players := flag.Int("players", 4, "AI players per game (2-9)")
	seed := flag.Int64("seed", 1, "Base RNG seed, incremented per game")
	flag.Parse()

	fmt.Println("=========================================")
	fmt.Println("ROBOTICON QUEST - Autoplay Soak Driver")
	fmt.Println("=========================================")
	fmt.Printf("Games: %d\n", *games)
	fmt.Printf("Players: %d AI\n", *players)
	fmt.Printf("Base seed: %d\n", *seed)
	fmt.Println("=========================================")

	stats := &Stats{WinsByPlayer: make(map[int]int)}
	appLogger := logger.NewLogger()
	start := time.Now()

	for i := 0; i < *games; i++ {
		playGame(*players, *seed+int64(i), appLogger, stats)
	}

	printResults(stats, time.Since(start))
	if stats.Violations > 0 || stats.GamesCompleted < stats.GamesPlayed {
		os.Exit(1)
	}
}

// playGame runs one all-AI game to completion. With no humans in the roster
// the engine plays the whole game synchronously inside Initialize.
func playGame(players int, seed int64, appLogger *logger.Logger, stats *Stats) {
	stats.GamesPlayed++

	tuning := config.Default()
	tuning.RandomSeed = seed
	eventLog := events.NewEventLog(nil)
	eng := engine.NewEngine(tuning, eventLog, appLogger)

	if err := eng.Initialize(0, players); err != nil {
		fmt.Printf("game %d: initialize failed: %v\n", stats.GamesPlayed, err)
		stats.Violations++
		return
	}

	if !eng.Ended() {
		fmt.Printf("game %d: did not finish\n", stats.GamesPlayed)
		return
	}
	stats.GamesCompleted++
	stats.TotalEvents += eventLog.Len()
	stats.TotalTrades += len(eventLog.GetByType(events.EventTypeTradeAccepted))
	stats.TotalEffects += len(eventLog.GetByType(events.EventTypeEffectApplied))

	// Exactly one GAME_ENDED per completed game.
	if got := len(eventLog.GetByType(events.EventTypeGameEnded)); got != 1 {
		fmt.Printf("game %d: expected 1 GAME_ENDED event, got %d\n", stats.GamesPlayed, got)
		stats.Violations++
	}

	winner, ok := eng.Winner()
	if !ok {
		fmt.Printf("game %d: ended without a winner\n", stats.GamesPlayed)
		stats.Violations++
		return
	}
	stats.WinsByPlayer[winner]++

	// Invariants every finished game must satisfy.
	for _, p := range eng.Players() {
		for _, k := range resource.Kinds {
			if p.Ledger.Amount(k) < 0 {
				fmt.Printf("game %d: player %d has negative %s\n", stats.GamesPlayed, p.ID, k)
				stats.Violations++
			}
		}
	}
	for _, q := range eng.MarketQuotes() {
		if q.Stock < 0 {
			fmt.Printf("game %d: market stock of %s is negative\n", stats.GamesPlayed, q.Kind)
			stats.Violations++
		}
		if q.SellPrice >= q.BuyPrice {
			fmt.Printf("game %d: %s sell price %d >= buy price %d\n", stats.GamesPlayed, q.Kind, q.SellPrice, q.BuyPrice)
			stats.Violations++
		}
	}
	owned := 0
	for _, t := range eng.Tiles() {
		if t.OwnerID >= 0 {
			owned++
		}
	}
	if owned != engine.TileCount {
		fmt.Printf("game %d: ended with %d of %d tiles owned\n", stats.GamesPlayed, owned, engine.TileCount)
		stats.Violations++
	}
}

func printResults(stats *Stats, elapsed time.Duration) {
	fmt.Println("\n=========================================")
	fmt.Println("RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Games played:    %d\n", stats.GamesPlayed)
	fmt.Printf("Games completed: %d\n", stats.GamesCompleted)
	fmt.Printf("Violations:      %d\n", stats.Violations)
	if stats.GamesCompleted > 0 {
		fmt.Printf("Avg events/game: %d\n", stats.TotalEvents/stats.GamesCompleted)
		fmt.Printf("Trades accepted: %d\n", stats.TotalTrades)
		fmt.Printf("Effects applied: %d\n", stats.TotalEffects)
	}
	fmt.Printf("Elapsed:         %v\n", elapsed)
	fmt.Println("Wins by player:")
	for id, wins := range stats.WinsByPlayer {
		fmt.Printf("  player %d: %d\n", id, wins)
	}
}
