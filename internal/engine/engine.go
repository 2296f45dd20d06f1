package engine

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/college"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/player"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/roboticon"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/rules"
	"github.com/teamfractal/roboticon-quest/server/internal/domain/tile"
	"github.com/teamfractal/roboticon-quest/server/internal/events"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/config"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/logger"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/metrics"
)

// The five phases of a game round, in cycle order.
const (
	PhaseAcquisition = 1 // claim one tile per player
	PhasePurchase    = 2 // buy roboticons, 30s countdown
	PhasePlacement   = 3 // deploy/upgrade roboticons, 45s countdown
	PhaseProduction  = 4 // tiles yield, random effect rolls
	PhaseAuction     = 5 // market deals and player trades
)

// TileCount is the fixed board size.
const TileCount = 16

// Engine is the single authoritative game instance. Every command and query
// goes through its mutex; all mutations append to the event log before the
// command reports success.
type Engine struct {
	mu       sync.Mutex
	cfg      *config.Tuning
	eventLog *events.EventLog
	logger   *logger.Logger

	chancellor Chancellor
	aiPolicy   AIPolicy
	now        func() time.Time
	rng        *rand.Rand

	players       []*player.Player
	tiles         []*tile.Tile
	market        *Market
	trades        *tradeBook
	plotDeck      []Effect
	playerDeck    []Effect
	activeReverts []func(*Engine)
	yieldBonus    map[resource.Kind]int

	phase        int
	currentIdx   int
	roboticonSeq int
	turnSeq      uint64
	timer        *phaseTimer

	initialized bool
	paused      bool
	ended       bool
	winnerID    int
}

// NewEngine wires the orchestrator to its tuning, audit log, and logger.
// The chancellor hook and AI policy default to no-ops and can be replaced
// before Initialize.
func NewEngine(cfg *config.Tuning, eventLog *events.EventLog, log *logger.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if eventLog == nil {
		eventLog = events.NewEventLog(nil)
	}
	if log == nil {
		log = logger.NewLogger()
	}
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := &Engine{
		cfg:        cfg,
		eventLog:   eventLog,
		logger:     log,
		chancellor: nopChancellor{},
		aiPolicy:   DefaultAIPolicy,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(seed)),
		yieldBonus: make(map[resource.Kind]int),
		timer:      newPhaseTimer(),
		winnerID:   -1,
	}
	e.SetEffects(DefaultEffects())
	return e
}

// SetChancellor attaches the minigame hook. Must be called before Initialize.
func (e *Engine) SetChancellor(c Chancellor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c == nil {
		c = nopChancellor{}
	}
	e.chancellor = c
}

// SetAIPolicy replaces the decision procedure for AI turns. Must be called
// before Initialize.
func (e *Engine) SetAIPolicy(p AIPolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aiPolicy = p
}

// SetEffects replaces the random-event deck. Must be called before
// Initialize; validation happens there.
func (e *Engine) SetEffects(deck []Effect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plotDeck = nil
	e.playerDeck = nil
	for _, eff := range deck {
		if eff.Category == EffectPlot {
			e.plotDeck = append(e.plotDeck, eff)
		} else {
			e.playerDeck = append(e.playerDeck, eff)
		}
	}
}

// Initialize sets up a fresh game: players 0..N-1 bound to colleges 0..N-1
// (humans first), 16 tiles, the market, and the phase machine at phase 1,
// player 0. AI players act immediately if player 0 is one.
func (e *Engine) Initialize(humanCount, aiCount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return e.done(refuse(ReasonInvalidAction, "game already initialized"))
	}
	total := humanCount + aiCount
	if humanCount < 0 || aiCount < 0 || total < 2 {
		return e.done(refuse(ReasonInvalidConfiguration, "need at least 2 players, got %d", total))
	}
	if total > college.Count() {
		return e.done(refuse(ReasonInvalidConfiguration, "at most %d players, got %d", college.Count(), total))
	}
	if err := e.cfg.Validate(); err != nil {
		return e.done(refuse(ReasonInvalidConfiguration, "tuning: %v", err))
	}
	if err := validateEffects(append(append([]Effect{}, e.plotDeck...), e.playerDeck...)); err != nil {
		return e.done(err)
	}

	starting := e.cfg.StartingAmounts()
	e.players = make([]*player.Player, 0, total)
	for id := 0; id < total; id++ {
		e.players = append(e.players, player.New(id, id, id >= humanCount, starting))
	}
	e.tiles = make([]*tile.Tile, 0, TileCount)
	yield := tile.Yield{
		Ore:    e.cfg.TileYield.Ore,
		Energy: e.cfg.TileYield.Energy,
		Food:   e.cfg.TileYield.Food,
	}
	for id := 1; id <= TileCount; id++ {
		e.tiles = append(e.tiles, tile.New(id, yield))
	}
	e.market = NewMarket(e.cfg.Market, e.cfg.MarketMoney)
	e.trades = newTradeBook(e.cfg.TradeTTL())
	e.phase = PhaseAcquisition
	e.currentIdx = 0
	e.initialized = true

	e.appendEvent(events.EventTypeGameInitialized, -1, -1, map[string]int{
		"humans": humanCount,
		"ais":    aiCount,
	})
	e.logger.Info("game initialized: " + strconv.Itoa(total) + " players")

	e.enterTurnLocked()
	e.driveAILocked()
	return e.done(nil)
}

// AdvancePhase ends the current player's turn. In phase 1 the advance is
// refused until the player has claimed a tile, unless no unclaimed tile
// remains.
func (e *Engine) AdvancePhase() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return e.done(err)
	}
	cur := e.players[e.currentIdx]
	if e.phase == PhaseAcquisition && !cur.HasClaimed && e.hasUnclaimedTile() {
		return e.done(refuse(ReasonInvalidAction, "player %d must claim a tile before advancing", cur.ID))
	}
	e.advanceLocked()
	e.driveAILocked()
	return e.done(nil)
}

// ClaimTile acquires an unowned tile for the current player during phase 1.
// A successful claim ends the turn immediately.
func (e *Engine) ClaimTile(tileID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return e.done(err)
	}
	if err := e.claimTileLocked(tileID); err != nil {
		return e.done(err)
	}
	e.advanceLocked()
	e.driveAILocked()
	return e.done(nil)
}

// DeployRoboticon places one unit from the current player's inventory onto
// an owned, empty tile during phase 3.
func (e *Engine) DeployRoboticon(tileID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return e.done(err)
	}
	return e.done(e.deployLocked(tileID))
}

// UpgradeRoboticon raises one resource level of the unit on the given tile,
// debiting the schedule cost.
func (e *Engine) UpgradeRoboticon(tileID int, kind resource.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return e.done(err)
	}
	return e.done(e.upgradeLocked(tileID, kind))
}

// MarketBuy purchases qty units of kind for the current player. Roboticons
// are bought in phase 2, resources in phase 5.
func (e *Engine) MarketBuy(kind resource.Kind, qty int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return e.done(err)
	}
	return e.done(e.marketBuyLocked(kind, qty))
}

// MarketSell sells qty units of kind back to the market during phase 5.
func (e *Engine) MarketSell(kind resource.Kind, qty int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return e.done(err)
	}
	return e.done(e.marketSellLocked(kind, qty))
}

// SubmitTrade posts an offer from the current player to another player
// during phase 5 and returns the trade id.
func (e *Engine) SubmitTrade(toID int, offer map[resource.Kind]int, price int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return "", e.done(err)
	}
	id, err := e.submitTradeLocked(toID, offer, price)
	return id, e.done(err)
}

// ResolveTrade accepts or rejects a trade addressed to the current player.
func (e *Engine) ResolveTrade(tradeID string, accept bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commandGate(); err != nil {
		return e.done(err)
	}
	return e.done(e.resolveTradeLocked(tradeID, accept))
}

// Pause freezes the game. Countdowns bank their remaining time; every
// command except Resume is refused while paused.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized || e.ended {
		return e.done(refuse(ReasonInvalidAction, "no running game to pause"))
	}
	if e.paused {
		return e.done(refuse(ReasonInvalidAction, "already paused"))
	}
	e.paused = true
	e.timer.Pause()
	if e.phase == PhasePlacement {
		e.chancellor.Deactivate()
	}
	e.appendEvent(events.EventTypeGamePaused, -1, -1, nil)
	return e.done(nil)
}

// Resume unfreezes the game and rearms any banked countdown.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized || !e.paused {
		return e.done(refuse(ReasonInvalidAction, "game is not paused"))
	}
	e.paused = false
	e.timer.Resume()
	if e.phase == PhasePlacement {
		e.chancellor.Activate(e.players[e.currentIdx].ID)
	}
	e.appendEvent(events.EventTypeGameResumed, -1, -1, nil)
	return e.done(nil)
}

// ---- command cores (mutex held, no auto-advance) ----

func (e *Engine) commandGate() error {
	if !e.initialized {
		return refuse(ReasonInvalidAction, "game not initialized")
	}
	if e.ended {
		return refuse(ReasonInvalidAction, "game has ended")
	}
	if e.paused {
		return refuse(ReasonInvalidAction, "game is paused")
	}
	return nil
}

func (e *Engine) claimTileLocked(tileID int) error {
	cur := e.players[e.currentIdx]
	if e.phase != PhaseAcquisition {
		return refuse(ReasonInvalidAction, "tiles are claimed in phase 1, current phase is %d", e.phase)
	}
	if cur.HasClaimed {
		return refuse(ReasonInvalidAction, "player %d already claimed this round", cur.ID)
	}
	t := e.tileByID(tileID)
	if t == nil {
		return refuse(ReasonInvalidAction, "no tile %d", tileID)
	}
	if !t.Claim(cur.ID) {
		return refuse(ReasonInvalidAction, "tile %d is already owned by player %d", tileID, t.OwnerID)
	}
	cur.AssignTile(tileID)
	cur.HasClaimed = true
	e.appendEvent(events.EventTypeTileClaimed, cur.ID, -1, map[string]int{"tile_id": tileID})
	e.logger.Event(string(events.EventTypeTileClaimed), strconv.Itoa(cur.ID), "tile "+strconv.Itoa(tileID))
	return nil
}

func (e *Engine) deployLocked(tileID int) error {
	cur := e.players[e.currentIdx]
	if e.phase != PhasePlacement {
		return refuse(ReasonInvalidAction, "roboticons are placed in phase 3, current phase is %d", e.phase)
	}
	t := e.tileByID(tileID)
	if t == nil {
		return refuse(ReasonInvalidAction, "no tile %d", tileID)
	}
	if t.OwnerID != cur.ID {
		return refuse(ReasonInvalidAction, "tile %d is not owned by player %d", tileID, cur.ID)
	}
	if t.HasRoboticon() {
		return refuse(ReasonInvalidAction, "tile %d already has a roboticon", tileID)
	}
	if !cur.Ledger.Spend(resource.Roboticon, 1) {
		return refuse(ReasonInsufficientResources, "player %d has no roboticon to deploy", cur.ID)
	}
	e.roboticonSeq++
	r := roboticon.New(e.roboticonSeq, cur.ID, tileID)
	t.Attach(r)
	e.appendEvent(events.EventTypeRoboticonDeployed, cur.ID, -1, map[string]int{
		"tile_id":      tileID,
		"roboticon_id": r.ID,
	})
	return nil
}

func (e *Engine) upgradeLocked(tileID int, kind resource.Kind) error {
	cur := e.players[e.currentIdx]
	if !resource.IsYield(kind) {
		return refuse(ReasonInvalidAction, "cannot upgrade for %s", kind)
	}
	t := e.tileByID(tileID)
	if t == nil {
		return refuse(ReasonInvalidAction, "no tile %d", tileID)
	}
	if t.OwnerID != cur.ID || !t.HasRoboticon() {
		return refuse(ReasonInvalidAction, "player %d has no roboticon on tile %d", cur.ID, tileID)
	}
	r := t.Roboticon
	if !r.CanUpgrade(kind, e.cfg.MaxRoboticonLevel) {
		return refuse(ReasonInvalidAction, "roboticon %d is at max %s level", r.ID, kind)
	}
	cost := e.cfg.UpgradeCosts[r.Level(kind)-1]
	if !cur.Ledger.Spend(resource.Money, cost) {
		return refuse(ReasonInsufficientResources, "upgrade costs %d, player %d cannot pay", cost, cur.ID)
	}
	r.Upgrade(kind)
	e.appendEvent(events.EventTypeRoboticonUpgraded, cur.ID, -1, map[string]interface{}{
		"roboticon_id": r.ID,
		"kind":         kind,
		"level":        r.Level(kind),
		"cost":         cost,
	})
	return nil
}

func (e *Engine) marketBuyLocked(kind resource.Kind, qty int) error {
	cur := e.players[e.currentIdx]
	if qty < 1 || !e.market.Tradeable(kind) {
		return refuse(ReasonInvalidAction, "cannot buy %d of %s", qty, kind)
	}
	wantPhase := PhaseAuction
	if kind == resource.Roboticon {
		wantPhase = PhasePurchase
	}
	if e.phase != wantPhase {
		return refuse(ReasonInvalidAction, "%s is bought in phase %d, current phase is %d", kind, wantPhase, e.phase)
	}
	cost, ok := e.market.QuoteBuy(kind, qty)
	if !ok {
		return refuse(ReasonInsufficientResources, "market has %d of %s, wanted %d", e.market.Stock(kind), kind, qty)
	}
	if !cur.Ledger.Spend(resource.Money, cost) {
		return refuse(ReasonInsufficientResources, "%d %s costs %d, player %d cannot pay", qty, kind, cost, cur.ID)
	}
	e.market.Buy(kind, qty)
	cur.Ledger.Credit(kind, qty)
	e.appendEvent(events.EventTypeMarketBuy, cur.ID, -1, map[string]interface{}{
		"kind": kind, "qty": qty, "cost": cost,
	})
	return nil
}

func (e *Engine) marketSellLocked(kind resource.Kind, qty int) error {
	cur := e.players[e.currentIdx]
	if qty < 1 || !resource.IsYield(kind) {
		return refuse(ReasonInvalidAction, "cannot sell %d of %s", qty, kind)
	}
	if e.phase != PhaseAuction {
		return refuse(ReasonInvalidAction, "selling happens in phase 5, current phase is %d", e.phase)
	}
	if cur.Ledger.Amount(kind) < qty {
		return refuse(ReasonInsufficientResources, "player %d holds %d of %s, wanted to sell %d", cur.ID, cur.Ledger.Amount(kind), kind, qty)
	}
	payout, ok := e.market.QuoteSell(kind, qty)
	if !ok {
		return refuse(ReasonInsufficientResources, "market cannot pay for %d of %s", qty, kind)
	}
	cur.Ledger.Spend(kind, qty)
	e.market.Sell(kind, qty)
	cur.Ledger.Credit(resource.Money, payout)
	e.appendEvent(events.EventTypeMarketSell, cur.ID, -1, map[string]interface{}{
		"kind": kind, "qty": qty, "payout": payout,
	})
	return nil
}

func (e *Engine) submitTradeLocked(toID int, offer map[resource.Kind]int, price int) (string, error) {
	cur := e.players[e.currentIdx]
	if e.phase != PhaseAuction {
		return "", refuse(ReasonInvalidAction, "trades are submitted in phase 5, current phase is %d", e.phase)
	}
	if toID == cur.ID || e.playerByID(toID) == nil {
		return "", refuse(ReasonInvalidAction, "invalid trade target %d", toID)
	}
	if price < 0 {
		return "", refuse(ReasonInvalidAction, "negative asking price")
	}
	total := 0
	for k, n := range offer {
		if !resource.IsYield(k) || n < 1 {
			return "", refuse(ReasonInvalidAction, "cannot offer %d of %s", n, k)
		}
		total += n
	}
	if total == 0 {
		return "", refuse(ReasonInvalidAction, "empty offer")
	}
	for k, n := range offer {
		if cur.Ledger.Amount(k) < n {
			return "", refuse(ReasonInsufficientResources, "player %d holds %d of %s, offered %d", cur.ID, cur.Ledger.Amount(k), k, n)
		}
	}
	t, ok := e.trades.submit(cur.ID, toID, offer, price, e.now())
	if !ok {
		return "", refuse(ReasonDuplicatePendingTrade, "player %d already has a trade pending with player %d", cur.ID, toID)
	}
	e.appendEvent(events.EventTypeTradeSubmitted, cur.ID, toID, t)
	return t.ID, nil
}

func (e *Engine) resolveTradeLocked(tradeID string, accept bool) error {
	cur := e.players[e.currentIdx]
	if e.phase != PhaseAuction {
		return refuse(ReasonInvalidAction, "trades are resolved in phase 5, current phase is %d", e.phase)
	}
	t, ok := e.trades.get(tradeID)
	if !ok {
		return refuse(ReasonInvalidAction, "no pending trade %s", tradeID)
	}
	if t.ToID != cur.ID {
		return refuse(ReasonInvalidAction, "trade %s is not addressed to player %d", tradeID, cur.ID)
	}
	if e.now().Sub(t.SubmittedAt) >= e.trades.ttl {
		e.trades.remove(t.ID)
		e.appendEvent(events.EventTypeTradeExpired, t.FromID, t.ToID, t)
		return refuse(ReasonInvalidAction, "trade %s has expired", tradeID)
	}
	if !accept {
		e.trades.remove(t.ID)
		e.appendEvent(events.EventTypeTradeRejected, cur.ID, t.FromID, t)
		return nil
	}
	from := e.playerByID(t.FromID)
	for k, n := range t.Offer {
		if from.Ledger.Amount(k) < n {
			e.trades.remove(t.ID)
			return refuse(ReasonInsufficientResources, "player %d no longer holds the offered %s", from.ID, k)
		}
	}
	if !cur.Ledger.Spend(resource.Money, t.Price) {
		e.trades.remove(t.ID)
		return refuse(ReasonInsufficientResources, "trade asks %d, player %d cannot pay", t.Price, cur.ID)
	}
	for k, n := range t.Offer {
		from.Ledger.Spend(k, n)
		cur.Ledger.Credit(k, n)
	}
	from.Ledger.Credit(resource.Money, t.Price)
	e.trades.remove(t.ID)
	e.appendEvent(events.EventTypeTradeAccepted, cur.ID, t.FromID, t)
	return nil
}

// ---- phase machine (mutex held) ----

// advanceLocked rotates to the next player; when the rotation wraps, the
// phase increments (5 cycles back to 1).
func (e *Engine) advanceLocked() {
	e.turnSeq++
	e.timer.Stop()
	if e.phase == PhasePlacement {
		e.chancellor.Deactivate()
	}
	e.currentIdx++
	if e.currentIdx >= len(e.players) {
		e.currentIdx = 0
		e.phase++
		if e.phase > PhaseAuction {
			e.phase = PhaseAcquisition
		}
	}
	metrics.Get().RecordPhaseTransition()
	e.appendEvent(events.EventTypePhaseAdvanced, -1, -1, map[string]int{
		"phase":  e.phase,
		"player": e.players[e.currentIdx].ID,
	})
	e.enterTurnLocked()
}

// enterTurnLocked runs the entry actions for the new (phase, player) pair.
func (e *Engine) enterTurnLocked() {
	cur := e.players[e.currentIdx]
	switch e.phase {
	case PhaseAcquisition:
		if e.currentIdx == 0 {
			for _, p := range e.players {
				p.HasClaimed = false
			}
		}
		// The market converts ore into a roboticon on every phase-1 turn
		// entry, not once per round.
		e.market.ProduceRoboticon()
	case PhasePurchase:
		e.startCountdownLocked(e.cfg.Phase2Duration())
	case PhasePlacement:
		e.chancellor.Activate(cur.ID)
		e.startCountdownLocked(e.cfg.Phase3Duration())
	case PhaseProduction:
		e.produceLocked(cur)
		e.rollEffectLocked(cur)
	case PhaseAuction:
		if e.currentIdx == 0 {
			e.expireTradesLocked()
			e.checkWinLocked()
		}
	}
}

func (e *Engine) startCountdownLocked(d time.Duration) {
	seq := e.turnSeq
	e.timer.Start(d, func() {
		e.countdownExpired(seq)
	})
}

// countdownExpired synthesizes the advance a player action would have made.
// A stale sequence number means the turn already moved on.
func (e *Engine) countdownExpired(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized || e.ended || e.paused || e.turnSeq != seq {
		return
	}
	e.logger.Info("phase " + strconv.Itoa(e.phase) + " countdown expired, advancing")
	e.advanceLocked()
	e.driveAILocked()
}

// produceLocked credits the current player with the output of every owned
// tile: base yield plus the active plot bonus, multiplied by the roboticon
// level where a unit is deployed.
func (e *Engine) produceLocked(cur *player.Player) {
	produced := make(map[resource.Kind]int)
	for _, t := range e.tiles {
		if t.OwnerID != cur.ID {
			continue
		}
		for _, k := range resource.YieldKinds {
			base := t.Yield.Of(k) + e.yieldBonus[k]
			if base < 0 {
				base = 0
			}
			amount := base
			if t.HasRoboticon() {
				amount = base * t.Roboticon.Level(k)
			}
			if amount > 0 {
				cur.Ledger.Credit(k, amount)
				produced[k] += amount
			}
		}
	}
	e.appendEvent(events.EventTypeResourcesProduced, cur.ID, -1, produced)
}

// rollEffectLocked reverts the previous round's plot effects, then draws one
// effect: category first, then uniformly within the category. The draw's
// description is surfaced only when the affected player is human.
func (e *Engine) rollEffectLocked(cur *player.Player) {
	if len(e.activeReverts) > 0 {
		for i := len(e.activeReverts) - 1; i >= 0; i-- {
			e.activeReverts[i](e)
		}
		e.activeReverts = nil
		e.appendEvent(events.EventTypeEffectsReverted, -1, -1, nil)
	}

	deck := e.plotDeck
	other := e.playerDeck
	if e.rng.Intn(2) == 1 {
		deck, other = other, deck
	}
	if len(deck) == 0 {
		deck = other
	}
	if len(deck) == 0 {
		return
	}
	eff := deck[e.rng.Intn(len(deck))]
	eff.Apply(e, cur)
	if eff.Category == EffectPlot {
		e.activeReverts = append(e.activeReverts, eff.Revert)
	}
	e.appendEvent(events.EventTypeEffectApplied, -1, cur.ID, map[string]interface{}{
		"name":        eff.Name,
		"category":    eff.Category,
		"description": eff.Description,
		"notified":    !cur.IsAI,
	})
	if !cur.IsAI {
		e.logger.Event(string(events.EventTypeEffectApplied), strconv.Itoa(cur.ID), eff.Description)
	}
}

func (e *Engine) expireTradesLocked() {
	for _, t := range e.trades.prune(e.now()) {
		e.appendEvent(events.EventTypeTradeExpired, t.FromID, t.ToID, t)
	}
}

// checkWinLocked ends the game when every tile is owned. Runs once per
// phase-5 entry.
func (e *Engine) checkWinLocked() {
	for _, t := range e.tiles {
		if !t.Owned() {
			return
		}
	}
	prices := e.market.ClosingPrices()
	scores := make(map[string]int, len(e.players))
	for _, p := range e.players {
		scores[strconv.Itoa(p.ID)] = rules.Score(p, prices)
	}
	e.winnerID = rules.Winner(e.players, prices)
	e.ended = true
	e.timer.Stop()
	metrics.Get().RecordGameEnded()
	e.appendEvent(events.EventTypeGameEnded, e.winnerID, -1, map[string]interface{}{
		"winner": e.winnerID,
		"scores": scores,
	})
	e.logger.Event(string(events.EventTypeGameEnded), strconv.Itoa(e.winnerID), "all tiles owned")
}

// driveAILocked runs AI turns until control reaches a human, the game ends,
// or play is paused. Each AI turn is one policy invocation followed by the
// advance a human would make explicitly.
func (e *Engine) driveAILocked() {
	for e.initialized && !e.ended && !e.paused && e.players[e.currentIdx].IsAI {
		if e.aiPolicy != nil {
			e.aiPolicy(&Turn{e: e})
		}
		if e.ended {
			return
		}
		cur := e.players[e.currentIdx]
		if e.phase == PhaseAcquisition && !cur.HasClaimed {
			// The policy passed on claiming; take the first free tile
			// so the round can close.
			for _, t := range e.tiles {
				if !t.Owned() {
					_ = e.claimTileLocked(t.ID)
					break
				}
			}
		}
		e.advanceLocked()
	}
}

// ---- helpers ----

func (e *Engine) tileByID(id int) *tile.Tile {
	if id < 1 || id > len(e.tiles) {
		return nil
	}
	return e.tiles[id-1]
}

func (e *Engine) playerByID(id int) *player.Player {
	if id < 0 || id >= len(e.players) {
		return nil
	}
	return e.players[id]
}

func (e *Engine) hasUnclaimedTile() bool {
	for _, t := range e.tiles {
		if !t.Owned() {
			return true
		}
	}
	return false
}

func (e *Engine) appendEvent(t events.EventType, actorID, targetID int, payload interface{}) {
	ev := events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: e.now(),
		Type:      t,
		Phase:     e.phase,
		Payload:   payload,
	}
	if actorID >= 0 {
		ev.ActorID = strconv.Itoa(actorID)
	}
	if targetID >= 0 {
		ev.TargetID = strconv.Itoa(targetID)
	}
	e.eventLog.Append(ev)
}

func (e *Engine) done(err error) error {
	if err != nil {
		metrics.Get().RecordCommandRefused(string(ReasonOf(err)))
		e.logger.Warn(err.Error())
		return err
	}
	metrics.Get().RecordCommand()
	return nil
}
