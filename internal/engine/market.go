package engine

import (
	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/config"
)

// marketEntry tracks one tradeable kind. Prices are derived from stock, not
// stored: buy rises and sell falls as stock drains below its initial level,
// so the spread widens under scarcity.
type marketEntry struct {
	stock   int
	base    int
	initial int
}

func (m *marketEntry) buyPrice() int {
	p := m.base + (m.initial - m.stock)
	if p < 1 {
		p = 1
	}
	return p
}

func (m *marketEntry) sellPrice() int {
	p := m.base - 1 - (m.initial - m.stock)
	if p < 0 {
		p = 0
	}
	// A buy immediately followed by a sell must never profit the player.
	if ceiling := m.buyPrice() - 1; p > ceiling {
		p = ceiling
	}
	return p
}

// Market is the stock-driven exchange. It holds its own money pool: player
// purchases feed it, player sales drain it, and a sale the pool cannot cover
// is refused.
type Market struct {
	entries map[resource.Kind]*marketEntry
	money   int
}

// NewMarket builds the exchange from tuning. Only tradeable kinds get an
// entry; the pool opens with the configured float.
func NewMarket(cfg map[string]config.MarketEntry, startingMoney int) *Market {
	m := &Market{
		entries: make(map[resource.Kind]*marketEntry, len(resource.TradeableKinds)),
		money:   startingMoney,
	}
	for _, k := range resource.TradeableKinds {
		entry := cfg[string(k)]
		m.entries[k] = &marketEntry{
			stock:   entry.Stock,
			base:    entry.BasePrice,
			initial: entry.Stock,
		}
	}
	return m
}

// Tradeable reports whether the market deals in k at all.
func (m *Market) Tradeable(k resource.Kind) bool {
	_, ok := m.entries[k]
	return ok
}

// Stock returns the current stock of k.
func (m *Market) Stock(k resource.Kind) int {
	if e, ok := m.entries[k]; ok {
		return e.stock
	}
	return 0
}

// BuyPrice returns the price of the next single unit of k.
func (m *Market) BuyPrice(k resource.Kind) int {
	if e, ok := m.entries[k]; ok {
		return e.buyPrice()
	}
	return 0
}

// SellPrice returns the payout for the next single unit of k.
func (m *Market) SellPrice(k resource.Kind) int {
	if e, ok := m.entries[k]; ok {
		return e.sellPrice()
	}
	return 0
}

// QuoteBuy prices a purchase of qty units, walking the curve unit by unit,
// without mutating anything.
func (m *Market) QuoteBuy(k resource.Kind, qty int) (int, bool) {
	e, ok := m.entries[k]
	if !ok || qty < 1 || e.stock < qty {
		return 0, false
	}
	scratch := *e
	cost := 0
	for i := 0; i < qty; i++ {
		cost += scratch.buyPrice()
		scratch.stock--
	}
	return cost, true
}

// QuoteSell prices a sale of qty units without mutating anything. A payout
// the money pool cannot cover fails the quote.
func (m *Market) QuoteSell(k resource.Kind, qty int) (int, bool) {
	e, ok := m.entries[k]
	if !ok || qty < 1 {
		return 0, false
	}
	scratch := *e
	payout := 0
	for i := 0; i < qty; i++ {
		payout += scratch.sellPrice()
		scratch.stock++
	}
	if payout > m.money {
		return 0, false
	}
	return payout, true
}

// Buy removes qty units from stock and returns the total cost, which the
// caller has already debited from the player. The cost feeds the pool.
func (m *Market) Buy(k resource.Kind, qty int) (int, bool) {
	cost, ok := m.QuoteBuy(k, qty)
	if !ok {
		return 0, false
	}
	m.entries[k].stock -= qty
	m.money += cost
	return cost, true
}

// Sell adds qty units to stock and returns the payout drawn from the pool.
func (m *Market) Sell(k resource.Kind, qty int) (int, bool) {
	payout, ok := m.QuoteSell(k, qty)
	if !ok {
		return 0, false
	}
	m.entries[k].stock += qty
	m.money -= payout
	return payout, true
}

// ProduceRoboticon converts one unit of ore stock into one roboticon.
// Called on each tile-acquisition round; a no-op when ore is exhausted.
func (m *Market) ProduceRoboticon() bool {
	ore := m.entries[resource.Ore]
	if ore.stock < 1 {
		return false
	}
	ore.stock--
	m.entries[resource.Roboticon].stock++
	return true
}

// Money returns the current pool balance.
func (m *Market) Money() int {
	return m.money
}

// Quote is a public snapshot of one market entry.
type Quote struct {
	Kind      resource.Kind `json:"kind"`
	Stock     int           `json:"stock"`
	BuyPrice  int           `json:"buy_price"`
	SellPrice int           `json:"sell_price"`
}

// Quotes snapshots every entry in tradeable-kind order.
func (m *Market) Quotes() []Quote {
	out := make([]Quote, 0, len(resource.TradeableKinds))
	for _, k := range resource.TradeableKinds {
		e := m.entries[k]
		out = append(out, Quote{Kind: k, Stock: e.stock, BuyPrice: e.buyPrice(), SellPrice: e.sellPrice()})
	}
	return out
}

// ClosingPrices returns the sell price of every tradeable kind, used to value
// held resources at game end.
func (m *Market) ClosingPrices() map[resource.Kind]int {
	out := make(map[resource.Kind]int, len(resource.TradeableKinds))
	for _, k := range resource.TradeableKinds {
		out[k] = m.entries[k].sellPrice()
	}
	return out
}
