package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
)

// Trade is a pending peer-to-peer offer: the source hands over the offered
// resources, the target pays the asking price in money.
type Trade struct {
	ID          string                `json:"id"`
	FromID      int                   `json:"from_id"`
	ToID        int                   `json:"to_id"`
	Offer       map[resource.Kind]int `json:"offer"` // yield kinds only
	Price       int                   `json:"price"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

type pairKey struct {
	from, to int
}

// tradeBook holds the pending trades. At most one trade per (source, target)
// pair; unresolved trades expire after the configured TTL, mirroring the
// auction screen's auto-reset.
type tradeBook struct {
	trades map[string]*Trade
	byPair map[pairKey]string
	ttl    time.Duration
}

func newTradeBook(ttl time.Duration) *tradeBook {
	return &tradeBook{
		trades: make(map[string]*Trade),
		byPair: make(map[pairKey]string),
		ttl:    ttl,
	}
}

// submit registers a new trade. Returns false when the pair already has one
// pending.
func (b *tradeBook) submit(from, to int, offer map[resource.Kind]int, price int, now time.Time) (*Trade, bool) {
	key := pairKey{from, to}
	if _, exists := b.byPair[key]; exists {
		return nil, false
	}
	copied := make(map[resource.Kind]int, len(offer))
	for k, n := range offer {
		copied[k] = n
	}
	t := &Trade{
		ID:          uuid.NewString(),
		FromID:      from,
		ToID:        to,
		Offer:       copied,
		Price:       price,
		SubmittedAt: now,
	}
	b.trades[t.ID] = t
	b.byPair[key] = t.ID
	return t, true
}

func (b *tradeBook) get(id string) (*Trade, bool) {
	t, ok := b.trades[id]
	return t, ok
}

func (b *tradeBook) remove(id string) {
	t, ok := b.trades[id]
	if !ok {
		return
	}
	delete(b.trades, id)
	delete(b.byPair, pairKey{t.FromID, t.ToID})
}

// prune removes and returns every trade older than the TTL.
func (b *tradeBook) prune(now time.Time) []*Trade {
	var expired []*Trade
	for _, t := range b.trades {
		if now.Sub(t.SubmittedAt) >= b.ttl {
			expired = append(expired, t)
		}
	}
	for _, t := range expired {
		b.remove(t.ID)
	}
	return expired
}

// pendingFor returns the trades awaiting the given player's decision.
func (b *tradeBook) pendingFor(playerID int) []*Trade {
	var out []*Trade
	for _, t := range b.trades {
		if t.ToID == playerID {
			out = append(out, t)
		}
	}
	return out
}
