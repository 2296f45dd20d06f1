package network

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/teamfractal/roboticon-quest/server/internal/domain/resource"
	"github.com/teamfractal/roboticon-quest/server/internal/engine"
	"github.com/teamfractal/roboticon-quest/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Client holds one WebSocket connection and its command rate limiter.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// NewClient creates a new WebSocket client. Commands are limited to 5 per
// second with a burst of 10, enough for a fast human but not a flood.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// The command types a client may submit.
const (
	ActionAdvance      = "ADVANCE"
	ActionClaimTile    = "CLAIM_TILE"
	ActionDeploy       = "DEPLOY"
	ActionUpgrade      = "UPGRADE"
	ActionMarketBuy    = "MARKET_BUY"
	ActionMarketSell   = "MARKET_SELL"
	ActionSubmitTrade  = "SUBMIT_TRADE"
	ActionResolveTrade = "RESOLVE_TRADE"
	ActionPause        = "PAUSE"
	ActionResume       = "RESUME"
)

// PlayerAction is an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CommandResult is the reply sent back to the submitting client only.
type CommandResult struct {
	Type    string `json:"type"` // always "COMMAND_RESULT"
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
	TradeID string `json:"trade_id,omitempty"`
}

// ReadPump pumps messages from the websocket connection into the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	if !c.limiter.Allow() {
		c.hub.logger.Warn("Rate limit exceeded for client action " + action.Type)
		c.reply(CommandResult{Type: "COMMAND_RESULT", Action: action.Type, OK: false, Error: "rate limit exceeded"})
		return
	}

	eng := c.hub.engine
	var err error
	var tradeID string

	switch action.Type {
	case ActionAdvance:
		err = eng.AdvancePhase()
	case ActionClaimTile:
		var p struct {
			TileID int `json:"tile_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.ClaimTile(p.TileID)
		}
	case ActionDeploy:
		var p struct {
			TileID int `json:"tile_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.DeployRoboticon(p.TileID)
		}
	case ActionUpgrade:
		var p struct {
			TileID int    `json:"tile_id"`
			Kind   string `json:"kind"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.UpgradeRoboticon(p.TileID, resource.Kind(p.Kind))
		}
	case ActionMarketBuy:
		var p struct {
			Kind string `json:"kind"`
			Qty  int    `json:"qty"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.MarketBuy(resource.Kind(p.Kind), p.Qty)
		}
	case ActionMarketSell:
		var p struct {
			Kind string `json:"kind"`
			Qty  int    `json:"qty"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.MarketSell(resource.Kind(p.Kind), p.Qty)
		}
	case ActionSubmitTrade:
		var p struct {
			ToID  int            `json:"to_id"`
			Offer map[string]int `json:"offer"`
			Price int            `json:"price"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			offer := make(map[resource.Kind]int, len(p.Offer))
			for k, n := range p.Offer {
				offer[resource.Kind(k)] = n
			}
			tradeID, err = eng.SubmitTrade(p.ToID, offer, p.Price)
		}
	case ActionResolveTrade:
		var p struct {
			TradeID string `json:"trade_id"`
			Accept  bool   `json:"accept"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.ResolveTrade(p.TradeID, p.Accept)
		}
	case ActionPause:
		err = eng.Pause()
	case ActionResume:
		err = eng.Resume()
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
		c.reply(CommandResult{Type: "COMMAND_RESULT", Action: action.Type, OK: false, Error: "unknown action type"})
		return
	}

	result := CommandResult{Type: "COMMAND_RESULT", Action: action.Type, OK: err == nil, TradeID: tradeID}
	if err != nil {
		result.Error = err.Error()
		result.Reason = string(engine.ReasonOf(err))
	}
	c.reply(result)
}

// reply sends a message to this client only.
func (c *Client) reply(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
