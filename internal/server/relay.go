package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coupfree/coup-server-go/internal/game"
	"github.com/coupfree/coup-server-go/internal/session"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ClientMessage is one request from a connected client.
type ClientMessage struct {
	Type     string       `json:"type"`
	Token    string       `json:"token,omitempty"`
	MatchID  string       `json:"match_id,omitempty"`
	PlayerID string       `json:"player_id,omitempty"`
	Command  game.Command `json:"command"`
}

// Client message types.
const (
	MsgRegister = "REGISTER"
	MsgJoin     = "JOIN_MATCH"
	MsgCommand  = "COMMAND"
)

// ServerMessage is one push to a connected client.
type ServerMessage struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id,omitempty"`
	Token   string          `json:"token,omitempty"`
	Error   string          `json:"error,omitempty"`
	View    *game.StateView `json:"view,omitempty"`
}

// Server message types.
const (
	MsgRegistered = "REGISTERED"
	MsgView       = "MATCH_VIEW"
	MsgError      = "ERROR"
)

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	matchID  string
}

// Relay fans authoritative match states out to websocket clients, one
// redacted view per connection. It is a host around the pure engine: every
// mutation goes through the match manager and every push is a view.
type Relay struct {
	matches  *game.Manager
	sessions *session.Manager
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool

	httpServer *http.Server
}

// NewRelay creates a relay. Wire it to the match manager with
// SetNotificationHandler(relay.HandleNotification) so successors reach the
// subscribers.
func NewRelay(matches *game.Manager, sessions *session.Manager, logger *zap.Logger) *Relay {
	return &Relay{
		matches:  matches,
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]bool),
	}
}

// HandleNotification pushes the match's fresh views to its subscribers.
func (r *Relay) HandleNotification(n game.MatchNotification) {
	r.broadcastMatch(n.MatchID)
}

// Serve blocks on the relay's HTTP server until Shutdown.
func (r *Relay) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", r.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	r.logger.Info("relay listening", zap.String("address", addr))
	if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("relay server error: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and closes every client.
func (r *Relay) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	for c := range r.clients {
		close(c.send)
		delete(r.clients, c)
	}
	r.mu.Unlock()

	if r.httpServer != nil {
		return r.httpServer.Shutdown(ctx)
	}
	return nil
}

func (r *Relay) handleWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	r.mu.Lock()
	r.clients[c] = true
	r.mu.Unlock()

	go r.writePump(c)
	go r.readPump(c)
}

func (r *Relay) readPump(c *client) {
	defer func() {
		r.unregister(c)
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			r.sendError(c, "", fmt.Sprintf("malformed message: %v", err))
			continue
		}
		r.handleMessage(c, msg)
	}
}

func (r *Relay) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (r *Relay) unregister(c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.send)
	}
}

func (r *Relay) handleMessage(c *client, msg ClientMessage) {
	switch msg.Type {
	case MsgRegister:
		// Token doubles as the player name on first contact.
		s, err := r.sessions.Register(msg.Token)
		if err != nil {
			r.sendError(c, "", err.Error())
			return
		}
		r.sendJSON(c, ServerMessage{Type: MsgRegistered, Token: s.Token})

	case MsgJoin:
		s, err := r.sessions.Validate(msg.Token)
		if err != nil {
			r.sendError(c, msg.MatchID, err.Error())
			return
		}
		view, err := r.matches.View(msg.MatchID, msg.PlayerID)
		if err != nil {
			r.sendError(c, msg.MatchID, err.Error())
			return
		}
		c.playerID = msg.PlayerID
		c.matchID = msg.MatchID
		r.logger.Info("client joined match",
			zap.String("match_id", msg.MatchID),
			zap.String("player_id", c.playerID),
			zap.String("session", s.ID),
		)
		r.sendJSON(c, ServerMessage{Type: MsgView, MatchID: msg.MatchID, View: &view})

	case MsgCommand:
		if _, err := r.sessions.Validate(msg.Token); err != nil {
			r.sendError(c, msg.MatchID, err.Error())
			return
		}
		if _, err := r.matches.Apply(msg.MatchID, msg.Command); err != nil {
			// Rejected transitions are normal gameplay; the state stood.
			r.sendError(c, msg.MatchID, err.Error())
			return
		}
		// Successors reach every subscriber through the notification hook.

	default:
		r.sendError(c, "", fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// broadcastMatch pushes a freshly redacted view to every client watching the
// match. Each player gets their own projection; nobody receives another
// player's hand.
func (r *Relay) broadcastMatch(matchID string) {
	r.mu.RLock()
	subscribers := make([]*client, 0)
	for c := range r.clients {
		if c.matchID == matchID {
			subscribers = append(subscribers, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range subscribers {
		view, err := r.matches.View(matchID, c.playerID)
		if err != nil {
			continue
		}
		r.sendJSON(c, ServerMessage{Type: MsgView, MatchID: matchID, View: &view})
	}
}

func (r *Relay) sendJSON(c *client, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("failed to marshal server message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer: drop the message rather than the match.
		r.logger.Warn("dropping message to slow client",
			zap.String("player_id", c.playerID))
	}
}

func (r *Relay) sendError(c *client, matchID, text string) {
	r.sendJSON(c, ServerMessage{Type: MsgError, MatchID: matchID, Error: text})
}
