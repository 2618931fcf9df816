// Package feed streams game notifications to spectators over WebSocket.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/setgame/internal/display"
	"github.com/lox/setgame/internal/game"
)

// Hub is a game.Display that fans notifications out to every connected
// spectator. Notifications never block: a spectator that cannot keep up is
// disconnected.
type Hub struct {
	upgrader   websocket.Upgrader
	board      *display.Board
	names      []string
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	stopped    chan struct{}
	logger     *log.Logger
	mu         sync.RWMutex
}

var _ game.Display = (*Hub)(nil)

// NewHub creates a hub. When board is set, each new spectator first receives
// a snapshot of it.
func NewHub(board *display.Board, names []string, logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Spectating is read-only, so any origin may watch
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		board:      board,
		names:      names,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		stopped:    make(chan struct{}),
		logger:     logger.WithPrefix("feed"),
	}
}

// Handler returns the HTTP routes: /ws for spectators and /health
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})
	return mux
}

// Serve listens on addr until ctx is done
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info("Spectator feed listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("feed server: %w", err)
	}
	return nil
}

// Run tracks connecting and departing spectators until ctx is done, then
// disconnects everyone. Spectators can only connect while Run is active.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.sendSnapshot(c)
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Spectator connected", "total", total)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Spectator disconnected", "total", total)

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Clients returns the number of connected spectators
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, h.logger)
	select {
	case h.register <- c:
	case <-h.stopped:
		c.close()
		return
	}
	c.start()

	go func() {
		<-c.done
		select {
		case h.unregister <- c:
		case <-h.stopped:
		}
	}()
}

// sendSnapshot queues the board as c's first message. Callers hold the write
// lock, so no broadcast can slip in between the snapshot and registration.
func (h *Hub) sendSnapshot(c *client) {
	if h.board == nil {
		return
	}
	msg, err := NewMessage(MessageTypeSnapshot, newSnapshotData(h.names, h.board.Snapshot()))
	if err != nil {
		h.logger.Error("Failed to build snapshot", "error", err)
		return
	}
	c.trySend(msg)
}

func (h *Hub) broadcast(msgType MessageType, data any) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		h.logger.Error("Failed to build feed message", "type", msgType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.trySend(msg) {
			h.logger.Warn("Spectator too slow, disconnecting")
			c.close()
		}
	}
}

func (h *Hub) PlaceCard(card, slot int) {
	h.broadcast(MessageTypePlaceCard, CardData{Slot: slot, Card: &card})
}

func (h *Hub) RemoveCard(slot int) {
	h.broadcast(MessageTypeRemoveCard, CardData{Slot: slot})
}

func (h *Hub) PlaceToken(player, slot int) {
	h.broadcast(MessageTypePlaceToken, TokenData{Player: player, Slot: slot})
}

func (h *Hub) RemoveToken(player, slot int) {
	h.broadcast(MessageTypeRemoveToken, TokenData{Player: player, Slot: slot})
}

func (h *Hub) SetScore(player, score int) {
	h.broadcast(MessageTypeScore, ScoreData{Player: player, Score: score})
}

func (h *Hub) SetFreeze(player int, remaining time.Duration) {
	h.broadcast(MessageTypeFreeze, FreezeData{Player: player, RemainingMS: remaining.Milliseconds()})
}

func (h *Hub) SetCountdown(remaining time.Duration, warn bool) {
	h.broadcast(MessageTypeCountdown, CountdownData{RemainingMS: remaining.Milliseconds(), Warn: warn})
}

func (h *Hub) AnnounceWinners(players []int) {
	h.broadcast(MessageTypeWinners, WinnersData{Players: players})
}
