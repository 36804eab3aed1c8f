package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ProgressEvent is pushed to connected dashboards when a step changes
type ProgressEvent struct {
	Type      string              `json:"type"`
	Progress  *EngagementProgress `json:"progress,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Hub fans engagement-progress events out to dashboard websocket clients
type Hub struct {
	aggregator *Aggregator
	logger     *zap.Logger
	upgrader   websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHub(aggregator *Aggregator, logger *zap.Logger) *Hub {
	return &Hub{
		aggregator: aggregator,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// HandleConnection upgrades the request and holds the connection open
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Reader loop only detects close; dashboards never send payloads
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// PublishProgress recomputes and broadcasts one client's engagement progress.
// Implements the onboarding step-change callback.
func (h *Hub) PublishProgress(ctx context.Context, clientID uuid.UUID) {
	progress, err := h.aggregator.ProgressForClient(ctx, clientID)
	if err != nil {
		h.logger.Warn("failed to compute progress for broadcast",
			zap.Error(err),
			zap.String("client_id", clientID.String()))
		return
	}
	if progress == nil {
		return
	}

	event := ProgressEvent{
		Type:      "engagement_progress",
		Progress:  progress,
		Timestamp: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("dropping dashboard connection", zap.Error(err))
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// Close shuts down all connections
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}
