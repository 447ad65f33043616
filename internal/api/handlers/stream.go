package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/aegis-advisor/backend/internal/realtime"
	"github.com/wonny/aegis-advisor/backend/pkg/logger"
)

// Stream timing
const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// StreamHandler pushes the scope's signal log changes over a websocket
type StreamHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *realtime.Hub, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: log,
	}
}

// Stream upgrades the connection and forwards events until either side closes
// GET /api/signals/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	scope := ScopeFrom(r.Context())

	// 101 응답 전에 구독해야 핸드셰이크 직후 이벤트를 놓치지 않음
	sub := h.hub.Subscribe(scope, realtime.DefaultBuffer)
	defer h.hub.Unsubscribe(sub)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 가 이미 에러 응답을 썼음
		h.logger.WithError(err).Debug("Signal stream upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithField("scope", scope.Key())
	log.Info("Signal stream connected")

	// 클라이언트 메시지는 무시, close/pong 감지용
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Debug("Signal stream write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			log.WithField("dropped", sub.Dropped()).Info("Signal stream disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}
