package restapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// StreamHandler pushes the current token to websocket clients on connect and on every change.
type StreamHandler struct {
	resolver port.TokenResolver
	upgrader websocket.Upgrader
	logger   port.Logger
}

// NewStreamHandler creates a StreamHandler. An empty allowedOrigins list or "*" accepts any origin.
func NewStreamHandler(resolver port.TokenResolver, allowedOrigins []string, logger port.Logger) *StreamHandler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return &StreamHandler{
		resolver: resolver,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Stream upgrades the connection and streams token updates until the client goes away.
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Holds only the latest value; older undelivered values are replaced.
	updates := make(chan entity.TokenInfo, 1)
	unsubscribe := h.resolver.Subscribe(func(token entity.TokenInfo) {
		select {
		case updates <- token:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- token:
			default:
			}
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	h.logger.Debug("Token stream client connected", "remote", c.ClientIP())
	if err := h.write(conn, h.resolver.Token()); err != nil {
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			h.logger.Debug("Token stream client disconnected", "remote", c.ClientIP())
			return
		case <-c.Request.Context().Done():
			return
		case token := <-updates:
			if err := h.write(conn, token); err != nil {
				h.logger.Debug("Token stream write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, token entity.TokenInfo) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(token)
}

// readPump drains client frames so control messages are handled and closes done on error.
func (h *StreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
