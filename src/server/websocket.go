package server

import (
	"context"
	"encoding/json"
	"net/http"

	"nepse-gateway/src/models"
	"nepse-gateway/src/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) handleWebSocket(c *gin.Context) {
	identity := clientIdentity(c)

	// Connection admission runs before the upgrade so rejected clients get a
	// plain HTTP 429 instead of a dropped socket.
	decision := s.Limiter.Admit(identity, ratelimit.CategoryWsConnection)
	writeRateHeaders(c, decision)
	if !decision.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "too many websocket connections",
			"category": decision.Category,
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		server:   s,
		conn:     conn,
		identity: identity,
		// Buffered channel to prevent blocking reads while replies drain
		send:   make(chan interface{}, 256),
		ctx:    ctx,
		cancel: cancel,
	}

	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	s.clientsMu.Unlock()

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage executes one request frame and queues the reply.
// Malformed frames get an error reply; the connection stays up.
func (s *GatewayServer) HandleClientMessage(client *Client, message []byte) {
	var req models.MWsRequest
	if err := json.Unmarshal(message, &req); err != nil {
		s.queueResponse(client, models.MWsResponse{
			Error: "malformed request: expected JSON with 'route', 'params' and 'messageId'",
		})
		return
	}

	decision := s.Limiter.Admit(client.identity, ratelimit.CategoryWsMessage)
	rateInfo := &models.MWsRateInfo{
		Remaining: decision.Remaining,
		Limit:     decision.Limit,
		ResetTime: decision.ResetTime,
	}

	if !decision.Allowed {
		s.queueResponse(client, models.MWsResponse{
			MessageID: req.MessageID,
			Error:     "rate limit exceeded",
			RateLimit: rateInfo,
		})
		return
	}

	payload, err := s.Registry.Execute(client.ctx, req.Route, req.Params)
	if err != nil {
		s.queueResponse(client, models.MWsResponse{
			MessageID: req.MessageID,
			Error:     err.Error(),
			RateLimit: rateInfo,
		})
		return
	}

	s.queueResponse(client, models.MWsResponse{
		MessageID: req.MessageID,
		Data:      payload,
		RateLimit: rateInfo,
	})
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) queueResponse(client *Client, resp models.MWsResponse) {
	// Use select to avoid blocking if client's send buffer is full
	select {
	case client.send <- resp:
	default:
		s.Logger.Warning("WebSocket client %s send buffer full, dropping response", client.identity)
	}
}
