package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"nepse-gateway/src/dispatch"
	"nepse-gateway/src/helpers"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/models"
	"nepse-gateway/src/ratelimit"
	"nepse-gateway/src/updater"
	"nepse-gateway/src/validator"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// GatewayServer
// -----------------------------------------------------------------------------

type GatewayServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Registry  *dispatch.Registry
	Limiter   *ratelimit.SlidingWindowLimiter
	Validator *validator.Validator
	Updater   *updater.StockMapUpdater
	engine    *gin.Engine

	// WebSocket request-reply clients
	clientsMu sync.Mutex
	clients   map[*Client]struct{}
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewGatewayServer(cfg *models.MConfig, log *logger.Logger, registry *dispatch.Registry, limiter *ratelimit.SlidingWindowLimiter, v *validator.Validator, upd *updater.StockMapUpdater) *GatewayServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &GatewayServer{
		Config:    cfg,
		Logger:    log,
		Registry:  registry,
		Limiter:   limiter,
		Validator: v,
		Updater:   upd,
		engine:    gin.Default(),
		clients:   make(map[*Client]struct{}),
	}

	// Add CORS + cache directive Middleware
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Cache-Control", "public, max-age=30")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.engine.Use(s.rateLimitMiddleware)

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Client Identity
// -----------------------------------------------------------------------------

// clientIdentity prefers the first X-Forwarded-For hop so gateways behind a
// proxy still rate-limit per end client.
func clientIdentity(c *gin.Context) string {
	if fwd := c.Request.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	return c.ClientIP()
}

// -----------------------------------------------------------------------------
// Rate Limit Middleware
// -----------------------------------------------------------------------------

func (s *GatewayServer) rateLimitMiddleware(c *gin.Context) {
	// WebSocket handshakes admit under their own category in handleWebSocket.
	if c.Request.URL.Path == "/ws" {
		c.Next()
		return
	}

	decision := s.Limiter.Admit(clientIdentity(c), c.Request.URL.Path)
	writeRateHeaders(c, decision)

	if !decision.Allowed {
		retryAfter := decision.ResetTime - time.Now().Unix()
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"category":    decision.Category,
			"retry_after": retryAfter,
		})
		return
	}

	c.Next()
}

// -----------------------------------------------------------------------------

func writeRateHeaders(c *gin.Context, d models.MRateDecision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetTime, 10))
	c.Header("X-RateLimit-Category", d.Category)
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *GatewayServer) setupRoutes() {
	s.engine.GET("/", s.getIndex)
	s.engine.GET("/health", s.getHealth)
	s.engine.GET("/rate-limit/stats", s.getRateLimitStats)

	s.engine.GET("/validate/stock/:symbol", s.validateStock)
	s.engine.GET("/validate/index/:index_name", s.validateIndex)
	s.engine.GET("/validation/stats", s.getValidationStats)

	s.engine.POST("/admin/update-stocks", s.adminUpdateStocks)

	// One explicit endpoint per logical route
	for _, desc := range s.Registry.Routes() {
		s.engine.GET("/"+desc.Name, s.handleRoute(desc.Name))
	}

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)

	s.engine.NoRoute(func(c *gin.Context) {
		s.respondError(c, helpers.NewRouteNotFoundError(c.Request.URL.Path))
	})
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *GatewayServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting HTTP server on %s", addr)

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) Stop() error {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		client.conn.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *GatewayServer) handleRoute(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]string{
			"symbol": c.Query("symbol"),
		}

		payload, err := s.Registry.Execute(c.Request.Context(), name, params)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.Data(http.StatusOK, "application/json", payload)
	}
}

// -----------------------------------------------------------------------------

// respondError maps the error taxonomy onto HTTP statuses.
func (s *GatewayServer) respondError(c *gin.Context, err error) {
	var validationErr *helpers.ValidationError
	var stateErr *helpers.MarketStateError
	var notFoundErr *helpers.RouteNotFoundError
	var upstreamErr *helpers.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		body := gin.H{"error": validationErr.Message}
		if len(validationErr.Suggestions) > 0 {
			body["suggestions"] = validationErr.Suggestions
		}
		if len(validationErr.AvailableIndices) > 0 {
			body["available_indices"] = validationErr.AvailableIndices
		}
		c.JSON(http.StatusBadRequest, body)

	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":          stateErr.Message,
			"required_state": stateErr.RequiredState,
		})

	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})

	case errors.As(err, &upstreamErr):
		s.Logger.Error("Upstream failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream data source unavailable"})

	default:
		s.Logger.Error("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getIndex(c *gin.Context) {
	names := make([]string, 0)
	for _, desc := range s.Registry.Routes() {
		names = append(names, desc.Name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<html><head><title>" + s.Config.Name + "</title></head><body>")
	b.WriteString("<h1>" + s.Config.Name + "</h1><ul>")
	for _, name := range names {
		b.WriteString(fmt.Sprintf(`<li><a href="/%s">/%s</a></li>`, name, name))
	}
	b.WriteString("</ul></body></html>")

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getHealth(c *gin.Context) {
	s.clientsMu.Lock()
	connections := len(s.clients)
	s.clientsMu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": connections,
	})
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Limiter.Stats())
}

// -----------------------------------------------------------------------------
// Validation Handlers
// -----------------------------------------------------------------------------

func (s *GatewayServer) validateStock(c *gin.Context) {
	result := s.Validator.ValidateStockSymbol(c.Param("symbol"))
	if !result.Valid {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) validateIndex(c *gin.Context) {
	result := s.Validator.ValidateIndexName(c.Param("index_name"))
	if !result.Valid {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getValidationStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Validator.Stats())
}

// -----------------------------------------------------------------------------
// Admin Handlers
// -----------------------------------------------------------------------------

// adminUpdateStocks rebuilds the stock map snapshot and reloads the
// validator. Guarded by a shared secret; an empty configured secret
// disables the endpoint.
func (s *GatewayServer) adminUpdateStocks(c *gin.Context) {
	if s.Config.AdminSecret == "" || c.GetHeader("X-Admin-Secret") != s.Config.AdminSecret {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := s.Updater.Update(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.Validator.Reload(); err != nil {
		s.Logger.Error("Stock map reload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot updated but reload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
