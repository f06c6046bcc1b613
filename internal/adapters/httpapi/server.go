// Package httpapi exposes the broker over HTTP for the browser extension:
// auth code exchange, session validation, per-user preferences and a bridge
// into the message bus.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/adapters/authapi"
	"github.com/vesper-voice/vesper/internal/adapters/prefs"
	"github.com/vesper-voice/vesper/internal/bus"
)

// Server is the broker HTTP API.
type Server struct {
	listenAddr string
	engine     *gin.Engine
	httpServer *http.Server
	auth       *authapi.Client
	prefs      prefs.Store
	dispatcher *bus.Dispatcher
	logger     *zap.Logger
}

// NewServer creates the broker API server with all routes registered.
func NewServer(
	listenAddr string,
	auth *authapi.Client,
	prefStore prefs.Store,
	dispatcher *bus.Dispatcher,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.HandleMethodNotAllowed = true

	s := &Server{
		listenAddr: listenAddr,
		engine:     engine,
		auth:       auth,
		prefs:      prefStore,
		dispatcher: dispatcher,
		logger:     logger,
	}

	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	api := engine.Group("/api")
	api.POST("/auth", s.exchangeCode)
	api.GET("/auth", s.getSession)
	api.GET("/session", s.getSession)
	api.GET("/user", s.getPreferences)
	api.POST("/user", s.setPreferences)
	api.POST("/message", s.handleMessage)

	return s
}

// Start begins serving. It blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: s.engine,
	}
	s.logger.Info("Broker API listening", zap.String("address", s.listenAddr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

type exchangeRequest struct {
	Code        string `json:"code"`
	RedirectURL string `json:"redirectUrl"`
}

func (s *Server) exchangeCode(c *gin.Context) {
	var req exchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	session, err := s.auth.ExchangeCode(c.Request.Context(), req.Code, req.RedirectURL)
	if err != nil {
		s.logger.Error("Code exchange failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange authorization code"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) getSession(c *gin.Context) {
	user, ok := s.authenticate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) getPreferences(c *gin.Context) {
	user, ok := s.authenticate(c)
	if !ok {
		return
	}

	settings, err := s.prefs.Get(c.Request.Context(), user.ID)
	if err != nil {
		s.logger.Error("Failed to load preferences", zap.Error(err), zap.String("user", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) setPreferences(c *gin.Context) {
	user, ok := s.authenticate(c)
	if !ok {
		return
	}

	var settings map[string]interface{}
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload"})
		return
	}

	if err := s.prefs.Set(c.Request.Context(), user.ID, settings); err != nil {
		s.logger.Error("Failed to store preferences", zap.Error(err), zap.String("user", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) handleMessage(c *gin.Context) {
	var msg bus.Message
	if err := c.ShouldBindJSON(&msg); err != nil || msg.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()
	c.JSON(http.StatusOK, s.dispatcher.Dispatch(ctx, msg))
}

// authenticate validates the bearer token against the auth service. On
// failure it writes the 401 response and returns ok=false.
func (s *Server) authenticate(c *gin.Context) (*authapi.User, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
		return nil, false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	user, err := s.auth.GetUser(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return nil, false
	}
	return user, true
}
