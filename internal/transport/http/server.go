package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/auth"
	"github.com/vovakirdan/wirechat-peer/internal/config"
	"github.com/vovakirdan/wirechat-peer/internal/core"
)

// NewServer builds the relay HTTP server: health probe, WebSocket endpoint and peer listing.
// /ws bypasses gin: its response writer cannot be hijacked once the upgrade header is out.
func NewServer(hub *core.Hub, cfg *config.RelayConfig, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	var jwtConfig *auth.JWTConfig
	if cfg.Secret != "" {
		jwtConfig = auth.NewJWTConfig(cfg.Secret)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	api := router.Group("/api")
	if jwtConfig != nil {
		api.Use(AuthMiddleware(jwtConfig, logger))
	}
	handlers := NewAPIHandlers(hub, logger)
	api.GET("/peers", handlers.ListPeers)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, WSOptions{
		JWT:                  jwtConfig,
		MaxMessageBytes:      cfg.MaxMessageBytes,
		MaxMessagesPerMinute: cfg.MaxMessagesPerMinute,
	}, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
