package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ndelorme/salon-server/internal/auth"
	"github.com/ndelorme/salon-server/internal/config"
	"github.com/ndelorme/salon-server/internal/gateway"
)

// NewServer builds the HTTP server: the websocket gateway endpoint, the
// login endpoint and the demo polling surface.
func NewServer(gw *gateway.Gateway, authService *auth.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	api := NewAPIHandlers(authService, logger)
	router.POST("/auth/login", api.Login)

	poll := NewPollHandlers()
	router.GET("/time", poll.Time)
	router.GET("/update", poll.Update)
	router.GET("/increment", poll.Increment)
	router.GET("/events", poll.Events)

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(gw, logger)))

	if cfg.StaticDir != "" {
		router.Static("/front", cfg.StaticDir)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
