package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fitnesspoint/internal/auth"
	"fitnesspoint/internal/config"
	"fitnesspoint/internal/importer"
	"fitnesspoint/internal/logger"
	"fitnesspoint/internal/subscription"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Imports       *importer.Handler
	Subscriptions *subscription.Handler
	Ready         []Pinger
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, h Handlers) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", Health)
	router.GET("/ready", Ready(h.Ready...))
	router.GET("/metrics", Metrics())

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	rateLimit := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	imports := router.Group("/imports")
	imports.Use(authMiddleware, rateLimit, auth.RequireRole(auth.RoleAdmin, auth.RoleManager))
	{
		imports.POST("", h.Imports.Upload)
		imports.GET("/:importID", h.Imports.Get)
		imports.GET("/:importID/failed-rows", h.Imports.FailedRows)
	}

	subs := router.Group("/subscriptions")
	subs.Use(authMiddleware, rateLimit, auth.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleStaff))
	{
		subs.GET("/:subscriptionID/renewal", h.Subscriptions.Preview)
		subs.POST("/:subscriptionID/renew", h.Subscriptions.Renew)
		subs.POST("/:subscriptionID/upgrade", h.Subscriptions.Upgrade)
		subs.GET("/:subscriptionID/invoices", h.Subscriptions.Invoices)
	}

	staff := router.Group("/")
	staff.Use(authMiddleware, rateLimit, auth.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleStaff))
	{
		staff.GET("/plans", h.Subscriptions.Plans)
		staff.GET("/members/:memberID/subscriptions", h.Subscriptions.MemberSubscriptions)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks until the server stops. A shutdown is not reported as an error.
func (s *Server) Start() error {
	logger.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
