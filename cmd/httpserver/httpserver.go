// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/matrix-system/matrix-pay/internal/admindelivery"
	"github.com/matrix-system/matrix-pay/internal/backuprepo"
	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/metrics"
	"github.com/matrix-system/matrix-pay/internal/middleware"
	"github.com/matrix-system/matrix-pay/internal/paymentdelivery"
	"github.com/matrix-system/matrix-pay/internal/paymentservice"
	"github.com/matrix-system/matrix-pay/internal/reportservice"
	"github.com/matrix-system/matrix-pay/internal/sessionrepo"
	"github.com/matrix-system/matrix-pay/internal/sessionservice"
	"github.com/matrix-system/matrix-pay/internal/storage"
	"github.com/matrix-system/matrix-pay/internal/transactionrepo"
	"github.com/matrix-system/matrix-pay/internal/userdelivery"
	"github.com/matrix-system/matrix-pay/internal/userrepo"
	"github.com/matrix-system/matrix-pay/internal/userservice"
	"github.com/matrix-system/matrix-pay/pkg/configpkg"
)

// Server holds the blob store, handlers router and configuration.
type Server struct {
	Store    *storage.Store
	Engine   *gin.Engine
	Config   configpkg.Config
	Payments *paymentservice.Service
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close stops any in-flight payment and closes the store.
func (s *Server) Close() error {
	s.Payments.Close()
	return s.Store.Close()
}

// New creates Server type with instantiated domains and routes.
func New(store *storage.Store, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	ctx := logger.WithContext(context.Background())

	userRepo := userrepo.NewRepoJSON(store)
	transactionRepo := transactionrepo.NewRepoJSON(store)
	sessionRepo := sessionrepo.NewRepoJSON(store)
	backupRepo := backuprepo.NewRepoJSON(store)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	userService := userservice.New(userRepo)

	sessionService, err := sessionservice.New(ctx, sessionRepo, userRepo)
	if err != nil {
		return nil, err
	}

	notices := paymentdelivery.NewNotices()
	paymentService := paymentservice.New(
		sessionService, transactionRepo, notices, collector, logger, config.StepTimeScale,
	)

	reportService := reportservice.New(userRepo, transactionRepo, backupRepo)

	userHandler := userdelivery.NewHandler(userService, sessionService, transactionRepo, collector)
	paymentHandler := paymentdelivery.NewHandler(paymentService)
	adminHandler := admindelivery.NewHandler(userService, reportService, transactionRepo)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Register)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/users/logout", userHandler.Logout)
	engine.GET("/products", paymentHandler.Products)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	sessionRoutes := engine.Group("/").Use(middleware.RequireSession(sessionService, ""))

	sessionRoutes.GET("/users/me", userHandler.Me)
	sessionRoutes.GET("/transactions", userHandler.Transactions)
	sessionRoutes.GET("/notices", notices.List)

	// Purchases are for regular accounts only; admins work the console.
	userRoutes := engine.Group("/").Use(middleware.RequireSession(sessionService, domain.RoleUser))

	userRoutes.POST("/payments", paymentHandler.Create)
	userRoutes.GET("/payments/current", paymentHandler.Current)
	userRoutes.DELETE("/payments/current", paymentHandler.Cancel)

	adminRoutes := engine.Group("/admin").Use(middleware.RequireSession(sessionService, domain.RoleAdmin))

	adminRoutes.GET("/users", adminHandler.ListUsers)
	adminRoutes.POST("/users", adminHandler.CreateUser)
	adminRoutes.PUT("/users/:id", adminHandler.UpdateUser)
	adminRoutes.DELETE("/users/:id", adminHandler.DeleteUser)
	adminRoutes.POST("/users/:id/balance", adminHandler.AdjustBalance)
	adminRoutes.GET("/stats", adminHandler.Stats)
	adminRoutes.GET("/reports/:window", adminHandler.Report)
	adminRoutes.GET("/reports/:window/export", adminHandler.ReportCSV)
	adminRoutes.GET("/export", adminHandler.Export)
	adminRoutes.POST("/backup", adminHandler.Backup)
	adminRoutes.POST("/restore", adminHandler.Restore)

	server := &Server{
		Store:    store,
		Engine:   engine,
		Config:   config,
		Payments: paymentService,
	}

	return server, nil
}
