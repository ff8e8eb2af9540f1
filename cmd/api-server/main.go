package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/auth"
	"bookhub/internal/authors"
	"bookhub/internal/events"
	"bookhub/internal/libraries"
	"bookhub/internal/media"
	"bookhub/internal/reading"
	"bookhub/internal/series"
	"bookhub/pkg/database"
	"bookhub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start the event feed first (so you notice binding errors early)
	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))
	tcpSrv := events.NewServer(srvCfg.EventsAddr, hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	finder := media.NewFinder(db)

	// Media (protected: every read is scoped to the caller)
	mediaGroup := router.Group("/media")
	mediaGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	mediaRepo := media.NewRepo(db)
	mediaHandler := media.NewHandler(finder, mediaRepo, hub)
	mediaHandler.RegisterRoutes(mediaGroup)

	// Authors (virtual aggregates, protected)
	authorsGroup := router.Group("/authors")
	authorsGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	authorsHandler := authors.NewHandler(authors.NewService(finder))
	authorsHandler.RegisterRoutes(authorsGroup)

	// Series metadata records (protected)
	seriesGroup := router.Group("/series-metadata")
	seriesGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	seriesHandler := series.NewHandler(series.NewRepo(db), hub)
	seriesHandler.RegisterRoutes(seriesGroup)

	// Library administration (server owner only)
	libGroup := router.Group("/libraries")
	libGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo), auth.RequireServerOwner())
	libHandler := libraries.NewHandler(libraries.NewRepo(db), hub)
	libHandler.RegisterRoutes(libGroup)

	// Per-user routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":           claims.UserID,
			"username":     claims.Username,
			"email":        claims.Email,
			"server_owner": claims.ServerOwner,
		})
	})

	readingHandler := reading.NewHandler(reading.NewRepo(db), finder, hub)
	readingHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
