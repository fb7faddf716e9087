package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "order-ledger/internal/adapters/web"
	"order-ledger/internal/app"
	"order-ledger/internal/config"
	"order-ledger/internal/core"
	"order-ledger/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.NewPool(connCtx, cfg.DatabaseURL, cfg.DBMaxConns)
	cancel()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	orderService := core.NewOrderService(core.NewOrderRepository(pool, cfg.OrderIDPrefix))
	userService := core.NewUserService(pool)

	hub := webAdapter.NewHub(cfg.AllowedOrigins)
	go hub.Run(ctx)

	svc := app.NewAppService(orderService, userService, hub)
	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTTTL,
		SecureCookies:  cfg.SecureCookies,
		Hub:            hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server starting on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	// Closing the hub first releases hijacked websocket connections, which Shutdown does not track.
	stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}
