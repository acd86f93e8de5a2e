package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"crmdesk/internal/config"
	"crmdesk/internal/db"
	"crmdesk/internal/httpserver"
	"crmdesk/internal/logger"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "run SQL migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()
	cfg := config.Load()

	if *migrateOnlyFlag {
		if err := db.RunMigrations(cfg.DatabaseDSN); err != nil {
			lg.Fatalw("migrations failed", "error", err)
		}
		lg.Infow("migrations completed")
		return
	}

	conn, err := db.Connect(cfg.DatabaseDSN, cfg.Migrations)
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}

	router := httpserver.NewRouter(conn, lg, cfg)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}

	go func() {
		lg.Infow("listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Infow("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Errorw("shutdown error", "error", err)
	}
	lg.Infow("server stopped")
}
