package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jask/cncdeck/internal/config"
	"github.com/jask/cncdeck/internal/database"
	"github.com/jask/cncdeck/internal/database/repository"
	"github.com/jask/cncdeck/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.OpenMigrated(cfg.Mock.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	handler := server.RegisterRoutes(
		repository.NewMacroRepo(db),
		repository.NewMachineRepo(db),
		server.NewHub(),
		&server.RunLog{},
		server.Options{Token: cfg.ResolveToken(nil)},
	)
	srv := &http.Server{Addr: cfg.Mock.Listen, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Printf("cncdeck-server listening on %s", cfg.Mock.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
