package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/cncdeck/internal/api"
	"github.com/jask/cncdeck/internal/config"
	"github.com/jask/cncdeck/internal/database"
	"github.com/jask/cncdeck/internal/database/repository"
	"github.com/jask/cncdeck/internal/dropdown"
	"github.com/jask/cncdeck/internal/events"
	"github.com/jask/cncdeck/internal/secrets"
	"github.com/jask/cncdeck/internal/tui"
	"github.com/jask/cncdeck/internal/workspace"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if _, err := config.EnsureFile(cfg); err != nil {
		log.Printf("warn: write default config: %v", err)
	}
	tokens := secrets.NewStore("")

	// cncdeck set-token <token> stores the controller token outside config.toml
	if len(os.Args) == 3 && os.Args[1] == "set-token" {
		if err := tokens.Put(cfg.Server.BaseURL, os.Args[2]); err != nil {
			log.Fatalf("store token: %v", err)
		}
		if cfg.Server.Token != "" {
			cfg.Server.Token = ""
			if err := config.Save(cfg); err != nil {
				log.Fatalf("save config: %v", err)
			}
		}
		fmt.Printf("token saved for %s\n", cfg.Server.BaseURL)
		return
	}

	closeEvent, err := dropdown.ParseCloseEvent(cfg.UI.RootCloseEvent)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err != nil {
		log.Fatalf("mkdir log dir: %v", err)
	}
	logFile, err := tea.LogToFile(cfg.Log.Path, "cncdeck")
	if err != nil {
		log.Fatalf("log file: %v", err)
	}
	defer logFile.Close()

	db, err := database.OpenMigrated(cfg.Workspace.DBPath)
	if err != nil {
		log.Fatalf("open workspace db: %v", err)
	}
	defer db.Close()

	store, err := workspace.Open(ctx, repository.NewSettingsRepo(db))
	if err != nil {
		log.Fatalf("workspace: %v", err)
	}

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, api.WithToken(cfg.ResolveToken(tokens.Get)))
	bus := events.NewBus()

	app := tui.New(ctx, client, store, bus, tui.Options{
		CloseEvent:     closeEvent,
		TruncateToggle: cfg.UI.TruncateToggle,
		TruncateItem:   cfg.UI.TruncateItem,
		StartView:      cfg.UI.StartView,
		Debug:          cfg.Log.Debug,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
