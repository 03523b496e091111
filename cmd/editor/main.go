package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heimdex/heimdex-editor/internal/api"
	"github.com/heimdex/heimdex-editor/internal/config"
	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/presets"
	"github.com/heimdex/heimdex-editor/internal/preview"
	"github.com/heimdex/heimdex-editor/internal/project"
	"github.com/heimdex/heimdex-editor/internal/ui"
	"github.com/heimdex/heimdex-editor/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ExportDir(), 0755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting heimdex editor", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := project.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                 HEIMDEX EDITOR v%-26s║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Frame Rate: %-45g ║\n", cfg.FrameRate())
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	catalog := presets.NewCatalog(cfg.PresetsFile(), logger)
	if err := catalog.WriteDefaults(); err != nil {
		logger.Warn("could not write default presets", "path", cfg.PresetsFile(), "error", err)
	}
	if err := catalog.Load(); err != nil {
		logger.Warn("using built-in transition presets", "path", cfg.PresetsFile(), "error", err)
	}

	engine := editor.New(editor.Config{
		FrameRate: cfg.FrameRate(),
		UndoDepth: cfg.UndoDepth(),
		Presets:   catalog,
		Logger:    logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	projects := project.NewService(repo, engine, cfg.FrameRate(), logger)
	current, err := projects.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open project: %w", err)
	}
	logging.WithProjectID(logger, current.ID).Info("project opened", "name", current.Name)

	autosaver := project.NewAutosaver(projects, engine, cfg.AutosaveInterval())
	autosaver.MarkSaved(engine.Revision())

	apiServer := api.NewServer(api.ServerConfig{
		Port:        cfg.Port(),
		ExportDir:   cfg.ExportDir(),
		CORSOrigins: cfg.CORSOrigins(),
		Engine:      engine,
		Projects:    projects,
		Repository:  repo,
		Autosaver:   autosaver,
		Preview:     preview.NewServer(logger),
		Logger:      logger,
		StartTime:   startTime,
		Version:     config.Version,
	})

	presetWatcher := watcher.NewFileWatcher(logger)
	if err := catalog.Watch(ctx, presetWatcher); err != nil {
		logger.Warn("presets hot reload disabled", "error", err)
	}
	defer presetWatcher.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(apiServer.Start)
	g.Go(func() error {
		autosaver.Start(gctx)
		return nil
	})

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Engine:    engine,
			Projects:  projects,
			Autosaver: autosaver,
			Logger:    logger,
			OnQuit:    cancel,
		})
		go tray.Run()
	}

	<-gctx.Done()

	logger.Info("initiating graceful shutdown")
	cancel()

	if autosaver.Tick(context.Background()) {
		logger.Info("final autosave written", "revision", engine.Revision())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(repo project.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, project.ConfigAuthToken)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, project.ConfigAuthToken, token); err != nil {
		return "", err
	}

	return token, nil
}
