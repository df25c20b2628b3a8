package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"recipechat/internal/chat"
	"recipechat/internal/config"
	"recipechat/internal/logging"
	"recipechat/internal/server"
	"recipechat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, mode string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/recipe-chat/config.yaml if not provided)")
	flag.StringVar(&mode, "mode", "tui", "Chat transport: tui or http")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logFile := cfg.LogFile
	if mode == "http" {
		logFile = ""
	}
	logger, err := logging.NewLogger(cfg.Debug, logFile)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mode == "tui" {
		fmt.Printf("Loading %s...\n", cfg.Dataset.Name)
	}
	app := buildApp(ctx, cfg, logger)
	defer func() { _ = app.Close() }()

	switch mode {
	case "tui":
		err = runTUI(ctx, app, logger)
	case "http":
		err = runHTTP(ctx, app, &cfg.Server, logger)
	default:
		err = fmt.Errorf("unknown mode: %s", mode)
	}
	if err != nil {
		logger.Error("exiting", zap.Error(err))
		log.Fatal(err)
	}
}

func runTUI(ctx context.Context, app *chat.App, logger *zap.Logger) error {
	h := chat.NewHandler(app, nil, logger)
	status := "Type your nutritional values and dietary requirements, then press Enter."
	if app.Available() {
		status = fmt.Sprintf("Loaded %d documents. %s", app.Context().Documents, status)
	} else {
		status = "Unavailable: " + app.Reason().Error()
	}
	m := tui.New(ctx, h, status)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func runHTTP(ctx context.Context, app *chat.App, cfg *config.ServerConfig, logger *zap.Logger) error {
	srv := server.NewServer(app, cfg, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Shutting down server")
	return srv.Stop(shutdownCtx)
}
