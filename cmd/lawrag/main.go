// Command lawrag serves the Vietnamese labor-law assistant over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vietlabor/lawrag"
	"github.com/vietlabor/lawrag/config"
	"github.com/vietlabor/lawrag/logging"
	"github.com/vietlabor/lawrag/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lawrag:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.NewEngineLogger(&logging.EngineLoggerConfig{
		Level:  parseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rag, err := lawrag.New(ctx, cfg, func(o *lawrag.Options) {
		o.Logger = log
	})
	if err != nil {
		return err
	}

	srv := server.New(rag.Engine(), func(o *server.Options) {
		o.Logger = log.WithComponent("server")
	})
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
