// Command pokerd runs the Planning Poker coordinator: a single shared
// room, served over WebSocket, with JSON or line-text framing chosen
// per connection. Mirrors the teacher's thin main.go: parse flags,
// build the server, start it, log fatal on failure.
package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lindqvist/pokerd/internal/admission"
	"github.com/lindqvist/pokerd/internal/config"
	"github.com/lindqvist/pokerd/internal/game"
	"github.com/lindqvist/pokerd/internal/logging"
	"github.com/lindqvist/pokerd/internal/transport"
)

//go:embed all:static
var staticFS embed.FS

func main() {
	cfg := &config.Config{}
	cmd := config.NewCommand(cfg, run)

	if err := cmd.Execute(); err != nil {
		log.Fatalf("pokerd: %v", err)
	}
}

func run(_ *cobra.Command, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}

	gameServer, handle := game.NewGameServer(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go gameServer.Run(ctx)

	adm := admission.New(cfg.Limit)
	srv := transport.New(handle, adm, static, logger)

	logging.Welcome(logger, cfg.Addr, cfg.Limit)

	if err := srv.Start(cfg.Addr); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}

	return nil
}
