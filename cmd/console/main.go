package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fastygo/embeddables/internal/config"
	"github.com/fastygo/embeddables/internal/console"
	"github.com/fastygo/embeddables/internal/console/apiclient"
	"github.com/fastygo/embeddables/internal/console/embed"
	"github.com/fastygo/embeddables/internal/console/shell"
	"github.com/fastygo/embeddables/internal/console/state"
	"github.com/fastygo/embeddables/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: "console",
		Name:     cfg.AppName + "-console",
		Output:   os.Stderr,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sdk := embed.NewLogSDK(zapLogger, func(o embed.Opened) {
		fmt.Printf("Opened %s with session %s\n", o.Component, o.SessionID)
	})
	session := console.New(
		apiclient.New(cfg.Console.APIURL, cfg.Console.Timeout),
		sdk,
		state.NewMemoryStorage(),
		zapLogger,
	)

	sh := shell.New(session, os.Stdout)
	zapLogger.Info("console started", zap.String("api", cfg.Console.APIURL))

	if err := sh.Exec(ctx, "users"); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	if err := sh.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		zapLogger.Error("console stopped", zap.Error(err))
	}
}
