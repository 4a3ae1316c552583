package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wealthlens/wealthlens/internal/app"
	"github.com/wealthlens/wealthlens/internal/config"
	"github.com/wealthlens/wealthlens/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting wealthlens")

	runner := app.NewRunner(log)
	if err := runner.Initialize(cfg); err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}

	if err := runner.Run(ctx); err != nil {
		log.Fatal("run error", zap.Error(err))
	}
}
