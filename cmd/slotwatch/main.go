package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"slotwatch/internal/app"
	"slotwatch/internal/config"
	logx "slotwatch/pkg/logx"
)

func main() {
	var cfgPath, envFile string
	flag.StringVar(&cfgPath, "config", "", "path to config json/yaml (optional)")
	flag.StringVar(&envFile, "env-file", config.DefaultDotenv, "dotenv file with push credentials")
	flag.Parse()

	boot := logx.NewConsole("info")

	if err := config.LoadDotenv(envFile); err != nil {
		boot.Error("dotenv", logx.String("path", envFile), logx.Err(err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		boot.Error("fatal", logx.Err(err))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		boot.Error("stopped with error", logx.Err(err))
		os.Exit(1)
	}
}
