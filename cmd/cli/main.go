package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/madrasati/internal/buildinfo"
	"github.com/dmitrijs2005/madrasati/internal/client/cli"
	"github.com/dmitrijs2005/madrasati/internal/client/config"
	"github.com/dmitrijs2005/madrasati/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, os.Stderr)

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
