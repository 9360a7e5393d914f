package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/coursekeeper/internal/client/cli"
	"github.com/dmitrijs2005/coursekeeper/internal/client/config"
	"github.com/dmitrijs2005/coursekeeper/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
