package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/coursekeeper/internal/logging"
	"github.com/dmitrijs2005/coursekeeper/internal/server"
	"github.com/dmitrijs2005/coursekeeper/internal/server/auth"
	"github.com/dmitrijs2005/coursekeeper/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	// "server token <author-id>" prints a day-long access token and exits.
	if len(os.Args) > 2 && os.Args[1] == "token" {
		tok, err := auth.GenerateToken(os.Args[2], []byte(cfg.SecretKey), 24*time.Hour)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(tok)
		return
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
