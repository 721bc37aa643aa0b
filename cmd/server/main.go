package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/motek/internal/logging"
	"github.com/dmitrijs2005/motek/internal/server"
	"github.com/dmitrijs2005/motek/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(cfg.Env, os.Stdout)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
