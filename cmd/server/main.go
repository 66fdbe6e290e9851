// Command server runs the diary HTTP API together with its health endpoint.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/diary/internal/server"
	"github.com/dmitrijs2005/diary/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("diary: startup failed: %v", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
