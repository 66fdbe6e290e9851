package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/diary/internal/events"
	"github.com/dmitrijs2005/diary/internal/server"
	"github.com/dmitrijs2005/diary/internal/server/config"
	"github.com/dmitrijs2005/diary/internal/server/csu"
	"github.com/dmitrijs2005/diary/internal/server/repositories/repomanager"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := server.NewLogger()

	m := repomanager.NewPostgresRepositoryManager()
	db, err := server.OpenDB(ctx, cfg.DatabaseDSN, m)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	us, err := server.NewUserService(ctx, cfg, db, m, &events.NoopPublisher{}, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := csu.Run(ctx, us, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}
