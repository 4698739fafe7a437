package main

import (
	"context"
	"flag"
	"log"

	"github.com/yt20chill/SmileCoin-sub001/pkg/config"
	"github.com/yt20chill/SmileCoin-sub001/pkg/migrations/txdb"
	"github.com/yt20chill/SmileCoin-sub001/pkg/pgutil"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	rollback := flag.Bool("rollback", false, "roll back the last migration group")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := pgutil.ConnectDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if *rollback {
		if err := txdb.Rollback(ctx, db); err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		return
	}
	if err := txdb.Migrate(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
