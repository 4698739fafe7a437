package main

import (
	"flag"
	"log"

	"github.com/yt20chill/SmileCoin-sub001/pkg/app"
	"github.com/yt20chill/SmileCoin-sub001/pkg/app/api"
	"github.com/yt20chill/SmileCoin-sub001/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var runner app.Runner = api.NewServer(cfg)
	if err := runner.Run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
