package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/LachsProducktions/mediascan/app"
	webapp "github.com/LachsProducktions/mediascan/web/run"
)

func main() {
	configPath := flag.String("config", "mediascan.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Scan.DBPath == "" {
		log.Fatal("scan.db_path must be set to serve inventory snapshots")
	}

	store, err := app.OpenStore(cfg.Scan.DBPath)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer store.Close()

	web := webapp.New(store, cfg)
	addr := web.GetListenAddr()

	log.Printf("Serving inventory reports on %s", addr)
	if err := http.ListenAndServe(addr, web.GetRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
