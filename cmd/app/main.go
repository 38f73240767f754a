package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"stockmap/internal/adapters/repl"
	"stockmap/internal/app"
	"stockmap/internal/config"
	"stockmap/internal/core"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	registry, err := core.LoadRegistry(cfg.DataDir, cfg.GraphicsDir)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}
	if registry.Degraded() {
		log.Println("Warning: level registry file could not be parsed, starting empty")
	}

	items, err := core.LoadItemStore(cfg.InventoryFile())
	if err != nil {
		log.Fatalf("inventory: %v", err)
	}
	if items.Degraded() {
		log.Println("Warning: inventory file could not be fully parsed")
	}

	changelog, err := core.OpenChangelog(cfg.DataDir)
	if err != nil {
		log.Printf("Warning: changelog disabled: %v", err)
		changelog = nil
	}
	defer changelog.Close()

	placements := core.NewPlacementStore(registry)
	query := core.NewQueryFacade(items, placements, registry)
	svc := app.NewAppService(items, registry, placements, query, core.NewScanCart(items), changelog)

	repl.Run(context.Background(), svc, bufio.NewReader(os.Stdin))
}
