package main

import (
	"log"
	"net/http"

	webAdapter "stockmap/internal/adapters/web"
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

	placements := core.NewPlacementStore(registry)
	query := core.NewQueryFacade(items, placements, registry)

	// The mirror is read-only; no changelog session is opened for it.
	svc := app.NewAppService(items, registry, placements, query, core.NewScanCart(items), nil)

	handler := webAdapter.NewHandler(svc, cfg.StaticDir, cfg.AllowedOrigins)

	log.Printf("serving %s on :%s", cfg.DataDir, cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
