// Command verify-data checks the warehouse data directory for consistency:
// parseable files, resolvable level data files and cross-file invariants.
// It exits nonzero when anything is wrong so it can gate backups.
package main

import (
	"log"
	"os"

	"stockmap/internal/config"
	"stockmap/internal/core"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	if _, err := os.Stat(cfg.DataDir); err != nil {
		log.Fatalf("[DATA] data directory not usable: %v", err)
	}
	log.Printf("[DATA] %s", cfg.DataDir)

	dirty := false

	items := loadItems(cfg, &dirty)
	registry := loadRegistry(cfg, &dirty)
	placements := core.NewPlacementStore(registry)

	checkLevels(registry, placements, &dirty)
	checkIntegrity(items, placements, registry, &dirty)

	if dirty {
		log.Fatalf("[DONE] verification failed")
	}
	log.Println("[DONE] all checks passed")
}

func loadItems(cfg config.Config, dirty *bool) *core.ItemStore {
	items, err := core.LoadItemStore(cfg.InventoryFile())
	if err != nil {
		log.Fatalf("[ITEMS] failed to load inventory: %v", err)
	}
	if items.Degraded() {
		log.Printf("[ITEMS] inventory file is not parseable, treated as empty")
		*dirty = true
	}
	log.Printf("[ITEMS] %d items, %d barcode links", len(items.List()), len(items.Links()))
	return items
}

func loadRegistry(cfg config.Config, dirty *bool) *core.Registry {
	registry, err := core.LoadRegistry(cfg.DataDir, cfg.GraphicsDir)
	if err != nil {
		log.Fatalf("[REGISTRY] failed to load level registry: %v", err)
	}
	if registry.Degraded() {
		log.Printf("[REGISTRY] registry file is not parseable, treated as empty")
		*dirty = true
	}

	registered := registry.List()
	log.Printf("[REGISTRY] %d levels registered", len(registered))

	// Data files present but not registered are worth knowing about,
	// though not an error: the desktop app tolerates them.
	scanned := registry.ScanDataDir()
	known := make(map[string]bool, len(registered))
	for _, lvl := range registered {
		known[lvl.Name] = true
	}
	for _, name := range scanned {
		if !known[name] {
			log.Printf("[REGISTRY] unregistered data file for level %q", name)
		}
	}
	return registry
}

func checkLevels(registry *core.Registry, placements *core.PlacementStore, dirty *bool) {
	for _, lvl := range registry.List() {
		pts, degraded, err := placements.LoadLevel(lvl.Name)
		if err != nil {
			log.Printf("[LEVELS] %s: %v", lvl.Name, err)
			*dirty = true
			continue
		}
		if degraded {
			log.Printf("[LEVELS] %s: data file is not parseable", lvl.Name)
			*dirty = true
			continue
		}
		if _, err := registry.ImagePath(lvl.Name); err != nil {
			log.Printf("[LEVELS] %s: %d placements, no floor-plan image", lvl.Name, len(pts))
			continue
		}
		log.Printf("[LEVELS] %s: %d placements", lvl.Name, len(pts))
	}
}

func checkIntegrity(items *core.ItemStore, placements *core.PlacementStore, registry *core.Registry, dirty *bool) {
	query := core.NewQueryFacade(items, placements, registry)
	report, err := query.Integrity()
	if err != nil {
		log.Fatalf("[INTEGRITY] scan failed: %v", err)
	}
	for _, issue := range report.Issues {
		log.Printf("[INTEGRITY] %s: %s", issue.Kind, issue.Detail)
	}
	if report.LegacyEntries > 0 {
		log.Printf("[INTEGRITY] %d legacy string-only supplement entries", report.LegacyEntries)
	}
	if !report.Clean() {
		*dirty = true
		return
	}
	log.Println("[INTEGRITY] no violations")
}
