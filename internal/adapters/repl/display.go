package repl

import (
	"fmt"
	"strings"

	"stockmap/internal/app"
	"stockmap/internal/core"
)

func printItems(title string, result *app.ItemListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %s\n", title)
	if result.Degraded {
		fmt.Println("  WARNING: the inventory file could not be fully parsed.")
	}
	fmt.Println(strings.Repeat("=", 62))
	if len(result.Items) == 0 {
		fmt.Println("  No items.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	fmt.Printf("  %-10s %-38s %10s\n", "CODE", "NAME", "STOCK")
	fmt.Println(strings.Repeat("-", 62))
	for _, it := range result.Items {
		fmt.Printf("  %-10s %-38s %10d\n", it.Code, it.Name, it.Stock)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printBarcodes(result *app.BarcodeListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println("  BARCODE TABLE")
	fmt.Println(strings.Repeat("=", 62))
	if len(result.Entries) == 0 {
		fmt.Println("  No barcodes linked.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	fmt.Printf("  %-20s %-12s %8s\n", "BARCODE", "ITEM", "FACTOR")
	fmt.Println(strings.Repeat("-", 62))
	for _, e := range result.Entries {
		fmt.Printf("  %-20s %-12s %8d\n", e.Barcode, e.Link.ItemCode, e.Link.Factor)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printCart(result *app.CartResult) {
	if len(result.Lines) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	fmt.Println()
	fmt.Printf("  %-10s %-38s %10s\n", "CODE", "NAME", "QTY")
	fmt.Println(strings.Repeat("-", 62))
	total := 0
	for _, line := range result.Lines {
		fmt.Printf("  %-10s %-38s %10d\n", line.ItemCode, line.Name, line.Quantity)
		total += line.Quantity
	}
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("  %-49s %10d\n", "TOTAL UNITS", total)
}

func printMovement(result *app.MovementResult) {
	verb := "received"
	if result.Direction == core.Egress {
		verb = "dispatched"
	}
	fmt.Printf("Movement committed (%d items %s):\n", len(result.Updated), verb)
	for _, it := range result.Updated {
		fmt.Printf("  %s %q -> stock %d\n", it.Code, it.Name, it.Stock)
	}
}

func printLevels(result *app.LevelListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println("  LEVELS")
	if result.Degraded {
		fmt.Println("  WARNING: the level registry could not be parsed.")
	}
	fmt.Println(strings.Repeat("=", 62))
	if len(result.Levels) == 0 {
		fmt.Println("  No levels registered.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	fmt.Printf("  %-28s %s\n", "NAME", "DATA FILE")
	fmt.Println(strings.Repeat("-", 62))
	for _, lvl := range result.Levels {
		fmt.Printf("  %-28s %s\n", lvl.Name, lvl.DataFile)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printLevelView(result *app.LevelViewResult) {
	fmt.Printf("Level %q, %d placements.\n", result.Level, len(result.Placements))
	if result.Degraded {
		fmt.Println("WARNING: the level file could not be parsed; starting empty.")
	}
	for _, p := range result.Placements {
		fmt.Printf("  %s %-24s (%.1f, %.1f) r=%.0f", p.Code, p.Name, p.X, p.Y, p.Radius)
		if p.Manager != "" {
			fmt.Printf("  [%s]", p.Manager)
		}
		fmt.Println()
		for _, s := range p.Supplements {
			if s.Legacy {
				fmt.Printf("      - %s (legacy)\n", s.Name)
				continue
			}
			if s.Drawer != nil {
				fmt.Printf("      - %s %q drawer %d\n", s.ItemCode, s.Name, *s.Drawer)
			} else {
				fmt.Printf("      - %s %q\n", s.ItemCode, s.Name)
			}
		}
	}
}

func printSearch(result *core.SearchResult) {
	switch {
	case !result.Found:
		fmt.Println("No match.")
	case result.SwitchLevel:
		fmt.Printf("Found on level %q. Switch there with /level %s\n", result.Level, result.Level)
	default:
		fmt.Printf("Found on placement %s %q, level %q.\n",
			result.Placement.Code, result.Placement.Name, result.Level)
	}
}

func printIntegrity(report *core.IntegrityReport) {
	if report.Clean() {
		fmt.Printf("Data is consistent. Legacy entries: %d.\n", report.LegacyEntries)
		return
	}
	fmt.Printf("%d issues found (legacy entries: %d):\n", len(report.Issues), report.LegacyEntries)
	for _, issue := range report.Issues {
		fmt.Printf("  [%s] %s\n", issue.Kind, issue.Detail)
	}
}

func printHelp() {
	fmt.Println(`Items
  /items                               list the inventory
  /new-item <code> <stock> <name...>   create an item
  /del-item <code>                     delete an unassigned item
  /stock <code> <delta>                adjust stock by a signed amount
  /link <barcode> <item-code> <factor> map a barcode to an item
  /barcodes                            list the barcode table

Scan cart
  /scan <barcode>                      scan a barcode into the cart
  /cart                                show the cart
  /cart-add <item-code> <qty>          add without a barcode
  /cart-qty <item-code> <qty>          change a line's quantity
  /cart-rm <item-code>                 drop a line
  /cart-clear                          empty the cart
  /finalize <in|out>                   commit the cart as a stock movement

Levels
  /levels                              list registered levels
  /new-level <name...>                 register a level
  /del-level <name...>                 unregister a level (files are kept)
  /level <name...>                     switch the active level
  /export <level-name> <file>          export a level's placements
  /import <level-name> <file>          import placements from a file

Placements (active level)
  /points                              list placements
  /new-point <x> <y> <name...>         create a placement
  /move <code> <dx> <dy>               shift a placement
  /resize <code> <radius>              change a placement's radius
  /rename <code> <name...>             rename a placement
  /manager <code> <name...>            set the responsible person
  /del-point <code>                    delete a placement
  /assign <placement> <item> [drawer]  shelve an item
  /unassign <placement> <item>         unshelve an item
  /relocate <item> <from> <to>         move an item between placements

Queries
  /find <item-name...>                 search by item name
  /where <item-code>                   locate an assigned item
  /unassigned                          items shelved nowhere
  /check                               data integrity report

  /help  /exit`)
}
