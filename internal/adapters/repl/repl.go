package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"stockmap/internal/app"
	"stockmap/internal/core"
)

// Run starts the interactive REPL loop. It reads commands from reader and
// dispatches slash commands against the application service until /exit.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	fmt.Println("Stockmap")
	levels, err := svc.ListLevels(ctx)
	if err == nil {
		fmt.Printf("Levels registered: %d\n", len(levels.Levels))
	}
	fmt.Println("Use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "items":
			result, err := svc.ListItems(ctx)
			if err != nil {
				return err
			}
			printItems("INVENTORY", result)

		case "new-item":
			if len(args) < 3 {
				fmt.Println("Usage: /new-item <code> <stock> <name...>")
				return nil
			}
			stock, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("Stock must be an integer.")
				return nil
			}
			result, err := svc.CreateItem(ctx, app.CreateItemRequest{
				Code:  args[0],
				Name:  strings.Join(args[2:], " "),
				Stock: stock,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Item created: %s %q stock=%d\n", result.Item.Code, result.Item.Name, result.Item.Stock)

		case "del-item":
			if len(args) < 1 {
				fmt.Println("Usage: /del-item <code>")
				return nil
			}
			if err := svc.DeleteItem(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Item %s deleted.\n", args[0])

		case "stock":
			if len(args) < 2 {
				fmt.Println("Usage: /stock <code> <delta>")
				return nil
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("Delta must be an integer.")
				return nil
			}
			result, err := svc.AdjustStock(ctx, args[0], delta)
			if err != nil {
				return err
			}
			fmt.Printf("Stock of %s is now %d.\n", result.Item.Code, result.Item.Stock)

		case "link":
			if len(args) < 3 {
				fmt.Println("Usage: /link <barcode> <item-code> <factor>")
				return nil
			}
			factor, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Println("Factor must be an integer.")
				return nil
			}
			if err := svc.LinkBarcode(ctx, app.LinkBarcodeRequest{
				Barcode: args[0], ItemCode: args[1], Factor: factor,
			}); err != nil {
				return err
			}
			fmt.Printf("Barcode %s -> item %s x%d.\n", args[0], args[1], factor)

		case "barcodes":
			result, err := svc.ListBarcodes(ctx)
			if err != nil {
				return err
			}
			printBarcodes(result)

		case "scan":
			if len(args) < 1 {
				fmt.Println("Usage: /scan <barcode>")
				return nil
			}
			result, err := svc.ScanBarcode(ctx, args[0])
			if err != nil {
				return err
			}
			printCart(result)

		case "cart":
			result, err := svc.Cart(ctx)
			if err != nil {
				return err
			}
			printCart(result)

		case "cart-add":
			if len(args) < 2 {
				fmt.Println("Usage: /cart-add <item-code> <qty>")
				return nil
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("Quantity must be an integer.")
				return nil
			}
			result, err := svc.AddToCart(ctx, app.AddToCartRequest{ItemCode: args[0], Quantity: qty})
			if err != nil {
				return err
			}
			printCart(result)

		case "cart-qty":
			if len(args) < 2 {
				fmt.Println("Usage: /cart-qty <item-code> <qty>")
				return nil
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("Quantity must be an integer.")
				return nil
			}
			result, err := svc.SetCartQuantity(ctx, args[0], qty)
			if err != nil {
				return err
			}
			printCart(result)

		case "cart-rm":
			if len(args) < 1 {
				fmt.Println("Usage: /cart-rm <item-code>")
				return nil
			}
			result, err := svc.RemoveFromCart(ctx, args[0])
			if err != nil {
				return err
			}
			printCart(result)

		case "cart-clear":
			if err := svc.ClearCart(ctx); err != nil {
				return err
			}
			fmt.Println("Cart cleared.")

		case "finalize":
			if len(args) < 1 || (args[0] != "in" && args[0] != "out") {
				fmt.Println("Usage: /finalize <in|out>")
				return nil
			}
			direction := core.Ingress
			if args[0] == "out" {
				direction = core.Egress
			}
			result, err := svc.FinalizeCart(ctx, direction)
			if err != nil {
				return err
			}
			printMovement(result)

		case "levels":
			result, err := svc.ListLevels(ctx)
			if err != nil {
				return err
			}
			printLevels(result)

		case "new-level":
			if len(args) < 1 {
				fmt.Println("Usage: /new-level <name...>")
				return nil
			}
			result, err := svc.AddLevel(ctx, app.AddLevelRequest{Name: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Printf("Level %q added (data file %s).\n", result.Level.Name, result.Level.DataFile)

		case "del-level":
			if len(args) < 1 {
				fmt.Println("Usage: /del-level <name...>")
				return nil
			}
			name := strings.Join(args, " ")
			if err := svc.RemoveLevel(ctx, name); err != nil {
				return err
			}
			fmt.Printf("Level %q removed from the registry. Its files were kept.\n", name)

		case "level":
			if len(args) < 1 {
				fmt.Println("Usage: /level <name...>")
				return nil
			}
			result, err := svc.SwitchLevel(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printLevelView(result)

		case "points":
			result, err := svc.ActiveLevel(ctx)
			if err != nil {
				return err
			}
			printLevelView(result)

		case "new-point":
			if len(args) < 3 {
				fmt.Println("Usage: /new-point <x> <y> <name...>")
				return nil
			}
			x, errX := strconv.ParseFloat(args[0], 64)
			y, errY := strconv.ParseFloat(args[1], 64)
			if errX != nil || errY != nil {
				fmt.Println("Coordinates must be numbers.")
				return nil
			}
			result, err := svc.CreatePlacement(ctx, app.CreatePlacementRequest{
				X: x, Y: y, Name: strings.Join(args[2:], " "),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Placement %s %q created at (%.1f, %.1f).\n",
				result.Placement.Code, result.Placement.Name, result.Placement.X, result.Placement.Y)

		case "move":
			if len(args) < 3 {
				fmt.Println("Usage: /move <placement-code> <dx> <dy>")
				return nil
			}
			dx, errX := strconv.ParseFloat(args[1], 64)
			dy, errY := strconv.ParseFloat(args[2], 64)
			if errX != nil || errY != nil {
				fmt.Println("Deltas must be numbers.")
				return nil
			}
			result, err := svc.MovePlacement(ctx, args[0], dx, dy)
			if err != nil {
				return err
			}
			fmt.Printf("Placement %s now at (%.1f, %.1f).\n", args[0], result.Placement.X, result.Placement.Y)

		case "resize":
			if len(args) < 2 {
				fmt.Println("Usage: /resize <placement-code> <radius>")
				return nil
			}
			radius, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				fmt.Println("Radius must be a number.")
				return nil
			}
			if _, err := svc.ResizePlacement(ctx, args[0], radius); err != nil {
				return err
			}
			fmt.Printf("Placement %s resized to radius %.1f.\n", args[0], radius)

		case "rename":
			if len(args) < 2 {
				fmt.Println("Usage: /rename <placement-code> <name...>")
				return nil
			}
			name := strings.Join(args[1:], " ")
			if _, err := svc.RenamePlacement(ctx, args[0], name); err != nil {
				return err
			}
			fmt.Printf("Placement %s renamed to %q.\n", args[0], name)

		case "manager":
			if len(args) < 2 {
				fmt.Println("Usage: /manager <placement-code> <name...>")
				return nil
			}
			manager := strings.Join(args[1:], " ")
			if _, err := svc.SetPlacementManager(ctx, args[0], manager); err != nil {
				return err
			}
			fmt.Printf("Placement %s is now managed by %q.\n", args[0], manager)

		case "del-point":
			if len(args) < 1 {
				fmt.Println("Usage: /del-point <placement-code>")
				return nil
			}
			result, err := svc.DeletePlacement(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Placement %s deleted; %d assignments became unshelved.\n",
				result.Code, len(result.Orphaned))

		case "assign":
			if len(args) < 2 {
				fmt.Println("Usage: /assign <placement-code> <item-code> [drawer]")
				return nil
			}
			req := app.AssignItemRequest{PlacementCode: args[0], ItemCode: args[1]}
			if len(args) >= 3 {
				drawer, err := strconv.Atoi(args[2])
				if err != nil {
					fmt.Println("Drawer must be an integer.")
					return nil
				}
				req.Drawer = &drawer
			}
			if _, err := svc.AssignItem(ctx, req); err != nil {
				return err
			}
			fmt.Printf("Item %s assigned to placement %s.\n", args[1], args[0])

		case "unassign":
			if len(args) < 2 {
				fmt.Println("Usage: /unassign <placement-code> <item-code>")
				return nil
			}
			if _, err := svc.UnassignItem(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Item %s unassigned from placement %s.\n", args[1], args[0])

		case "relocate":
			if len(args) < 3 {
				fmt.Println("Usage: /relocate <item-code> <from-placement> <to-placement>")
				return nil
			}
			if err := svc.MoveAssignment(ctx, args[1], args[2], args[0]); err != nil {
				return err
			}
			fmt.Printf("Item %s moved from placement %s to %s.\n", args[0], args[1], args[2])

		case "find":
			if len(args) < 1 {
				fmt.Println("Usage: /find <item-name...>")
				return nil
			}
			result, err := svc.SearchByName(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printSearch(result)

		case "where":
			if len(args) < 1 {
				fmt.Println("Usage: /where <item-code>")
				return nil
			}
			ref, err := svc.SearchByCode(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Item %s is on placement %s %q, level %q.\n",
				args[0], ref.Placement.Code, ref.Placement.Name, ref.Level)

		case "unassigned":
			result, err := svc.UnassignedItems(ctx)
			if err != nil {
				return err
			}
			printItems("UNASSIGNED ITEMS", result)

		case "check":
			report, err := svc.CheckIntegrity(ctx)
			if err != nil {
				return err
			}
			printIntegrity(report)

		case "export":
			if len(args) < 2 {
				fmt.Println("Usage: /export <level-name> <file>")
				return nil
			}
			name := strings.Join(args[:len(args)-1], " ")
			if err := svc.ExportLevel(ctx, name, args[len(args)-1]); err != nil {
				return err
			}
			fmt.Printf("Level %q exported to %s.\n", name, args[len(args)-1])

		case "import":
			if len(args) < 2 {
				fmt.Println("Usage: /import <level-name> <file>")
				return nil
			}
			name := strings.Join(args[:len(args)-1], " ")
			result, err := svc.ImportLevel(ctx, name, args[len(args)-1])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d placements into: %s\n",
				result.Placements, strings.Join(result.Levels, ", "))

		case "help":
			printHelp()

		case "exit", "quit":
			return errExit

		default:
			fmt.Printf("Unknown command /%s. Use /help.\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with /. Use /help.")
			continue
		}
		if err := dispatchSlash(input); err != nil {
			if err == errExit {
				return
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}
