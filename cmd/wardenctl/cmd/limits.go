package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Inspect and edit price floors and ceilings",
	Long: `Inspect and edit the per-item price limits.

Subcommands:
  list   - Show both limit lists and the sweep interval
  floor  - Set the sell price floor of an item
  ceil   - Set the buy price ceiling of an item
  clear  - Reset both limits of an item to unbounded

Examples:
  wardenctl limits list
  wardenctl limits floor diamond 12.5
  wardenctl limits ceil diamond 200
  wardenctl limits clear diamond`,
}

var limitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show both limit lists",
	Args:  cobra.NoArgs,
	RunE:  runLimitsList,
}

var limitsFloorCmd = &cobra.Command{
	Use:   "floor <item-id> <price>",
	Short: "Set the sell price floor of an item",
	Args:  cobra.ExactArgs(2),
	RunE:  runLimitsFloor,
}

var limitsCeilCmd = &cobra.Command{
	Use:   "ceil <item-id> <price>",
	Short: "Set the buy price ceiling of an item",
	Args:  cobra.ExactArgs(2),
	RunE:  runLimitsCeil,
}

var limitsClearCmd = &cobra.Command{
	Use:   "clear <item-id>",
	Short: "Reset both limits of an item to unbounded",
	Args:  cobra.ExactArgs(1),
	RunE:  runLimitsClear,
}

func init() {
	rootCmd.AddCommand(limitsCmd)
	limitsCmd.AddCommand(limitsListCmd)
	limitsCmd.AddCommand(limitsFloorCmd)
	limitsCmd.AddCommand(limitsCeilCmd)
	limitsCmd.AddCommand(limitsClearCmd)
}

type limitEntry struct {
	ItemID string          `json:"item_id"`
	Price  decimal.Decimal `json:"price"`
}

type limitsPayload struct {
	SellFloors      []limitEntry `json:"sell_floors"`
	BuyCeilings     []limitEntry `json:"buy_ceilings"`
	TickIntervalSec int          `json:"tick_interval_sec"`
}

func runLimitsList(cmd *cobra.Command, args []string) error {
	var body limitsPayload
	if err := getJSON("/api/limits", &body); err != nil {
		return err
	}
	printLimits(body)
	return nil
}

func printLimits(body limitsPayload) {
	fmt.Printf("Sweep interval: %ds\n\n", body.TickIntervalSec)

	fmt.Println("Sell floors:")
	for _, l := range body.SellFloors {
		fmt.Printf("  %-24s %s\n", l.ItemID, l.Price.String())
	}
	fmt.Println("\nBuy ceilings:")
	for _, l := range body.BuyCeilings {
		fmt.Printf("  %-24s %s\n", l.ItemID, l.Price.String())
	}
}

func setLimit(itemID, field, raw string) error {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", raw, err)
	}

	var body limitsPayload
	payload := fmt.Sprintf(`{"%s": "%s"}`, field, price.String())
	if err := doJSON("PUT", "/api/limits/"+itemID, payload, &body); err != nil {
		return err
	}
	printLimits(body)
	return nil
}

func runLimitsFloor(cmd *cobra.Command, args []string) error {
	return setLimit(args[0], "floor", args[1])
}

func runLimitsCeil(cmd *cobra.Command, args []string) error {
	return setLimit(args[0], "ceiling", args[1])
}

func runLimitsClear(cmd *cobra.Command, args []string) error {
	var body limitsPayload
	if err := doJSON("DELETE", "/api/limits/"+args[0], "", &body); err != nil {
		return err
	}
	printLimits(body)
	return nil
}
