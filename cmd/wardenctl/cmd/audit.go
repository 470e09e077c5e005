package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var auditLimit int

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "List recent price corrections",
	Args:  cobra.NoArgs,
	RunE:  runCorrections,
}

var sweepsCmd = &cobra.Command{
	Use:   "sweeps",
	Short: "List recent sweep cycles",
	Args:  cobra.NoArgs,
	RunE:  runSweeps,
}

func init() {
	rootCmd.AddCommand(correctionsCmd)
	rootCmd.AddCommand(sweepsCmd)

	correctionsCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of rows to show")
	sweepsCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of rows to show")
}

func runCorrections(cmd *cobra.Command, args []string) error {
	var recs []struct {
		ControllerID string          `json:"controller_id"`
		OfferID      string          `json:"offer_id"`
		ItemID       string          `json:"item_id"`
		Side         string          `json:"side"`
		OldPrice     decimal.Decimal `json:"old_price"`
		NewPrice     decimal.Decimal `json:"new_price"`
		CreatedAt    time.Time       `json:"created_at"`
	}
	if err := getJSON(fmt.Sprintf("/api/corrections?limit=%d", auditLimit), &recs); err != nil {
		return err
	}

	for _, r := range recs {
		fmt.Printf("%s  shop=%s offer=%s item=%s side=%s %s -> %s\n",
			r.CreatedAt.Format(time.RFC3339), r.ControllerID, r.OfferID,
			r.ItemID, r.Side, r.OldPrice.String(), r.NewPrice.String())
	}
	if len(recs) == 0 {
		fmt.Println("No corrections recorded.")
	}
	return nil
}

func runSweeps(cmd *cobra.Command, args []string) error {
	var recs []struct {
		CycleID         string    `json:"cycle_id"`
		Shops           int       `json:"shops"`
		Skipped         int       `json:"skipped"`
		ChangedShops    int       `json:"changed_shops"`
		CorrectedOffers int       `json:"corrected_offers"`
		DurationMS      int64     `json:"duration_ms"`
		CreatedAt       time.Time `json:"created_at"`
	}
	if err := getJSON(fmt.Sprintf("/api/sweeps?limit=%d", auditLimit), &recs); err != nil {
		return err
	}

	for _, r := range recs {
		fmt.Printf("%s  cycle=%s shops=%d skipped=%d changed=%d corrected=%d took=%dms\n",
			r.CreatedAt.Format(time.RFC3339), r.CycleID, r.Shops, r.Skipped,
			r.ChangedShops, r.CorrectedOffers, r.DurationMS)
	}
	if len(recs) == 0 {
		fmt.Println("No sweeps recorded.")
	}
	return nil
}
