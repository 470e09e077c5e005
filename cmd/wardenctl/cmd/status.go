package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sweeper status and runtime counters",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := getJSON("/api/status", &status); err != nil {
		return err
	}

	var stats struct {
		SweepCycles     int64 `json:"sweep_cycles"`
		OffersCorrected int64 `json:"offers_corrected"`
		ShopsSkipped    int64 `json:"shops_skipped"`
		CycleFailures   int64 `json:"cycle_failures"`
		DroppedEvents   int64 `json:"dropped_events"`
		AvgCycleNs      int64 `json:"avg_cycle_ns"`
		WSClients       int64 `json:"ws_clients"`
		Degraded        bool  `json:"degraded"`
	}
	if err := getJSON("/api/stats", &stats); err != nil {
		return err
	}

	fmt.Printf("Status:           %s\n", status.Status)
	fmt.Printf("Sweep cycles:     %d\n", stats.SweepCycles)
	fmt.Printf("Offers corrected: %d\n", stats.OffersCorrected)
	fmt.Printf("Shops skipped:    %d\n", stats.ShopsSkipped)
	fmt.Printf("Cycle failures:   %d\n", stats.CycleFailures)
	fmt.Printf("Dropped events:   %d\n", stats.DroppedEvents)
	fmt.Printf("Avg cycle time:   %s\n", time.Duration(stats.AvgCycleNs))
	if stats.Degraded {
		fmt.Println("WARNING: hourly fallback interval is active")
	}
	return nil
}
