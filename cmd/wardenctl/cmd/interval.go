package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var intervalCmd = &cobra.Command{
	Use:   "interval <seconds>",
	Short: "Set the sweep interval in seconds",
	Args:  cobra.ExactArgs(1),
	RunE:  runInterval,
}

func init() {
	rootCmd.AddCommand(intervalCmd)
}

func runInterval(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds <= 0 {
		return fmt.Errorf("seconds must be a positive integer, got %q", args[0])
	}

	payload := fmt.Sprintf(`{"seconds": %d}`, seconds)
	if err := doJSON("PUT", "/api/interval", payload, nil); err != nil {
		return err
	}
	fmt.Printf("Sweep interval set to %ds\n", seconds)
	return nil
}
