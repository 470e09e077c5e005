package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream the live correction feed",
	Long: `Connect to the admin WebSocket feed and print correction and
sweep events as they happen. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

type feedEvent struct {
	Type string `json:"type"`

	// correction fields
	ControllerID string `json:"controller_id"`
	OfferID      string `json:"offer_id"`
	ItemID       string `json:"item_id"`
	Side         string `json:"side"`
	OldPrice     string `json:"old_price"`
	NewPrice     string `json:"new_price"`

	// sweep fields
	Shops           int   `json:"shops"`
	Skipped         int   `json:"skipped"`
	ChangedShops    int   `json:"changed_shops"`
	CorrectedOffers int   `json:"corrected_offers"`
	DurationMS      int64 `json:"duration_ms"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	url := "ws://" + adminAddr + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", url)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printFeedEvent(msg)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return nil
	case <-done:
		return fmt.Errorf("connection closed by server")
	}
}

func printFeedEvent(msg []byte) {
	var ev feedEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return
	}

	switch ev.Type {
	case "correction":
		fmt.Printf("correction  shop=%s offer=%s item=%s side=%s %s -> %s\n",
			ev.ControllerID, ev.OfferID, ev.ItemID, ev.Side, ev.OldPrice, ev.NewPrice)
	case "sweep":
		fmt.Printf("sweep       shops=%d skipped=%d changed=%d corrected=%d took=%dms\n",
			ev.Shops, ev.Skipped, ev.ChangedShops, ev.CorrectedOffers, ev.DurationMS)
	default:
		fmt.Println(string(msg))
	}
}
