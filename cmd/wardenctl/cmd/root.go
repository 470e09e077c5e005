package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wardenctl",
	Short: "Operator CLI for a running ShopWarden instance",
	Long: `wardenctl talks to the admin API of a running ShopWarden process.

It provides tools for:
  - Inspecting the sweeper status and runtime counters
  - Listing and editing price floors and ceilings
  - Changing the sweep interval
  - Watching the live correction feed
  - Querying the correction and sweep audit trail`,
}

var adminAddr string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&adminAddr, "addr", "a", "127.0.0.1:8400", "admin API address of the warden process")
}

func apiURL(path string) string {
	return "http://" + adminAddr + path
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// getJSON fetches an API endpoint and decodes the response into out.
func getJSON(path string, out any) error {
	resp, err := httpClient.Get(apiURL(path))
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(path, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doJSON sends a request with an optional JSON body and decodes the response.
func doJSON(method, path, body string, out any) error {
	req, err := http.NewRequest(method, apiURL(path), strings.NewReader(body))
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(path, resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(path string, resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s (%s)", path, body.Error, resp.Status)
	}
	return fmt.Errorf("%s: %s", path, resp.Status)
}
