package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultIconCDN serves the item icon set used by the operator dashboard.
const DefaultIconCDN = "https://assets.shopwarden.dev/icons"

// IconSync handles downloading and caching item icons
type IconSync struct {
	basePath string
	cdnURL   string
	client   *http.Client
}

// NewIconSync creates a new IconSync
func NewIconSync(cdnURL string) (*IconSync, error) {
	path, err := getAssetsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	if cdnURL == "" {
		cdnURL = DefaultIconCDN
	}

	// Optimize HTTP Transport to prevent connection leaks
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &IconSync{
		basePath: path,
		cdnURL:   strings.TrimSuffix(cdnURL, "/"),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// DownloadIcon downloads the icon for an item if it doesn't exist.
// Returns the local file path on success.
// Images are resized to 32x32 pixels for consistent dashboard display.
func (d *IconSync) DownloadIcon(itemID, slug string) (string, error) {
	// Security: Sanitize the item id to prevent path traversal
	safeID := sanitizeItemID(itemID)
	if safeID == "" {
		return "", fmt.Errorf("invalid item id: %s", itemID)
	}

	fileName := strings.ToLower(safeID) + ".png"
	filePath := filepath.Join(d.basePath, fileName)

	// Check if exists
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Already exists (Cache Hit)
	}

	if slug == "" {
		slug = strings.ToLower(safeID)
	}
	url := fmt.Sprintf("%s/%s.png", d.cdnURL, slug)

	resp, err := d.client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	// Decode the image
	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Resize to 32x32 with high-quality Lanczos filter
	resizedImg := imaging.Resize(srcImg, 32, 32, imaging.Lanczos)

	// Save the resized image
	if err := imaging.Save(resizedImg, filePath); err != nil {
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}

	return filePath, nil
}

// GetIconPath returns the local path for an item's icon
func (d *IconSync) GetIconPath(itemID string) string {
	return filepath.Join(d.basePath, strings.ToLower(sanitizeItemID(itemID))+".png")
}

func getAssetsPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "ShopWarden", "assets", "icons"), nil
}

func sanitizeItemID(itemID string) string {
	res := make([]rune, 0, len(itemID))
	for _, r := range itemID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			res = append(res, r)
		}
	}
	return string(res)
}
