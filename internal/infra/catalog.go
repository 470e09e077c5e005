package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogItem is one entry of the tradable item catalog.
type CatalogItem struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type catalogFile struct {
	Items []CatalogItem `yaml:"items"`
}

// LoadCatalog reads the item catalog used for limit reconciliation and
// the dashboard item mirror.
func LoadCatalog(path string) ([]CatalogItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if len(file.Items) == 0 {
		return nil, fmt.Errorf("catalog is empty: %s", path)
	}

	for i, item := range file.Items {
		if item.ID == "" {
			return nil, fmt.Errorf("catalog item %d has no id", i)
		}
	}

	return file.Items, nil
}
