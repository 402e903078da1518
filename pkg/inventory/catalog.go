package inventory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shelfwatch/shelfwatch/pkg/model"
	"github.com/shelfwatch/shelfwatch/pkg/storage"
)

// Catalog is a YAML-described set of inventory items.
type Catalog struct {
	Items []CatalogItem `yaml:"items"`
}

// CatalogItem is one entry in a catalog file.
type CatalogItem struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Stock int    `yaml:"stock"`
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return LoadCatalogFromBytes(data)
}

// LoadCatalogFromBytes parses YAML catalog data from raw bytes.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if len(cat.Items) == 0 {
		return nil, fmt.Errorf("catalog: no items defined")
	}
	for i, item := range cat.Items {
		if item.ID == "" {
			return nil, fmt.Errorf("catalog: item %d: missing id", i)
		}
		if item.Stock < 0 {
			return nil, fmt.Errorf("catalog: item %q: negative stock", item.ID)
		}
	}

	return &cat, nil
}

// Seed upserts every catalog item into the store.
func Seed(ctx context.Context, store storage.Store, cat *Catalog) error {
	for _, ci := range cat.Items {
		item := &model.Item{ID: ci.ID, Name: ci.Name, Stock: ci.Stock}
		if err := store.UpsertItem(ctx, item); err != nil {
			return fmt.Errorf("seed item %q: %w", ci.ID, err)
		}
	}
	return nil
}
