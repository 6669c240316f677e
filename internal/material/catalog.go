package material

import (
	"errors"
	"fmt"

	"github.com/miropolcevpro/paver-ar-web/internal/config"
)

// ErrNotFound is returned when a catalog lookup has no match.
var ErrNotFound = errors.New("material not found")

// Catalog is the on-disk product catalog.
type Catalog struct {
	Items []Item `json:"items"`
}

// Item is a product with one or more color variants sharing a pattern.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Collection  string    `json:"collection,omitempty"`
	Technology  string    `json:"technology,omitempty"`
	ThicknessMM float64   `json:"thickness_mm,omitempty"`
	PatternSize []float64 `json:"patternSize_m,omitempty"`
	Layout      Layout    `json:"layout,omitempty"`
	Variants    []Variant `json:"variants"`
}

// Variant is a color variant of an item.
type Variant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tint string `json:"tint,omitempty"`
	Maps Maps   `json:"maps"`
}

// LoadCatalog reads a JSON or HuJSON catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	var c Catalog
	if err := config.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	for i := range c.Items {
		if c.Items[i].ID == "" {
			return nil, fmt.Errorf("catalog item %d has no id", i)
		}
	}
	return &c, nil
}

// Item returns the item with the given id.
func (c *Catalog) Item(id string) (*Item, error) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i], nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
}

// Resolve builds a Descriptor for an item variant. An empty variantID
// selects the first variant. An empty itemID selects the first item.
// Catalog materials are occlusion-aware.
func (c *Catalog) Resolve(itemID, variantID string) (*Descriptor, error) {
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("empty catalog: %w", ErrNotFound)
	}
	item := &c.Items[0]
	if itemID != "" {
		var err error
		if item, err = c.Item(itemID); err != nil {
			return nil, err
		}
	}

	d := &Descriptor{
		ID:             item.ID,
		Name:           item.Name,
		Layout:         item.Layout,
		Scale:          1,
		OcclusionAware: true,
	}
	if len(item.PatternSize) > 0 {
		d.RepeatSize[0] = item.PatternSize[0]
		d.RepeatSize[1] = item.PatternSize[0]
	}
	if len(item.PatternSize) > 1 {
		d.RepeatSize[1] = item.PatternSize[1]
	}

	if len(item.Variants) > 0 {
		v := &item.Variants[0]
		if variantID != "" {
			v = nil
			for i := range item.Variants {
				if item.Variants[i].ID == variantID {
					v = &item.Variants[i]
					break
				}
			}
			if v == nil {
				return nil, fmt.Errorf("variant %s of item %s: %w", variantID, item.ID, ErrNotFound)
			}
		}
		d.ID = item.ID + "/" + v.ID
		if v.Name != "" {
			d.Name = item.Name + " - " + v.Name
		}
		d.Tint = v.Tint
		d.Maps = v.Maps
	} else if variantID != "" {
		return nil, fmt.Errorf("variant %s of item %s: %w", variantID, item.ID, ErrNotFound)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
