// Package templates holds the starter gig templates a draft can be created from.
package templates

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Template pre-fills a new gig draft. Zero values are left for the vendor.
type Template struct {
	ID                string   `yaml:"id"                  json:"id"`
	Name              string   `yaml:"name"                json:"name"`
	CategoryID        string   `yaml:"category_id"         json:"category_id"`
	Title             string   `yaml:"title"               json:"title,omitempty"`
	ShortDescription  string   `yaml:"short_description"   json:"short_description,omitempty"`
	Description       string   `yaml:"description"         json:"description,omitempty"`
	PriceType         string   `yaml:"price_type"          json:"price_type,omitempty"`
	Currency          string   `yaml:"currency"            json:"currency,omitempty"`
	Inclusions        string   `yaml:"inclusions"          json:"inclusions,omitempty"`
	LocationType      string   `yaml:"location_type"       json:"location_type,omitempty"`
	RadiusKm          int      `yaml:"radius_km"           json:"radius_km,omitempty"`
	SuitableForKids   bool     `yaml:"suitable_for_kids"   json:"suitable_for_kids,omitempty"`
	AgeLimit          string   `yaml:"age_limit"           json:"age_limit,omitempty"`
	EventTypes        []string `yaml:"event_types"         json:"event_types,omitempty"`
	DurationMinutes   int      `yaml:"duration_minutes"    json:"duration_minutes,omitempty"`
	BookingMethod     string   `yaml:"booking_method"      json:"booking_method,omitempty"`
	MinLeadTimeHours  int      `yaml:"min_lead_time_hours" json:"min_lead_time_hours,omitempty"`
}

type file struct {
	Templates []Template `yaml:"templates"`
}

// Catalog is an immutable, id-indexed set of templates.
type Catalog struct {
	byID  map[string]Template
	order []string
}

// Load returns the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read templates: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a YAML template catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	c := &Catalog{byID: make(map[string]Template, len(f.Templates))}
	for i, t := range f.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %d: id is required", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %q defined twice", t.ID)
		}
		c.byID[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c, nil
}

func (c *Catalog) Lookup(id string) (Template, bool) {
	t, ok := c.byID[id]
	if ok {
		t.EventTypes = append([]string(nil), t.EventTypes...)
	}
	return t, ok
}

// All returns templates in file order, optionally restricted to one category.
func (c *Catalog) All(category string) []Template {
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		t, _ := c.Lookup(id)
		if category != "" && t.CategoryID != category {
			continue
		}
		out = append(out, t)
	}
	return out
}
