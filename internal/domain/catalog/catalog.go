// Package catalog holds the fixed coin packages sold through Checkout.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed coin_packages.yaml
var packagesYAML []byte

// CoinPackage is one purchasable bundle of coins.
type CoinPackage struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Coins      int64  `yaml:"coins" json:"coins"`
	PriceCents int64  `yaml:"price_cents" json:"price_cents"`
}

// Catalog is an immutable, ordered set of coin packages.
type Catalog struct {
	Currency string        `yaml:"currency"`
	Packages []CoinPackage `yaml:"packages"`

	byID map[string]CoinPackage
}

var defaultCatalog = mustParse(packagesYAML)

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode coin catalog: %w", err)
	}
	if c.Currency == "" {
		c.Currency = "eur"
	}

	c.byID = make(map[string]CoinPackage, len(c.Packages))
	for _, p := range c.Packages {
		if p.ID == "" {
			return nil, fmt.Errorf("coin package without id")
		}
		if p.Coins <= 0 || p.PriceCents <= 0 {
			return nil, fmt.Errorf("coin package %q: coins and price must be positive", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate coin package %q", p.ID)
		}
		c.byID[p.ID] = p
	}
	return &c, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the package with the given id.
func (c *Catalog) Lookup(id string) (CoinPackage, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// List returns the packages in catalog order.
func (c *Catalog) List() []CoinPackage {
	out := make([]CoinPackage, len(c.Packages))
	copy(out, c.Packages)
	return out
}
