package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/utils"
)

// PricebookConfig is the JSON pricebook used to fill in mockups that arrive without prices
// Example:
//
//	{
//	  "currency": "USD",
//	  "defaultGroup": "TEES",
//	  "groups": {
//	    "TEES": {"front": {"sizes": {"A3": 14, "A4": 10}, "textSurcharge": 3}, "back": {...}}
//	  },
//	  "products": {"tee-classic": "TEES", "hoodie-zip": "HOODIES"}
//	}
type PricebookConfig struct {
	Currency     string                       `json:"currency"`
	DefaultGroup string                       `json:"defaultGroup"`
	Groups       map[string]models.PriceTable `json:"groups"`
	Products     map[string]string            `json:"products"`
}

// Engine resolves price tables for mockups from the pricebook
type Engine struct {
	config *PricebookConfig
}

var (
	engineInstance *Engine
	engineMu       sync.Mutex
)

// NewEngine loads the pricebook at configPath and installs it as the shared engine
func NewEngine(configPath string) (*Engine, error) {
	engineMu.Lock()
	defer engineMu.Unlock()

	if !filepath.IsAbs(configPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		configPath = filepath.Join(wd, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricebook: %w", err)
	}

	engine, err := NewEngineFromJSON(data)
	if err != nil {
		return nil, err
	}

	engineInstance = engine
	zap.L().Info("✅ Pricing engine loaded pricebook", zap.String("path", configPath), zap.Int("groups", len(engine.config.Groups)))
	return engine, nil
}

// NewEngineFromJSON parses and validates a pricebook without touching the shared instance
func NewEngineFromJSON(data []byte) (*Engine, error) {
	var config PricebookConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse pricebook: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid pricebook: %w", err)
	}
	normalizeConfig(&config)
	return &Engine{config: &config}, nil
}

func validateConfig(config *PricebookConfig) error {
	if config.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if len(config.Groups) == 0 {
		return fmt.Errorf("groups are required")
	}
	if config.DefaultGroup != "" {
		if _, ok := config.Groups[config.DefaultGroup]; !ok {
			return fmt.Errorf("default group %q is not defined", config.DefaultGroup)
		}
	}
	for product, group := range config.Products {
		if _, ok := config.Groups[group]; !ok {
			return fmt.Errorf("product %q references undefined group %q", product, group)
		}
	}
	for name, table := range config.Groups {
		for side, prices := range table {
			if !side.Valid() {
				return fmt.Errorf("group %q: invalid side %q", name, side)
			}
			for label, price := range prices.Sizes {
				if !isPricedTier(utils.NormalizeLabel(label)) {
					return fmt.Errorf("group %q: %s price for unpriced tier %q", name, side, label)
				}
				if price < 0 {
					return fmt.Errorf("group %q: negative price for %s %s", name, side, label)
				}
			}
		}
	}
	return nil
}

// normalizeConfig upper-cases tier labels so lookups match utils.NormalizeLabel
func normalizeConfig(config *PricebookConfig) {
	for _, table := range config.Groups {
		for side, prices := range table {
			sizes := make(map[string]float64, len(prices.Sizes))
			for label, price := range prices.Sizes {
				sizes[utils.NormalizeLabel(label)] = price
			}
			prices.Sizes = sizes
			table[side] = prices
		}
	}
}

// GetEngine returns the shared engine, nil when no pricebook was loaded
func GetEngine() *Engine {
	engineMu.Lock()
	defer engineMu.Unlock()
	return engineInstance
}

// PriceTableFor returns the price table of the product's group, falling back to the default group
func (e *Engine) PriceTableFor(productID string) (models.PriceTable, bool) {
	group, ok := e.config.Products[strings.TrimSpace(productID)]
	if !ok {
		group = e.config.DefaultGroup
	}
	table, ok := e.config.Groups[group]
	if !ok {
		return nil, false
	}
	return cloneTable(table), true
}

// ResolveMockup fills the price table and currency of a mockup that arrived without them.
// Sides already priced by the catalog are kept as-is.
func (e *Engine) ResolveMockup(m *models.Mockup) {
	if m.Currency == "" {
		m.Currency = e.config.Currency
	}
	table, ok := e.PriceTableFor(m.ProductID)
	if !ok {
		return
	}
	if m.PriceTable == nil {
		m.PriceTable = models.PriceTable{}
	}
	for side, prices := range table {
		if _, priced := m.PriceTable[side]; !priced {
			m.PriceTable[side] = prices
			zap.L().Debug("💰 Filled side prices from pricebook", zap.String("productId", m.ProductID), zap.String("side", string(side)))
		}
	}
}

func cloneTable(table models.PriceTable) models.PriceTable {
	out := make(models.PriceTable, len(table))
	for side, prices := range table {
		sizes := make(map[string]float64, len(prices.Sizes))
		for k, v := range prices.Sizes {
			sizes[k] = v
		}
		out[side] = models.SidePrices{Sizes: sizes, TextSurcharge: prices.TextSurcharge}
	}
	return out
}
