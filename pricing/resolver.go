package pricing

import (
	"github.com/shopspring/decimal"

	"garment-studio/models"
	"garment-studio/utils"
)

// PricedTiers are the print size labels that carry a design price
var PricedTiers = []string{"A3", "A4", "A5", "A6"}

// ComputeTotal returns baseUnitPrice × quantity plus, per side, the design price for its
// print size label and the text surcharge when the side carries text.
// Unknown labels, unpriced tiers and negative quantities contribute nothing.
func ComputeTotal(baseUnitPrice float64, quantity int, sides models.SideStates, table models.PriceTable) float64 {
	return computeTotalDecimal(baseUnitPrice, quantity, sides, table).InexactFloat64()
}

func computeTotalDecimal(baseUnitPrice float64, quantity int, sides models.SideStates, table models.PriceTable) decimal.Decimal {
	if quantity < 0 {
		quantity = 0
	}
	total := nonNegative(baseUnitPrice).Mul(decimal.NewFromInt(int64(quantity)))

	for _, side := range models.Sides {
		st := sides.Get(side)
		prices := table[side]
		if st.Design != nil {
			total = total.Add(designPrice(prices, st.Design.PrintSizeLabel))
		}
		if st.Text.HasContent() {
			total = total.Add(nonNegative(prices.TextSurcharge))
		}
	}
	return total.Round(2)
}

// designPrice looks up the tier price of a print size label; labels outside A3–A6 are free
func designPrice(prices models.SidePrices, label string) decimal.Decimal {
	normalized := utils.NormalizeLabel(label)
	if !isPricedTier(normalized) {
		return decimal.Zero
	}
	return nonNegative(prices.Sizes[normalized])
}

func isPricedTier(label string) bool {
	for _, tier := range PricedTiers {
		if tier == label {
			return true
		}
	}
	return false
}

// nonNegative keeps malformed price tables from lowering a total
func nonNegative(v float64) decimal.Decimal {
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Quote is a priced view of the current placements
type Quote struct {
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
}

// QuoteFor computes the total and its display string
func QuoteFor(m *models.Mockup, quantity int, sides models.SideStates) Quote {
	total := computeTotalDecimal(m.BaseUnitPrice, quantity, sides, m.PriceTable)
	return Quote{
		Total:     total.InexactFloat64(),
		Formatted: utils.FormatAmount(total, m.Currency),
	}
}
