package models

// SidePrices holds the design price per print size tier and the flat text surcharge of one side
type SidePrices struct {
	Sizes         map[string]float64 `json:"sizes"` // A3, A4, A5, A6
	TextSurcharge float64            `json:"textSurcharge"`
}

// PriceTable maps each side to its prices
type PriceTable map[Side]SidePrices

// Mockup is the product description consumed from the catalog collaborator
// Example:
//
//	{
//	  "productId": "tee-classic",
//	  "baseUnitPrice": 19,
//	  "images": {"front": "https://cdn/tee-front.png", "back": "https://cdn/tee-back.png"},
//	  "colorVariants": {"black": {"front": "https://cdn/tee-black-front.png"}},
//	  "priceTable": {"front": {"sizes": {"A4": 10}, "textSurcharge": 3}}
//	}
type Mockup struct {
	ProductID     string                     `json:"productId" validate:"required"`
	Name          string                     `json:"name,omitempty"`
	BaseUnitPrice float64                    `json:"baseUnitPrice" validate:"gte=0"`
	Currency      string                     `json:"currency,omitempty"`
	Images        map[Side]string            `json:"images"`
	ColorVariants map[string]map[Side]string `json:"colorVariants,omitempty"`
	PriceTable    PriceTable                 `json:"priceTable"`
}

// BackgroundURL returns the garment image for side, honoring the color variant override
func (m *Mockup) BackgroundURL(side Side, color string) string {
	if color != "" {
		if variant, ok := m.ColorVariants[color]; ok {
			if url := variant[side]; url != "" {
				return url
			}
		}
	}
	return m.Images[side]
}

// Design is a candidate design the buyer can place
type Design struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	Source      string `json:"source,omitempty"` // catalog, upload, ai
	DriveFileID string `json:"driveFileId,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

const (
	DesignSourceCatalog = "catalog"
	DesignSourceUpload  = "upload"
	DesignSourceAI      = "ai"
)

// CreateDesignRequest registers a synthetic design entry for a user upload or AI image
type CreateDesignRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
	Category string `json:"category"`
	Source   string `json:"source" validate:"omitempty,oneof=upload ai"`
}
