package models

// OrderCustomization is the persisted customization of a placed order line
type OrderCustomization struct {
	OrderID         string              `json:"orderId"`
	ProductID       string              `json:"productId"`
	Color           string              `json:"color,omitempty"`
	Mockup          Mockup              `json:"mockup"`
	Customization   CustomizationRecord `json:"customization"`
	FrontCaptureURL string              `json:"frontCaptureUrl,omitempty"`
	BackCaptureURL  string              `json:"backCaptureUrl,omitempty"`
	CapturedAt      string              `json:"capturedAt,omitempty"`
	CreatedAt       string              `json:"createdAt"`
}

// CartLineItem is the payload handed to the external cart collaborator
type CartLineItem struct {
	ProductID     string               `json:"productId"`
	Color         string               `json:"color,omitempty"`
	Quantity      int                  `json:"quantity"`
	UnitPrice     float64              `json:"unitPrice"`
	Total         float64              `json:"total"`
	Mockup        Mockup               `json:"mockup"`
	Customization *CustomizationRecord `json:"customization"`
}

// AddToCartResponse is returned once the line item has been accepted by the cart
type AddToCartResponse struct {
	CartItemID    string               `json:"cartItemId"`
	Total         float64              `json:"total"`
	Capture       CaptureResult        `json:"capture"`
	Customization *CustomizationRecord `json:"customization"`
}
