package service

import (
	"context"

	"garment-studio/models"
)

// CartClient hands customized line items to the cart collaborator
type CartClient interface {
	AddLineItem(ctx context.Context, item models.CartLineItem) (string, error)
}
