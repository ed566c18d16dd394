package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"garment-studio/customization"
	"garment-studio/models"
)

// CartService captures a finished customization and hands it to the cart
type CartService struct {
	sessions *customization.Manager
	capture  *CaptureService
	cart     CartClient
	guard    *captureGuard
}

// NewCartService creates a cart service
func NewCartService(sessions *customization.Manager, capture *CaptureService, cart CartClient) *CartService {
	return &CartService{sessions: sessions, capture: capture, cart: cart, guard: newCaptureGuard()}
}

// ErrCartRejected is returned when the cart collaborator does not accept a line item
var ErrCartRejected = errors.New("failed to add to cart")

// AddToCart captures the session's customized sides, sends the enriched record to the cart
// and tears the session down. When capture or the cart fails the session stays open so the
// buyer can retry.
func (s *CartService) AddToCart(ctx context.Context, sessionID string) (*models.AddToCartResponse, error) {
	release, err := s.guard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	// re-read after queueing: a previous request may have completed the session
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	checkout := sess.Checkout()

	outcome, err := s.capture.CaptureSession(ctx, sessionID, &checkout.Mockup, checkout.Color, checkout.Record)
	if err != nil {
		return nil, err
	}

	item := models.CartLineItem{
		ProductID:     checkout.Mockup.ProductID,
		Color:         checkout.Color,
		Quantity:      checkout.Quantity,
		UnitPrice:     checkout.Mockup.BaseUnitPrice,
		Total:         checkout.Quote.Total,
		Mockup:        checkout.Mockup,
		Customization: outcome.Record,
	}
	cartItemID, err := s.cart.AddLineItem(ctx, item)
	if err != nil {
		zap.L().Error("❌ Cart rejected line item", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCartRejected, err)
	}

	if err := s.sessions.Close(sessionID); err != nil {
		zap.L().Warn("⚠️ Session already closed after add-to-cart", zap.String("sessionId", sessionID), zap.Error(err))
	}

	zap.L().Info("🛒 Added customization to cart", zap.String("sessionId", sessionID), zap.String("cartItemId", cartItemID))
	return &models.AddToCartResponse{
		CartItemID:    cartItemID,
		Total:         checkout.Quote.Total,
		Capture:       outcome.Result,
		Customization: outcome.Record,
	}, nil
}
