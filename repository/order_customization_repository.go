package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"garment-studio/models"
)

// ErrOrderNotFound is returned when no customization is stored for an order
var ErrOrderNotFound = errors.New("order customization not found")

// OrderCustomizationRepository handles database operations for the customizations of placed orders
// Implements OrderCustomizationRepositoryInterface
type OrderCustomizationRepository struct {
	conn *sql.DB
}

// NewOrderCustomizationRepository creates a new OrderCustomizationRepository
func NewOrderCustomizationRepository(conn *sql.DB) *OrderCustomizationRepository {
	return &OrderCustomizationRepository{conn: conn}
}

// Ensure OrderCustomizationRepository implements OrderCustomizationRepositoryInterface
var _ OrderCustomizationRepositoryInterface = (*OrderCustomizationRepository)(nil)

// Save inserts or replaces the customization of an order. Capture columns are taken from
// the record so a freshly placed order keeps the artifacts captured at add-to-cart.
func (r *OrderCustomizationRepository) Save(ctx context.Context, oc *models.OrderCustomization) error {
	mockupJSON, err := json.Marshal(oc.Mockup)
	if err != nil {
		return fmt.Errorf("failed to encode mockup: %w", err)
	}
	customizationJSON, err := json.Marshal(oc.Customization)
	if err != nil {
		return fmt.Errorf("failed to encode customization: %w", err)
	}

	front := oc.Customization.CaptureURL(models.SideFront)
	back := oc.Customization.CaptureURL(models.SideBack)
	var capturedAt sql.NullTime
	if front != "" || back != "" {
		capturedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	query := `
		INSERT INTO order_customizations (
			order_id, product_id, color, mockup, customization,
			front_capture_url, back_capture_url, captured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (order_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			color = EXCLUDED.color,
			mockup = EXCLUDED.mockup,
			customization = EXCLUDED.customization,
			front_capture_url = EXCLUDED.front_capture_url,
			back_capture_url = EXCLUDED.back_capture_url,
			captured_at = EXCLUDED.captured_at
	`
	createdAt := time.Now().UTC()
	_, err = r.conn.ExecContext(ctx, query,
		oc.OrderID,
		oc.ProductID,
		oc.Color,
		mockupJSON,
		customizationJSON,
		nullString(front),
		nullString(back),
		capturedAt,
		createdAt,
	)
	if err != nil {
		zap.L().Error("❌ Error saving order customization", zap.String("orderId", oc.OrderID), zap.Error(err))
		return fmt.Errorf("failed to save order customization: %w", err)
	}

	oc.FrontCaptureURL = front
	oc.BackCaptureURL = back
	if capturedAt.Valid {
		oc.CapturedAt = capturedAt.Time.Format(time.RFC3339)
	}
	oc.CreatedAt = createdAt.Format(time.RFC3339)
	zap.L().Info("💾 Order customization saved", zap.String("orderId", oc.OrderID))
	return nil
}

// GetByOrderID retrieves the customization stored for an order
func (r *OrderCustomizationRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OrderCustomization, error) {
	query := `
		SELECT order_id, product_id, color, mockup, customization,
		       COALESCE(front_capture_url, ''), COALESCE(back_capture_url, ''),
		       captured_at, created_at
		FROM order_customizations
		WHERE order_id = $1
	`

	var (
		oc                models.OrderCustomization
		mockupJSON        []byte
		customizationJSON []byte
		capturedAt        sql.NullTime
		createdAt         time.Time
	)
	err := r.conn.QueryRowContext(ctx, query, orderID).Scan(
		&oc.OrderID,
		&oc.ProductID,
		&oc.Color,
		&mockupJSON,
		&customizationJSON,
		&oc.FrontCaptureURL,
		&oc.BackCaptureURL,
		&capturedAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		zap.L().Error("❌ Error fetching order customization", zap.String("orderId", orderID), zap.Error(err))
		return nil, fmt.Errorf("failed to get order customization: %w", err)
	}

	if err := json.Unmarshal(mockupJSON, &oc.Mockup); err != nil {
		return nil, fmt.Errorf("failed to decode mockup of order %s: %w", orderID, err)
	}
	if err := json.Unmarshal(customizationJSON, &oc.Customization); err != nil {
		return nil, fmt.Errorf("failed to decode customization of order %s: %w", orderID, err)
	}
	if capturedAt.Valid {
		oc.CapturedAt = capturedAt.Time.UTC().Format(time.RFC3339)
	}
	oc.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &oc, nil
}

// UpdateCaptures stores the artifact references of record for an order: the capture columns and
// the captureUrl/capturedAt fields nested in the customization document. Placement fields are
// taken from record unchanged, so callers pass the record they loaded with its artifacts applied.
func (r *OrderCustomizationRepository) UpdateCaptures(ctx context.Context, orderID string, record *models.CustomizationRecord, capturedAt time.Time) error {
	customizationJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode customization: %w", err)
	}

	query := `
		UPDATE order_customizations
		SET customization = $1, front_capture_url = $2, back_capture_url = $3, captured_at = $4,
		    capture_attempts = capture_attempts + 1, last_capture_attempt_at = $4
		WHERE order_id = $5
	`
	result, err := r.conn.ExecContext(ctx, query,
		customizationJSON,
		nullString(record.CaptureURL(models.SideFront)),
		nullString(record.CaptureURL(models.SideBack)),
		capturedAt.UTC(),
		orderID,
	)
	if err != nil {
		zap.L().Error("❌ Error updating captures", zap.String("orderId", orderID), zap.Error(err))
		return fmt.Errorf("failed to update captures: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		zap.L().Warn("⚠️ Could not get rows affected", zap.Error(err))
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	zap.L().Info("✅ Captures updated", zap.String("orderId", orderID))
	return nil
}

// MarkCaptureFailed records a failed capture attempt so the order moves behind the ones not yet tried
func (r *OrderCustomizationRepository) MarkCaptureFailed(ctx context.Context, orderID string, at time.Time) error {
	query := `
		UPDATE order_customizations
		SET capture_attempts = capture_attempts + 1, last_capture_attempt_at = $1
		WHERE order_id = $2
	`
	if _, err := r.conn.ExecContext(ctx, query, at.UTC(), orderID); err != nil {
		zap.L().Error("❌ Error recording capture attempt", zap.String("orderId", orderID), zap.Error(err))
		return fmt.Errorf("failed to record capture attempt: %w", err)
	}
	return nil
}

// ListMissingCaptures returns orders that have no artifacts yet. Orders never attempted come
// first, then the ones whose last failed attempt is oldest.
func (r *OrderCustomizationRepository) ListMissingCaptures(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT order_id
		FROM order_customizations
		WHERE captured_at IS NULL
		ORDER BY last_capture_attempt_at ASC NULLS FIRST, created_at ASC
		LIMIT $1
	`
	rows, err := r.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders missing captures: %w", err)
	}
	defer rows.Close()

	var orderIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		orderIDs = append(orderIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orderIDs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
