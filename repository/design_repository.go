package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"garment-studio/models"
)

// ErrDesignNotFound is returned when no design has the requested id
var ErrDesignNotFound = errors.New("design not found")

// DesignRepository handles database operations for candidate designs
// Implements DesignRepositoryInterface
type DesignRepository struct {
	conn *sql.DB
}

// NewDesignRepository creates a new DesignRepository
func NewDesignRepository(conn *sql.DB) *DesignRepository {
	return &DesignRepository{conn: conn}
}

// Ensure DesignRepository implements DesignRepositoryInterface
var _ DesignRepositoryInterface = (*DesignRepository)(nil)

const designColumns = `id, name, image_url, category, source, COALESCE(drive_file_id, ''), created_at`

// List returns designs ordered by newest first, optionally filtered by category
func (r *DesignRepository) List(ctx context.Context, category string) ([]models.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs`
	var args []interface{}
	if category = strings.TrimSpace(category); category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		zap.L().Error("❌ Error listing designs", zap.String("category", category), zap.Error(err))
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	designs := []models.Design{}
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		designs = append(designs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate designs: %w", err)
	}
	return designs, nil
}

// GetByID retrieves a design by id
func (r *DesignRepository) GetByID(ctx context.Context, id string) (*models.Design, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDesignNotFound, id)
	}

	row := r.conn.QueryRowContext(ctx, `SELECT `+designColumns+` FROM designs WHERE id = $1`, numericID)
	d, err := scanDesign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDesignNotFound, id)
	}
	if err != nil {
		zap.L().Error("❌ Error fetching design", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return d, nil
}

// ExistsByDriveFileID checks if a design was already imported from a Drive file
func (r *DesignRepository) ExistsByDriveFileID(ctx context.Context, driveFileID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM designs WHERE drive_file_id = $1)`
	if err := r.conn.QueryRowContext(ctx, query, driveFileID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// Insert stores a design and fills its id and creation time.
// A design whose drive_file_id already exists is skipped and reported as not inserted.
func (r *DesignRepository) Insert(ctx context.Context, d *models.Design) (bool, error) {
	if d.Source == "" {
		d.Source = models.DesignSourceCatalog
	}
	query := `
		INSERT INTO designs (name, image_url, category, source, drive_file_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (drive_file_id) DO NOTHING
		RETURNING id
	`
	createdAt := time.Now().UTC()
	var driveFileID sql.NullString
	if d.DriveFileID != "" {
		driveFileID = sql.NullString{String: d.DriveFileID, Valid: true}
	}

	var id int64
	err := r.conn.QueryRowContext(ctx, query, d.Name, d.ImageURL, d.Category, d.Source, driveFileID, createdAt).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		zap.L().Warn("⚠️ Design not inserted, drive file already imported", zap.String("driveFileId", d.DriveFileID))
		return false, nil
	}
	if err != nil {
		zap.L().Error("❌ Database INSERT error for design", zap.String("name", d.Name), zap.Error(err))
		return false, fmt.Errorf("failed to insert design: %w", err)
	}

	d.ID = strconv.FormatInt(id, 10)
	d.CreatedAt = createdAt.Format(time.RFC3339)
	zap.L().Info("💾 Design inserted", zap.String("id", d.ID), zap.String("source", d.Source))
	return true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDesign(row rowScanner) (*models.Design, error) {
	var (
		d         models.Design
		id        int64
		createdAt time.Time
	)
	if err := row.Scan(&id, &d.Name, &d.ImageURL, &d.Category, &d.Source, &d.DriveFileID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan design: %w", err)
	}
	d.ID = strconv.FormatInt(id, 10)
	d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &d, nil
}
