// Package registry is the aggregate root for racks: it binds a rack id
// to its image reference and persisted cell layout.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/warekit/rackstock/internal/layout"
	"github.com/warekit/rackstock/internal/models"
)

var (
	// ErrDuplicateRack is returned when a rack id already exists.
	// Creation is create-once: silently replacing a rack would destroy
	// its layout under the feet of recorded inventory.
	ErrDuplicateRack = errors.New("rack already exists")
	// ErrRackNotFound is returned for lookups of unknown rack ids.
	ErrRackNotFound = errors.New("rack not found")
	// ErrInvalidLayout is returned when a layout fails validation.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrLayoutMismatch is returned when a saved layout does not carry
	// the same cell ids as the persisted one. Cell ids are stable for
	// the life of a rack; edits reposition cells, never renumber them.
	ErrLayoutMismatch = errors.New("layout cell ids differ from the persisted layout")
)

// Service manages the racks table.
type Service struct {
	db *gorm.DB
}

// NewService creates a rack registry.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateRack registers a new rack with its initial layout. Fails with
// ErrDuplicateRack when the id is taken.
func (s *Service) CreateRack(ctx context.Context, rackID, imagePath string, cells []layout.CellGeometry) (*models.Rack, error) {
	if rackID == "" {
		return nil, fmt.Errorf("%w: empty rack id", ErrInvalidLayout)
	}
	if err := validateCells(cells); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(cells)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Rack{}).Where("rack_id = ?", rackID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check rack: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRack, rackID)
	}

	rack := models.Rack{
		RackID:    rackID,
		ImagePath: imagePath,
		Layout:    raw,
	}
	if err := db.Create(&rack).Error; err != nil {
		return nil, fmt.Errorf("create rack: %w", err)
	}
	return &rack, nil
}

// ListRacks returns all racks ordered by id.
func (s *Service) ListRacks(ctx context.Context) ([]models.Rack, error) {
	var racks []models.Rack
	if err := s.db.WithContext(ctx).Order("rack_id").Find(&racks).Error; err != nil {
		return nil, fmt.Errorf("list racks: %w", err)
	}
	return racks, nil
}

// GetRack fetches one rack by id.
func (s *Service) GetRack(ctx context.Context, rackID string) (*models.Rack, error) {
	var rack models.Rack
	err := s.db.WithContext(ctx).Where("rack_id = ?", rackID).First(&rack).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRackNotFound, rackID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch rack: %w", err)
	}
	return &rack, nil
}

// Layout decodes a rack's persisted cell layout.
func (s *Service) Layout(ctx context.Context, rackID string) ([]layout.CellGeometry, error) {
	rack, err := s.GetRack(ctx, rackID)
	if err != nil {
		return nil, err
	}
	var cells []layout.CellGeometry
	if err := json.Unmarshal(rack.Layout, &cells); err != nil {
		return nil, fmt.Errorf("decode layout of %s: %w", rackID, err)
	}
	return cells, nil
}

// SaveLayout replaces the rack's persisted layout wholesale. The layout
// lives in a single JSON column, so the replacement is one row update
// and cannot be observed half-written. The caller is responsible for
// holding edit authorization from the access gate.
func (s *Service) SaveLayout(ctx context.Context, rackID string, cells []layout.CellGeometry) error {
	if err := validateCells(cells); err != nil {
		return err
	}

	persisted, err := s.Layout(ctx, rackID)
	if err != nil {
		return err
	}
	if !sameCellIDs(persisted, cells) {
		return fmt.Errorf("%w: rack %s", ErrLayoutMismatch, rackID)
	}

	raw, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	res := s.db.WithContext(ctx).
		Model(&models.Rack{}).
		Where("rack_id = ?", rackID).
		Update("layout", datatypes.JSON(raw))
	if res.Error != nil {
		return fmt.Errorf("save layout: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRackNotFound, rackID)
	}
	return nil
}

func validateCells(cells []layout.CellGeometry) error {
	if len(cells) == 0 {
		return fmt.Errorf("%w: no cells", ErrInvalidLayout)
	}
	seen := make(map[int]bool, len(cells))
	for _, c := range cells {
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate cell id %d", ErrInvalidLayout, c.ID)
		}
		seen[c.ID] = true
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("%w: cell %d has non-positive size", ErrInvalidLayout, c.ID)
		}
		const eps = 1e-9
		if c.X < 0 || c.Y < 0 || c.X+c.Width > 1+eps || c.Y+c.Height > 1+eps {
			return fmt.Errorf("%w: cell %d outside unit square", ErrInvalidLayout, c.ID)
		}
	}
	return nil
}

func sameCellIDs(a, b []layout.CellGeometry) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[int]bool, len(a))
	for _, c := range a {
		ids[c.ID] = true
	}
	for _, c := range b {
		if !ids[c.ID] {
			return false
		}
	}
	return true
}
