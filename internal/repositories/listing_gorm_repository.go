package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"looplane/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db *gorm.DB
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{
		db: db,
	}
}

// FindByID retrieves a single listing by its ID.
func (r *GORMListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing by ID %s: %w", id, err)
	}
	return &listing, nil
}

// FindByOwner retrieves every listing owned by ownerID, oldest first.
func (r *GORMListingRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	listings := []models.Listing{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(r.insertionOrder()).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for owner %s: %w", ownerID, err)
	}
	return listings, nil
}

// SearchByName retrieves listings whose name equals name, ignoring case.
func (r *GORMListingRepository) SearchByName(ctx context.Context, name string) ([]models.Listing, error) {
	listings := []models.Listing{}
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Order(r.insertionOrder()).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search listings by name: %w", err)
	}
	return listings, nil
}

// insertionOrder breaks created_at ties with a column that only grows: the
// seq sequence on postgres and the implicit rowid on sqlite.
func (r *GORMListingRepository) insertionOrder() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "created_at ASC, rowid ASC"
	}
	return "created_at ASC, seq ASC"
}

// Create inserts a new listing, assigning an ID when none is set.
func (r *GORMListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing listing. The owner and
// creation time are never written.
func (r *GORMListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	listing.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Updates(map[string]any{
			"name":        listing.Name,
			"description": listing.Description,
			"price":       listing.Price,
			"picture_ref": listing.PictureRef,
			"condition":   listing.Condition,
			"category":    listing.Category,
			"updated_at":  listing.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing with ID %s: %w", listing.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a listing by its ID.
func (r *GORMListingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
