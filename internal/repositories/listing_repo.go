package repositories

import (
	"context"

	"looplane/internal/models"
)

// ListingRepository defines the interface for listing data access.
type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	// FindByOwner returns the owner's listings in insertion order.
	FindByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
	// SearchByName matches the whole name, ignoring case.
	SearchByName(ctx context.Context, name string) ([]models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id string) error
}
