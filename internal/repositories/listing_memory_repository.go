package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"looplane/internal/models"

	"github.com/google/uuid"
)

// MemoryListingRepository is an in-memory implementation of ListingRepository.
type MemoryListingRepository struct {
	listings map[string]models.Listing
	order    []string
	mu       sync.RWMutex
}

// NewMemoryListingRepository creates a new instance of MemoryListingRepository.
func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{
		listings: make(map[string]models.Listing),
	}
}

// FindByID returns a listing by its ID.
func (r *MemoryListingRepository) FindByID(_ context.Context, id string) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing with ID %s: %w", id, ErrNotFound)
	}
	return &listing, nil
}

// FindByOwner returns the owner's listings in insertion order.
func (r *MemoryListingRepository) FindByOwner(_ context.Context, ownerID string) ([]models.Listing, error) {
	return r.filter(func(l models.Listing) bool { return l.OwnerID == ownerID }), nil
}

// SearchByName returns listings whose name equals name, ignoring case.
func (r *MemoryListingRepository) SearchByName(_ context.Context, name string) ([]models.Listing, error) {
	return r.filter(func(l models.Listing) bool { return strings.EqualFold(l.Name, name) }), nil
}

func (r *MemoryListingRepository) filter(match func(models.Listing) bool) []models.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Listing{}
	for _, id := range r.order {
		if l := r.listings[id]; match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Create adds a new listing.
func (r *MemoryListingRepository) Create(_ context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if _, exists := r.listings[listing.ID]; exists {
		return fmt.Errorf("listing with ID %s: %w", listing.ID, ErrDuplicate)
	}
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	r.listings[listing.ID] = *listing
	r.order = append(r.order, listing.ID)
	return nil
}

// Update overwrites the mutable fields of an existing listing.
func (r *MemoryListingRepository) Update(_ context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.listings[listing.ID]
	if !ok {
		return fmt.Errorf("listing with ID %s: %w", listing.ID, ErrNotFound)
	}
	listing.UpdatedAt = time.Now().UTC()
	stored.Name = listing.Name
	stored.Description = listing.Description
	stored.Price = listing.Price
	stored.PictureRef = listing.PictureRef
	stored.Condition = listing.Condition
	stored.Category = listing.Category
	stored.UpdatedAt = listing.UpdatedAt
	r.listings[listing.ID] = stored
	return nil
}

// Delete removes a listing by its ID.
func (r *MemoryListingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return fmt.Errorf("listing with ID %s: %w", id, ErrNotFound)
	}
	delete(r.listings, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
