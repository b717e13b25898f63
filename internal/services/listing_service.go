package services

import (
	"context"
	"errors"
	"log/slog"

	"looplane/internal/apperrors"
	"looplane/internal/auth"
	"looplane/internal/models"
	"looplane/internal/repositories"
	"looplane/pkg/rabbitmq"
)

// ListingService resolves listing operations for a caller. Every method
// takes the caller's RequestContext and applies the ownership rules before
// touching storage.
type ListingService struct {
	repo      repositories.ListingRepository
	publisher EventPublisher
	validator *Validator
	logger    *slog.Logger
}

// NewListingService creates a new ListingService. publisher may be nil, in
// which case no events are emitted.
func NewListingService(repo repositories.ListingRepository, publisher EventPublisher, logger *slog.Logger) *ListingService {
	return &ListingService{
		repo:      repo,
		publisher: publisher,
		validator: NewValidator(),
		logger:    logger,
	}
}

// Get returns a single listing to any authenticated caller.
func (s *ListingService) Get(ctx context.Context, rc auth.RequestContext, id string) (*models.Listing, error) {
	if _, err := auth.RequireAuthenticated(rc); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// List returns the caller's own listings in insertion order.
func (s *ListingService) List(ctx context.Context, rc auth.RequestContext) ([]models.Listing, error) {
	claims, err := auth.RequireAuthenticated(rc)
	if err != nil {
		return nil, err
	}
	listings, err := s.repo.FindByOwner(ctx, claims.SubjectID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return listings, nil
}

// Search is public: it matches names across all owners, ignoring case.
func (s *ListingService) Search(ctx context.Context, _ auth.RequestContext, name string) ([]models.Listing, error) {
	listings, err := s.repo.SearchByName(ctx, name)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return listings, nil
}

// Create stores a new listing owned by the caller.
func (s *ListingService) Create(ctx context.Context, rc auth.RequestContext, in models.ListingInput) (*models.Listing, error) {
	claims, err := auth.RequireAuthenticated(rc)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	listing := &models.Listing{OwnerID: claims.SubjectID}
	in.Apply(listing)
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, apperrors.Internal(err)
	}

	publishListingEvent(s.publisher, s.logger, rabbitmq.EventListingCreated, claims.SubjectID, *listing)
	return listing, nil
}

// Update overwrites the mutable fields of a listing the caller owns.
func (s *ListingService) Update(ctx context.Context, rc auth.RequestContext, id string, in models.ListingInput) (*models.Listing, error) {
	claims, err := auth.RequireAuthenticated(rc)
	if err != nil {
		return nil, err
	}
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(listing, rc); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	in.Apply(listing)
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, listingStorageError(err)
	}

	publishListingEvent(s.publisher, s.logger, rabbitmq.EventListingUpdated, claims.SubjectID, *listing)
	return listing, nil
}

// Delete removes a listing the caller owns and returns its last state.
func (s *ListingService) Delete(ctx context.Context, rc auth.RequestContext, id string) (*models.DeleteResult, error) {
	claims, err := auth.RequireAuthenticated(rc)
	if err != nil {
		return nil, err
	}
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(listing, rc); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, listing.ID); err != nil {
		return nil, listingStorageError(err)
	}

	publishListingEvent(s.publisher, s.logger, rabbitmq.EventListingDeleted, claims.SubjectID, *listing)
	return &models.DeleteResult{Success: true, ID: listing.ID, Listing: *listing}, nil
}

func (s *ListingService) find(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, listingStorageError(err)
	}
	return listing, nil
}

func listingStorageError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeNotFound, "listing not found", err)
	}
	return apperrors.Internal(err)
}
