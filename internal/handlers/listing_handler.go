package handlers

import (
	"looplane/internal/middleware"
	"looplane/internal/models"
	"looplane/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	listingService *services.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// RegisterRoutes registers the listing routes with the Fiber app.
func (h *ListingHandler) RegisterRoutes(router fiber.Router) {
	listingRoutes := router.Group("/listings")
	listingRoutes.Get("/", h.ListListings)
	listingRoutes.Get("/search", h.SearchListings)
	listingRoutes.Get("/:id", h.GetListing)
	listingRoutes.Post("/", h.CreateListing)
	listingRoutes.Put("/:id", h.UpdateListing)
	listingRoutes.Delete("/:id", h.DeleteListing)
}

// ListListings returns the caller's own listings.
func (h *ListingHandler) ListListings(c *fiber.Ctx) error {
	listings, err := h.listingService.List(c.UserContext(), middleware.RequestContextFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

// SearchListings is public and matches ?name= across all owners.
func (h *ListingHandler) SearchListings(c *fiber.Ctx) error {
	listings, err := h.listingService.Search(c.UserContext(), middleware.RequestContextFrom(c), c.Query("name"))
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	listing, err := h.listingService.Get(c.UserContext(), middleware.RequestContextFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(listing)
}

func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	var in models.ListingInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	listing, err := h.listingService.Create(c.UserContext(), middleware.RequestContextFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	var in models.ListingInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	listing, err := h.listingService.Update(c.UserContext(), middleware.RequestContextFrom(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(listing)
}

func (h *ListingHandler) DeleteListing(c *fiber.Ctx) error {
	res, err := h.listingService.Delete(c.UserContext(), middleware.RequestContextFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}
