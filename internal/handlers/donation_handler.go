package handlers

import (
	"log"

	"annadaan/internal/apperrors"
	"annadaan/internal/middleware"
	"annadaan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles HTTP requests for donations.
type DonationHandler struct {
	service *services.DonationService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(service *services.DonationService) *DonationHandler {
	return &DonationHandler{
		service: service,
	}
}

// RegisterRoutes registers the donation routes with the Fiber app.
// soft authenticates when a token is present; required rejects without one.
func (h *DonationHandler) RegisterRoutes(router fiber.Router, soft fiber.Handler, required fiber.Handler) {
	donateRoutes := router.Group("/donate")
	donateRoutes.Post("/donate", soft, h.HandleSubmit)
	donateRoutes.Post("/foodDonate", soft, h.HandleSubmit) // legacy path kept for the existing frontend
	donateRoutes.Get("/all", required, h.HandleListAll)
	donateRoutes.Get("/user", soft, h.HandleListOwn)
	donateRoutes.Patch("/status", required, h.HandleUpdateStatus)
}

// HandleSubmit records a new donation, anonymously or on behalf of the
// authenticated caller.
func (h *DonationHandler) HandleSubmit(c *fiber.Ctx) error {
	var req services.DonationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing donation request body: %v", err)
		return Fail(c, apperrors.New(apperrors.InvalidArgument, "invalid request body"))
	}

	donation, err := h.service.Submit(req, middleware.UserFromContext(c))
	if err != nil {
		log.Printf("Error creating donation: %v", err)
		return Fail(c, err)
	}

	return Respond(c, fiber.StatusCreated, "Donation recorded successfully", donation)
}

// HandleListAll returns every donation. Admin only.
func (h *DonationHandler) HandleListAll(c *fiber.Ctx) error {
	donations, err := h.service.ListAll(middleware.UserFromContext(c))
	if err != nil {
		log.Printf("Error listing donations: %v", err)
		return Fail(c, err)
	}

	return Respond(c, fiber.StatusOK, "Donations retrieved successfully", donations)
}

// HandleListOwn returns the caller's donations; anonymous callers get an
// empty list rather than an error.
func (h *DonationHandler) HandleListOwn(c *fiber.Ctx) error {
	donations, err := h.service.ListOwn(middleware.UserFromContext(c))
	if err != nil {
		log.Printf("Error listing user donations: %v", err)
		return Fail(c, err)
	}

	return Respond(c, fiber.StatusOK, "Donations retrieved successfully", donations)
}

// StatusUpdateRequest represents the request body for a status update.
type StatusUpdateRequest struct {
	DonationID string `json:"donationId"`
	Status     string `json:"status"`
}

// HandleUpdateStatus overwrites a donation's status. Admin only.
func (h *DonationHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update body: %v", err)
		return Fail(c, apperrors.New(apperrors.InvalidArgument, "invalid request body"))
	}

	if req.DonationID == "" {
		return Fail(c, apperrors.New(apperrors.InvalidArgument, "donationId is required"))
	}

	donation, err := h.service.UpdateStatus(middleware.UserFromContext(c), req.DonationID, req.Status)
	if err != nil {
		log.Printf("Error updating donation %s: %v", req.DonationID, err)
		return Fail(c, err)
	}

	return Respond(c, fiber.StatusOK, "Donation status updated successfully", donation)
}
