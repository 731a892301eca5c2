package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"annadaan/internal/apperrors"
	"annadaan/internal/models"
	"annadaan/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventPublisher publishes donation lifecycle events. A nil publisher is
// tolerated so tests and local runs work without a broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// DonationRequest is the typed submission body. Any caller-supplied status is
// dropped here; donations always start pending.
type DonationRequest struct {
	Fullname     string `json:"fullname" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,len=10,number"`
	FoodType     string `json:"foodType" validate:"required,oneof=veg non-veg both"`
	FullAddress  string `json:"fullAddress" validate:"required"`
	FoodQuantity string `json:"foodQuantity" validate:"required"`
	Notes        string `json:"notes"`
	DonatedBy    string `json:"donatedBy"`
}

// DonationService handles business logic related to donations.
type DonationService struct {
	donationRepo repositories.DonationRepository
	userRepo     repositories.UserRepository
	publisher    EventPublisher
	validate     *validator.Validate
}

// NewDonationService creates a new DonationService.
func NewDonationService(donationRepo repositories.DonationRepository, userRepo repositories.UserRepository, publisher EventPublisher) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		userRepo:     userRepo,
		publisher:    publisher,
		validate:     validator.New(),
	}
}

// ViolationMessage maps a failed field rule to its user-facing message,
// matching the wording donors see on the forms. The registration handler
// shares this mapping for the fields both surfaces collect.
func ViolationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Fullname":
		return "Full name is required"
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Email must be a valid address"
	case "Phone":
		if fe.Tag() == "required" {
			return "Phone number is required"
		}
		return "Phone number must be exactly 10 digits"
	case "FoodType":
		if fe.Tag() == "required" {
			return "Food type is required"
		}
		return "Food type must be one of veg, non-veg or both"
	case "FullAddress":
		return "Address is required"
	case "FoodQuantity":
		return "Food quantity is required"
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
}

// validateRequest collects every violation in the submission, not just the
// first, and reports them as a single comma-joined InvalidArgument error.
func (s *DonationService) validateRequest(req DonationRequest) error {
	var violations []string

	if err := s.validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range validationErrors {
				violations = append(violations, ViolationMessage(fe))
			}
		} else {
			return apperrors.Wrap(apperrors.Internal, "failed to validate donation", err)
		}
	}

	if req.FoodQuantity != "" {
		if qty, err := strconv.Atoi(req.FoodQuantity); err != nil || qty <= 0 {
			violations = append(violations, "Food quantity must be a positive integer")
		}
	}

	if len(violations) > 0 {
		return apperrors.New(apperrors.InvalidArgument, strings.Join(violations, ", "))
	}
	return nil
}

// Submit records a new donation. An authenticated caller always becomes the
// owner; otherwise a syntactically valid donatedBy ID from the body is
// trusted as-is (its existence is not verified); otherwise the donation is
// anonymous. Status is forced to pending regardless of the request.
func (s *DonationService) Submit(req DonationRequest, caller *models.User) (*models.Donation, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	donation := &models.Donation{
		ID:           uuid.New().String(),
		Fullname:     req.Fullname,
		Email:        req.Email,
		Phone:        req.Phone,
		FoodType:     req.FoodType,
		FullAddress:  req.FullAddress,
		FoodQuantity: req.FoodQuantity,
		Notes:        req.Notes,
		Status:       models.StatusPending,
		DonatedAt:    time.Now(),
	}

	if caller != nil {
		ownerID := caller.ID
		donation.UserID = &ownerID
	} else if req.DonatedBy != "" {
		if _, err := uuid.Parse(req.DonatedBy); err == nil {
			ownerID := req.DonatedBy
			donation.UserID = &ownerID
		}
	}

	if err := s.donationRepo.Create(donation); err != nil {
		return nil, err
	}

	s.publishEvent("donation.created", map[string]interface{}{
		"donationID": donation.ID,
		"userID":     donation.UserID,
		"foodType":   donation.FoodType,
		"status":     donation.Status,
	})

	return donation, nil
}

// ListAll returns every donation, newest first, with each owner resolved to a
// minimal name+email projection. Admin only.
func (s *DonationService) ListAll(caller *models.User) ([]models.Donation, error) {
	if !Authorize(caller, ActionListAllDonations) {
		return nil, apperrors.New(apperrors.Forbidden, "admin access required")
	}

	donations, err := s.donationRepo.GetAll()
	if err != nil {
		return nil, err
	}

	// Owner references are weak: a donation whose user no longer resolves is
	// returned without a projection rather than dropped.
	refs := make(map[string]*models.DonorRef)
	for i := range donations {
		if donations[i].UserID == nil {
			continue
		}
		id := *donations[i].UserID
		ref, seen := refs[id]
		if !seen {
			if user, err := s.userRepo.GetByID(id); err == nil {
				ref = &models.DonorRef{Fullname: user.Fullname, Email: user.Email}
			}
			refs[id] = ref
		}
		donations[i].User = ref
	}

	return donations, nil
}

// ListOwn returns the caller's donations, newest first. An unauthenticated
// caller gets an empty list, not an error.
func (s *DonationService) ListOwn(caller *models.User) ([]models.Donation, error) {
	if caller == nil {
		return []models.Donation{}, nil
	}
	return s.donationRepo.GetByUserID(caller.ID)
}

// UpdateStatus overwrites the status of a donation and returns the updated
// record. Admin only. Any of the four statuses may replace any other; no
// transition graph is enforced beyond the enum itself.
func (s *DonationService) UpdateStatus(caller *models.User, donationID, status string) (*models.Donation, error) {
	if !Authorize(caller, ActionUpdateDonationStatus) {
		return nil, apperrors.New(apperrors.Forbidden, "admin access required")
	}

	if !models.ValidStatus(status) {
		return nil, apperrors.New(apperrors.InvalidArgument, fmt.Sprintf("invalid donation status: %s", status))
	}

	donation, err := s.donationRepo.GetByID(donationID)
	if err != nil {
		return nil, err
	}

	if err := s.donationRepo.UpdateStatus(donationID, status); err != nil {
		return nil, err
	}
	donation.Status = status

	s.publishEvent("donation.status_updated", map[string]interface{}{
		"donationID": donation.ID,
		"status":     donation.Status,
	})

	return donation, nil
}

// publishEvent marshals and publishes a donation event. Publish failures are
// logged, never surfaced: the storage write already committed.
func (s *DonationService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish("donation", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
