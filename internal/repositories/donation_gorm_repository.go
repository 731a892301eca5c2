package repositories

import (
	"errors"
	"fmt"

	"annadaan/internal/apperrors"
	"annadaan/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMDonationRepository is a GORM implementation of DonationRepository.
type GORMDonationRepository struct {
	db *gorm.DB
}

// NewGORMDonationRepository creates a new instance of GORMDonationRepository.
func NewGORMDonationRepository(db *gorm.DB) *GORMDonationRepository {
	return &GORMDonationRepository{
		db: db,
	}
}

// Create creates a new donation in the database.
func (r *GORMDonationRepository) Create(donation *models.Donation) error {
	if donation.ID == "" {
		donation.ID = uuid.New().String()
	}
	if err := r.db.Create(donation).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to create donation", err)
	}
	return nil
}

// GetAll retrieves all donations, most recent first.
func (r *GORMDonationRepository) GetAll() ([]models.Donation, error) {
	var donations []models.Donation
	if err := r.db.Order("donated_at DESC").Find(&donations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to get all donations", err)
	}
	return donations, nil
}

// GetByUserID retrieves the donations owned by a user, most recent first.
func (r *GORMDonationRepository) GetByUserID(userID string) ([]models.Donation, error) {
	var donations []models.Donation
	if err := r.db.Where("user_id = ?", userID).Order("donated_at DESC").Find(&donations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to get donations for user", err)
	}
	return donations, nil
}

// GetByID retrieves a single donation by its ID.
func (r *GORMDonationRepository) GetByID(id string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.First(&donation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("donation with ID %s not found", id))
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to get donation by ID", err)
	}
	return &donation, nil
}

// UpdateStatus overwrites the status of a donation.
func (r *GORMDonationRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.Donation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to update donation status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.NotFound, fmt.Sprintf("donation with ID %s not found", id))
	}
	return nil
}
