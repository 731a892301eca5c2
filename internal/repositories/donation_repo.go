package repositories

import "annadaan/internal/models"

// DonationRepository defines the interface for donation data access.
// List operations return donations most-recently-submitted first.
type DonationRepository interface {
	Create(donation *models.Donation) error
	GetAll() ([]models.Donation, error)
	GetByUserID(userID string) ([]models.Donation, error)
	GetByID(id string) (*models.Donation, error)
	UpdateStatus(id string, status string) error
}
