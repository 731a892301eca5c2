package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"annadaan/internal/apperrors"
	"annadaan/internal/models"

	"github.com/google/uuid"
)

// MockDonationRepository is an in-memory implementation of DonationRepository.
type MockDonationRepository struct {
	donations map[string]models.Donation
	mu        sync.RWMutex
}

// NewMockDonationRepository creates a new instance of MockDonationRepository.
func NewMockDonationRepository() *MockDonationRepository {
	return &MockDonationRepository{
		donations: make(map[string]models.Donation),
	}
}

// Create adds a new donation.
func (r *MockDonationRepository) Create(donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if donation.ID == "" {
		donation.ID = uuid.New().String()
	}
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = time.Now()
	r.donations[donation.ID] = *donation
	return nil
}

// GetAll returns all donations, most recent first.
func (r *MockDonationRepository) GetAll() ([]models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Donation, 0, len(r.donations))
	for _, d := range r.donations {
		list = append(list, d)
	}
	sortByDonatedAtDesc(list)
	return list, nil
}

// GetByUserID returns the donations owned by a user, most recent first.
func (r *MockDonationRepository) GetByUserID(userID string) ([]models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Donation
	for _, d := range r.donations {
		if d.UserID != nil && *d.UserID == userID {
			list = append(list, d)
		}
	}
	sortByDonatedAtDesc(list)
	return list, nil
}

// GetByID returns a donation by its ID.
func (r *MockDonationRepository) GetByID(id string) (*models.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	donation, ok := r.donations[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("donation with ID %s not found", id))
	}
	return &donation, nil
}

// UpdateStatus overwrites the status of a donation.
func (r *MockDonationRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	donation, ok := r.donations[id]
	if !ok {
		return apperrors.New(apperrors.NotFound, fmt.Sprintf("donation with ID %s not found", id))
	}
	donation.Status = status
	donation.UpdatedAt = time.Now()
	r.donations[id] = donation
	return nil
}

func sortByDonatedAtDesc(list []models.Donation) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].DonatedAt.After(list[j].DonatedAt)
	})
}
