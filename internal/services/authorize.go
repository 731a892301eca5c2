package services

import "annadaan/internal/models"

// Action names an operation gated by the capability check.
type Action string

const (
	ActionListAllDonations     Action = "donation.list_all"
	ActionUpdateDonationStatus Action = "donation.update_status"
)

// Authorize is the single capability predicate consulted by the donation
// operations. Role checks live here rather than in each handler.
func Authorize(user *models.User, action Action) bool {
	switch action {
	case ActionListAllDonations, ActionUpdateDonationStatus:
		return user.IsAdmin()
	}
	return false
}
