package models

import "time"

// Donation statuses. A donation is created as "pending" and moves between
// states only through the admin status-update operation.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Food type values accepted on submission.
const (
	FoodTypeVeg    = "veg"
	FoodTypeNonVeg = "non-veg"
	FoodTypeBoth   = "both"
)

// DonorRef is the minimal projection of the owning user attached to a
// donation when listing for admins. It is resolved at read time, never stored.
type DonorRef struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// Donation represents a single donor-submitted food contribution.
// UserID is a weak reference: the donation stays valid even if the referenced
// user no longer resolves, and anonymous donations carry no reference at all.
type Donation struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Fullname     string    `json:"fullname" gorm:"type:varchar(100)"`
	Email        string    `json:"email" gorm:"type:varchar(255)"`
	Phone        string    `json:"phone" gorm:"type:varchar(10)"`
	FoodType     string    `json:"foodType" gorm:"type:varchar(10)"`
	FullAddress  string    `json:"fullAddress" gorm:"type:varchar(255)"`
	FoodQuantity string    `json:"foodQuantity" gorm:"type:varchar(20)"`
	Status       string    `json:"status" gorm:"type:varchar(10);default:pending"`
	Notes        string    `json:"notes,omitempty" gorm:"type:varchar(500)"`
	UserID       *string   `json:"userId,omitempty" gorm:"type:varchar(36);index"`
	User         *DonorRef `json:"user" gorm:"-"`
	DonatedAt    time.Time `json:"donatedAt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is one of the four donation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidFoodType reports whether s is an accepted food type.
func ValidFoodType(s string) bool {
	switch s {
	case FoodTypeVeg, FoodTypeNonVeg, FoodTypeBoth:
		return true
	}
	return false
}
