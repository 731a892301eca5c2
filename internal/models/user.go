package models

import "gorm.io/gorm"

// User roles. Every registered account starts as a donor; admins are
// seeded at boot or promoted out of band.
const (
	RoleDonor = "donor"
	RoleAdmin = "admin"
)

// User represents a registered account.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Fullname   string `json:"fullname" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Phone      string `json:"phone" gorm:"uniqueIndex;type:varchar(10)" validate:"required,len=10,number"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(10);default:donor"`
	Address    string `json:"address,omitempty" gorm:"type:varchar(255)"`
	City       string `json:"city,omitempty" gorm:"type:varchar(100)"`
	Pincode    string `json:"pincode,omitempty" gorm:"type:varchar(10)"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
