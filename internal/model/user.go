package model

import (
	"time"
)

// User roles. Role is always one of these four values.
const (
	RoleAdmin    = "admin"
	RoleDesigner = "designer"
	RoleSales    = "sales"
	RoleUser     = "user"
)

// Roles lists every valid role value.
var Roles = []string{RoleAdmin, RoleDesigner, RoleSales, RoleUser}

// ValidRole reports whether role is one of the enumerated values.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if role == r {
			return true
		}
	}
	return false
}

// User is the identity record. The password hash never crosses the API
// boundary: it is excluded from JSON and stripped again in the response DTO.
type User struct {
	ID        uint                   `gorm:"primaryKey" json:"id"`
	FullName  string                 `gorm:"type:varchar(100);not null;column:full_name" json:"full_name"`
	Email     string                 `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string                 `gorm:"type:varchar(255);not null" json:"-"`
	Role      string                 `gorm:"type:varchar(50);not null;default:user" json:"role"`
	Extras    map[string]interface{} `gorm:"serializer:json" json:"extras"`
	CreatedAt time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}
