package models

import "fmt"

// Role is an access tier gating route access.
type Role string

const (
	RoleRead  Role = "read"
	RoleWrite Role = "write"
	RoleAdmin Role = "admin"
)

// ParseRole converts a raw role name into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleRead, RoleWrite, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents an account allowed to use the logbook.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"` // No json tag for security
	Role         Role   `json:"role" gorm:"type:varchar(16);not null"`
}

// TableName pins the table name shared with existing databases.
func (User) TableName() string {
	return "users"
}
