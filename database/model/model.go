// Package model defines the persistent records of the doorwatch collector.
package model

import "time"

// Role is the coarse permission tier carried by every user account.
// There are exactly three tiers and no inheritance between them; each
// operation declares its own allowed set.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleAuditor Role = "auditor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleAuditor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatusSnapshot is one immutable device-status reading. Rows are only
// ever inserted; there is no retention or capping.
type StatusSnapshot struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
	State       string    `json:"state"`
	Temperature float64   `json:"temperature"`
	Battery     int       `json:"battery"`
}
