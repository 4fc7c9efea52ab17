package model

import (
	"time"
)

// Known role names. Role tables themselves are provisioned out of band.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

// ValidRole reports whether name is one of the provisioned role names.
func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleManager, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	HashedPassword string         `json:"-"` // Not exposed
	FullName       string         `json:"fullName"`
	Role           []string       `json:"role"`
	CreatedDate    time.Time      `json:"createdDate"`
	LastUpdated    *time.Time     `json:"lastUpdated,omitempty"`
	LastUpdatedBy  *ActorSnapshot `json:"lastUpdatedBy,omitempty"`
}

// ActorSnapshot is the reduced acting-identity record stamped onto a user
// document and audit entries. It is a copy taken at mutation time, not a
// reference to the live user.
type ActorSnapshot struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Role     []string `json:"role"`
}
