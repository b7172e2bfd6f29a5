package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ApprovalType is the per-department policy for who may approve a
// guard-originated pass request.
type ApprovalType string

const (
	ApprovalTypeClientOnly  ApprovalType = "CLIENT_ONLY"
	ApprovalTypeEndUserOnly ApprovalType = "END_USER_ONLY"
	ApprovalTypeBoth        ApprovalType = "BOTH"
)

// IsValid checks whether the approval type is one of the known values
func (a ApprovalType) IsValid() bool {
	switch a {
	case ApprovalTypeClientOnly, ApprovalTypeEndUserOnly, ApprovalTypeBoth:
		return true
	}
	return false
}

// RoutesToClient reports whether guard-originated requests under this
// policy must surface in the client's approval queue.
func (a ApprovalType) RoutesToClient() bool {
	return a == ApprovalTypeClientOnly || a == ApprovalTypeBoth
}

// RoutesToEndUser reports whether guard-originated requests under this
// policy must surface in the department end user's approval queue.
func (a ApprovalType) RoutesToEndUser() bool {
	return a == ApprovalTypeEndUserOnly || a == ApprovalTypeBoth
}

// EndUser represents a departmental approver delegate created by a client
type EndUser struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	ClientID      uuid.UUID    `json:"client_id" db:"client_id"`
	Name          string       `json:"name" db:"name"`
	Email         string       `json:"email" db:"email"`
	PasswordHash  string       `json:"-" db:"password_hash"` // Never expose
	Department    string       `json:"department" db:"department"`
	Post          string       `json:"post" db:"post"`
	ApprovalType  ApprovalType `json:"approval_type" db:"approval_type"`
	CanAddVisitor bool         `json:"can_add_visitor" db:"can_add_visitor"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// CreateEndUserRequest represents the request to create an end user
type CreateEndUserRequest struct {
	Name          string       `json:"name" binding:"required"`
	Email         string       `json:"email" binding:"required,email"`
	Password      string       `json:"password" binding:"required,min=8"`
	Department    string       `json:"department" binding:"required"`
	Post          string       `json:"post" binding:"required"`
	ApprovalType  ApprovalType `json:"approval_type" binding:"required"`
	CanAddVisitor bool         `json:"can_add_visitor"`
}

// Validate validates the create end user request
func (r *CreateEndUserRequest) Validate() error {
	if !r.ApprovalType.IsValid() {
		return errors.New("approval_type must be CLIENT_ONLY, END_USER_ONLY, or BOTH")
	}
	return nil
}

// UpdateEndUserCredentialsRequest updates an end user's email and/or password
type UpdateEndUserCredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the credentials update request
func (r *UpdateEndUserCredentialsRequest) Validate() error {
	if r.Email == "" && r.Password == "" {
		return errors.New("at least one of email or password is required")
	}

	if r.Password != "" && len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	return nil
}
