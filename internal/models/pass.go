package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PassKind discriminates the two pass variants sharing one lifecycle
type PassKind string

const (
	PassKindVisitor    PassKind = "visitor"
	PassKindContractor PassKind = "contractor"
)

// PassStatus represents the lifecycle status of a visitor/contractor pass
type PassStatus string

const (
	PassStatusPending    PassStatus = "PENDING"
	PassStatusScheduled  PassStatus = "SCHEDULED"
	PassStatusApproved   PassStatus = "APPROVED"
	PassStatusDenied     PassStatus = "DENIED"
	PassStatusCheckedIn  PassStatus = "CHECKED_IN"
	PassStatusCheckedOut PassStatus = "CHECKED_OUT"
	PassStatusOverstayed PassStatus = "OVERSTAYED"
)

// IsTerminal reports whether no further transition is possible from the status
func (s PassStatus) IsTerminal() bool {
	return s == PassStatusDenied || s == PassStatusCheckedOut
}

// Pass represents a visitor or contractor record. The two variants are
// discriminated by Kind: visitors carry Purpose, contractors carry
// MaterialType and optionally a material image.
type Pass struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	ClientID uuid.UUID  `json:"client_id" db:"client_id"`
	Kind     PassKind   `json:"kind" db:"kind"`
	Name     string     `json:"name" db:"name"`
	Phone    NullString `json:"phone,omitempty" db:"phone"`

	// Variant payload: exactly one of the two is set, matching Kind.
	Purpose      NullString `json:"purpose,omitempty" db:"purpose"`
	MaterialType NullString `json:"material_type,omitempty" db:"material_type"`

	Department  NullString    `json:"department,omitempty" db:"department"`
	EndUserID   uuid.NullUUID `json:"end_user_id,omitempty" db:"end_user_id"`
	EndUserName NullString    `json:"end_user_name,omitempty" db:"end_user_name"`

	// Routing flags: exactly one origin flag is true for gate- or
	// end-user-initiated requests, both false when the client created the
	// record directly.
	RequestedByGuard   bool         `json:"requested_by_guard" db:"requested_by_guard"`
	RequestedByEndUser bool         `json:"requested_by_end_user" db:"requested_by_end_user"`
	ApprovalType       ApprovalType `json:"approval_type" db:"approval_type"`
	ApprovedByClient   NullBool     `json:"approved_by_client,omitempty" db:"approved_by_client"`

	Status PassStatus `json:"status" db:"status"`

	ScheduledEntry NullTime `json:"scheduled_entry,omitempty" db:"scheduled_entry"`
	ScheduledExit  NullTime `json:"scheduled_exit,omitempty" db:"scheduled_exit"`
	CheckInTime    NullTime `json:"check_in_time,omitempty" db:"check_in_time"`
	CheckOutTime   NullTime `json:"check_out_time,omitempty" db:"check_out_time"`

	VehicleImage  NullString `json:"vehicle_image,omitempty" db:"vehicle_image"`
	MaterialImage NullString `json:"material_image,omitempty" db:"material_image"`

	GateCode          NullString `json:"-" db:"gate_code"` // Never expose in JSON
	GateCodeExpiresAt NullTime   `json:"-" db:"gate_code_expires_at"`

	Revision  int       `json:"revision" db:"revision"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Origin identifies which actor initiated a pass request
type Origin string

const (
	OriginGuard        Origin = "guard"
	OriginEndUser      Origin = "end_user"
	OriginClientDirect Origin = "client_direct"
)

// CanCheckIn reports whether the pass may still be validated at the gate
func (p *Pass) CanCheckIn() bool {
	switch p.Status {
	case PassStatusCheckedIn, PassStatusCheckedOut, PassStatusDenied, PassStatusOverstayed:
		return false
	}
	return true
}

// GuardRequest represents a guard-initiated visit request raised at the gate
type GuardRequest struct {
	ClientID   string `json:"client_id"`
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	Purpose    string `json:"purpose" binding:"required"`
	Department string `json:"department" binding:"required"`
}

// EndUserVisitRequest represents an end-user-initiated visit request
type EndUserVisitRequest struct {
	Name           string    `json:"name" binding:"required"`
	Phone          string    `json:"phone" binding:"required"`
	Purpose        string    `json:"purpose" binding:"required"`
	ScheduledEntry time.Time `json:"scheduled_entry" binding:"required"`
	ScheduledExit  time.Time `json:"scheduled_exit" binding:"required"`
}

// Validate validates the end-user visit request
func (r *EndUserVisitRequest) Validate() error {
	if !r.ScheduledExit.After(r.ScheduledEntry) {
		return errors.New("scheduled_exit must be after scheduled_entry")
	}
	return nil
}

// ClientVisitRequest represents a visitor added directly by the client
type ClientVisitRequest struct {
	Name           string    `json:"name" binding:"required"`
	Phone          string    `json:"phone" binding:"required"`
	Purpose        string    `json:"purpose" binding:"required"`
	Department     string    `json:"department" binding:"required"`
	ScheduledEntry time.Time `json:"scheduled_entry" binding:"required"`
	ScheduledExit  time.Time `json:"scheduled_exit" binding:"required"`
}

// Validate validates the client visit request
func (r *ClientVisitRequest) Validate() error {
	if !r.ScheduledExit.After(r.ScheduledEntry) {
		return errors.New("scheduled_exit must be after scheduled_entry")
	}
	return nil
}

// ClientContractorRequest represents a contractor added directly by the client
type ClientContractorRequest struct {
	Name           string    `json:"name" binding:"required"`
	Phone          string    `json:"phone" binding:"required"`
	MaterialType   string    `json:"material_type"`
	ScheduledEntry time.Time `json:"scheduled_entry" binding:"required"`
	ScheduledExit  time.Time `json:"scheduled_exit" binding:"required"`
}

// Validate validates the client contractor request
func (r *ClientContractorRequest) Validate() error {
	if !r.ScheduledExit.After(r.ScheduledEntry) {
		return errors.New("scheduled_exit must be after scheduled_entry")
	}
	return nil
}

// ApproveRequest carries the approval decision for a pending pass.
// Duration applies to guard-originated requests only: the visitor is
// already at the gate, so approval checks them in for duration hours
// and minutes from now.
type ApproveRequest struct {
	DurationHours   int `json:"duration_hours"`
	DurationMinutes int `json:"duration_minutes"`
}

// Duration converts the hours+minutes pair into a time.Duration
func (r *ApproveRequest) Duration() time.Duration {
	return time.Duration(r.DurationHours)*time.Hour + time.Duration(r.DurationMinutes)*time.Minute
}

// Validate validates the approve request
func (r *ApproveRequest) Validate() error {
	if r.DurationHours < 0 || r.DurationMinutes < 0 {
		return errors.New("duration cannot be negative")
	}
	if r.DurationMinutes > 59 {
		return errors.New("duration_minutes must be between 0 and 59")
	}
	return nil
}

// GateCheckInRequest represents an OTP-based gate validation
type GateCheckInRequest struct {
	PassID        string `json:"pass_id" binding:"required"`
	Code          string `json:"code" binding:"required"`
	VehicleImage  string `json:"vehicle_image"`
	MaterialImage string `json:"material_image"`
}

// QrCheckInRequest represents a QR-based gate validation; the QR payload
// is the pass id itself.
type QrCheckInRequest struct {
	PassID        string `json:"pass_id" binding:"required"`
	VehicleImage  string `json:"vehicle_image"`
	MaterialImage string `json:"material_image"`
}

// CheckOutRequest represents a gate checkout
type CheckOutRequest struct {
	PassID string `json:"pass_id" binding:"required"`
}
