package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertType classifies the lifecycle event an alert records
type AlertType string

const (
	AlertTypeRequested AlertType = "REQUESTED"
	AlertTypeScheduled AlertType = "SCHEDULED"
	AlertTypeCheckedIn AlertType = "CHECKED_IN"
	AlertTypeDenied    AlertType = "DENIED"
	AlertTypeExit      AlertType = "EXIT"
	AlertTypeTimeout   AlertType = "TIMEOUT"
)

// Alert is an append-only audit entry tied to exactly one pass. Alerts are
// never mutated; a client dismissing one deletes it outright.
type Alert struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PassID      uuid.UUID `json:"pass_id" db:"pass_id"`
	Type        AlertType `json:"type" db:"type"`
	Message     string    `json:"message" db:"message"`
	TriggeredAt time.Time `json:"triggered_at" db:"triggered_at"`
}

// AlertWithPass is an alert joined with the pass name for dashboard listings
type AlertWithPass struct {
	Alert
	PassName string `json:"pass_name" db:"pass_name"`
}
