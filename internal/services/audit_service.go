package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/utils"
)

// AuditService records security-relevant events: sign-ins, approval
// decisions, and gate submissions.
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	ActorID    *uuid.UUID             // Can be nil for pre-authentication events
	Action     string                 // e.g. "sign_in", "approve", "gate_check_in"
	EntityType string                 // e.g. "client", "end_user", "pass", "alert"
	EntityID   *uuid.UUID             // ID of the affected entity (can be nil)
	IPAddress  string                 // Client IP address
	UserAgent  string                 // Client user agent
	Details    map[string]interface{} // Additional details as JSONB
}

// LogSignIn logs a sign-in attempt for a client or end user
func (s *AuditService) LogSignIn(actorID *uuid.UUID, role, email, ipAddress, userAgent string, success bool) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	action := "sign_in_failed"
	if success {
		action = "sign_in_success"
	}

	return s.logEvent(AuditEvent{
		ActorID:    actorID,
		Action:     action,
		EntityType: role,
		EntityID:   actorID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"email":       email,
			"success":     success,
			"device_info": deviceInfo,
		},
	})
}

// LogDecision logs an approval or denial of a pending pass
func (s *AuditService) LogDecision(actorID uuid.UUID, role string, passID uuid.UUID, approved bool, ipAddress, userAgent string) error {
	action := "pass_denied"
	if approved {
		action = "pass_approved"
	}

	return s.logEvent(AuditEvent{
		ActorID:    &actorID,
		Action:     action,
		EntityType: "pass",
		EntityID:   &passID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"approver_role": role,
		},
	})
}

// LogGateEvent logs a gate submission (check-in attempt or checkout)
func (s *AuditService) LogGateEvent(passID uuid.UUID, action, method, ipAddress, userAgent string, success bool, reason string) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	details := map[string]interface{}{
		"method":      method, // "otp" or "qr"
		"success":     success,
		"device_info": deviceInfo,
	}

	if reason != "" {
		details["reason"] = reason
	}

	return s.logEvent(AuditEvent{
		ActorID:    nil, // Gate stations act pre-authentication of the visitor
		Action:     action,
		EntityType: "pass",
		EntityID:   &passID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	_, err = s.db.Exec(
		query,
		event.ActorID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		details,
	)

	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
