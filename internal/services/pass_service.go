package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/sms"
	"github.com/sirupsen/logrus"
)

// PassService owns pass creation, approval routing, and the lifecycle
// transitions around approval. Physical gate transitions live in
// GateService; both share the same conditional-update repository so every
// transition has exactly one winner under concurrent load.
type PassService struct {
	passes   *database.PassRepository
	endUsers *database.EndUserRepository
	alerts   *AlertService
	gateway  sms.Gateway
	logger   *logrus.Logger

	defaultClientID uuid.UUID
	codeLength      int
	defaultCodeTTL  time.Duration

	now func() time.Time
}

// NewPassService creates a new pass service
func NewPassService(
	passes *database.PassRepository,
	endUsers *database.EndUserRepository,
	alerts *AlertService,
	gateway sms.Gateway,
	logger *logrus.Logger,
	defaultClientID uuid.UUID,
	codeLength int,
	defaultCodeTTL time.Duration,
) *PassService {
	return &PassService{
		passes:          passes,
		endUsers:        endUsers,
		alerts:          alerts,
		gateway:         gateway,
		logger:          logger,
		defaultClientID: defaultClientID,
		codeLength:      codeLength,
		defaultCodeTTL:  defaultCodeTTL,
		now:             time.Now,
	}
}

// CreateGuardRequest logs a visit request raised by a guard at the gate.
// The department's end user, if one exists, determines the approval routing
// snapshot; departments without a delegate default to CLIENT_ONLY.
func (s *PassService) CreateGuardRequest(req *models.GuardRequest) (*models.Pass, error) {
	clientID, err := s.resolveClientID(req.ClientID)
	if err != nil {
		return nil, err
	}

	pass := &models.Pass{
		ClientID:         clientID,
		Kind:             models.PassKindVisitor,
		Name:             req.Name,
		Phone:            nullString(req.Phone),
		Purpose:          nullString(req.Purpose),
		Department:       nullString(req.Department),
		RequestedByGuard: true,
		ApprovalType:     models.ApprovalTypeClientOnly,
		Status:           models.PassStatusPending,
	}

	endUser, err := s.endUsers.FindByDepartment(clientID, req.Department)
	switch {
	case err == nil:
		pass.EndUserID = uuid.NullUUID{UUID: endUser.ID, Valid: true}
		pass.EndUserName = nullString(endUser.Name)
		pass.ApprovalType = endUser.ApprovalType
	case errors.Is(err, sql.ErrNoRows):
		// No delegate for this department; the client approves.
	default:
		return nil, fmt.Errorf("failed to look up department end user: %w", err)
	}

	if err := s.passes.Create(pass); err != nil {
		return nil, err
	}

	s.alerts.Emit(pass.ID, models.AlertTypeRequested, fmt.Sprintf("%s visit requested", pass.Name))

	return pass, nil
}

// CreateEndUserVisit schedules a visit request on behalf of an end user.
// The end user counts as having approved by submitting, so the request
// always routes to the client for sign-off.
func (s *PassService) CreateEndUserVisit(endUserID uuid.UUID, req *models.EndUserVisitRequest) (*models.Pass, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	endUser, err := s.endUsers.GetByID(endUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEndUserNotFound
		}
		return nil, err
	}

	if !endUser.CanAddVisitor {
		return nil, ErrVisitorNotAllowed
	}

	pass := &models.Pass{
		ClientID:           endUser.ClientID,
		Kind:               models.PassKindVisitor,
		Name:               req.Name,
		Phone:              nullString(req.Phone),
		Purpose:            nullString(req.Purpose),
		Department:         nullString(endUser.Department),
		EndUserID:          uuid.NullUUID{UUID: endUser.ID, Valid: true},
		EndUserName:        nullString(endUser.Name),
		ApprovalType:       endUser.ApprovalType,
		RequestedByEndUser: true,
		Status:             models.PassStatusPending,
		ScheduledEntry:     nullTime(req.ScheduledEntry),
		ScheduledExit:      nullTime(req.ScheduledExit),
	}

	if err := s.passes.Create(pass); err != nil {
		return nil, err
	}

	s.alerts.Emit(pass.ID, models.AlertTypeRequested, fmt.Sprintf("%s visit requested", pass.Name))

	return pass, nil
}

// CreateClientVisitor adds a visitor directly as the client. No approval
// round is needed; the pass is scheduled immediately and its gate code armed.
func (s *PassService) CreateClientVisitor(clientID uuid.UUID, req *models.ClientVisitRequest) (*models.Pass, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pass := &models.Pass{
		ClientID:         clientID,
		Kind:             models.PassKindVisitor,
		Name:             req.Name,
		Phone:            nullString(req.Phone),
		Purpose:          nullString(req.Purpose),
		Department:       nullString(req.Department),
		ApprovalType:     models.ApprovalTypeClientOnly,
		ApprovedByClient: nullBool(true),
		Status:           models.PassStatusScheduled,
		ScheduledEntry:   nullTime(req.ScheduledEntry),
		ScheduledExit:    nullTime(req.ScheduledExit),
	}

	if err := s.armGateCode(pass, req.ScheduledExit); err != nil {
		return nil, err
	}

	if err := s.passes.Create(pass); err != nil {
		return nil, err
	}

	s.alerts.Emit(pass.ID, models.AlertTypeScheduled, fmt.Sprintf("%s visit scheduled", pass.Name))
	s.deliverGateCode(pass)

	return pass, nil
}

// CreateClientContractor adds a contractor directly as the client
func (s *PassService) CreateClientContractor(clientID uuid.UUID, req *models.ClientContractorRequest) (*models.Pass, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pass := &models.Pass{
		ClientID:         clientID,
		Kind:             models.PassKindContractor,
		Name:             req.Name,
		Phone:            nullString(req.Phone),
		MaterialType:     nullString(req.MaterialType),
		ApprovalType:     models.ApprovalTypeClientOnly,
		ApprovedByClient: nullBool(true),
		Status:           models.PassStatusScheduled,
		ScheduledEntry:   nullTime(req.ScheduledEntry),
		ScheduledExit:    nullTime(req.ScheduledExit),
	}

	if err := s.armGateCode(pass, req.ScheduledExit); err != nil {
		return nil, err
	}

	if err := s.passes.Create(pass); err != nil {
		return nil, err
	}

	s.alerts.Emit(pass.ID, models.AlertTypeScheduled, fmt.Sprintf("%s visit scheduled", pass.Name))
	s.deliverGateCode(pass)

	return pass, nil
}

// Approve records an approval decision on a pending pass. The effect depends
// on the request's origin: a guard-originated visitor is already standing at
// the gate, so approval checks them in for the supplied duration; an
// end-user-originated request is only scheduled, with the physical check-in
// happening later through the gate.
func (s *PassService) Approve(passID uuid.UUID, byClient bool, req *models.ApproveRequest) (*models.Pass, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pass, err := s.passes.GetByID(passID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPassNotFound
		}
		return nil, err
	}

	if pass.Status != models.PassStatusPending {
		return nil, ErrNotPending
	}

	if pass.RequestedByGuard {
		return s.approveAtGate(pass, byClient, req.Duration())
	}

	return s.approveSchedule(pass, byClient)
}

// approveAtGate checks a guard-originated request straight in
func (s *PassService) approveAtGate(pass *models.Pass, byClient bool, duration time.Duration) (*models.Pass, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: a visit duration is required", ErrValidation)
	}

	now := s.now()
	updated, err := s.passes.ApproveCheckIn(pass.ID, now, now.Add(duration), byClient)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent approver or denier won the race.
			return nil, ErrNotPending
		}
		return nil, err
	}

	s.alerts.Emit(updated.ID, models.AlertTypeCheckedIn, fmt.Sprintf("%s checked in", updated.Name))

	return updated, nil
}

// approveSchedule moves an end-user-originated request to SCHEDULED and arms
// its gate code for the later physical check-in.
func (s *PassService) approveSchedule(pass *models.Pass, byClient bool) (*models.Pass, error) {
	code, err := generateGateCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate gate code: %w", err)
	}

	expiresAt := s.now().Add(s.defaultCodeTTL)
	if pass.ScheduledExit.Valid {
		expiresAt = pass.ScheduledExit.Time
	}

	updated, err := s.passes.ApproveSchedule(pass.ID, byClient, code, expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	s.alerts.Emit(updated.ID, models.AlertTypeScheduled, fmt.Sprintf("%s visit scheduled", updated.Name))
	s.deliverGateCode(updated)

	return updated, nil
}

// Deny rejects a pending pass. DENIED is terminal.
func (s *PassService) Deny(passID uuid.UUID) (*models.Pass, error) {
	updated, err := s.passes.Deny(passID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := s.passes.GetByID(passID); errors.Is(getErr, sql.ErrNoRows) {
				return nil, ErrPassNotFound
			}
			return nil, ErrNotPending
		}
		return nil, err
	}

	s.alerts.Emit(updated.ID, models.AlertTypeDenied, fmt.Sprintf("%s visit denied", updated.Name))

	return updated, nil
}

// ClientQueue returns the client's pending approval queue
func (s *PassService) ClientQueue(clientID uuid.UUID) ([]models.Pass, error) {
	return s.passes.GetClientQueue(clientID)
}

// EndUserQueue returns the pending requests routed to an end user
func (s *PassService) EndUserQueue(endUserID uuid.UUID) ([]models.Pass, error) {
	return s.passes.GetEndUserQueue(endUserID)
}

// ClientRecords returns all passes of a kind for the client dashboard
func (s *PassService) ClientRecords(clientID uuid.UUID, kind models.PassKind) ([]models.Pass, error) {
	return s.passes.GetByClientID(clientID, kind)
}

// EndUserRecords returns the passes referencing an end user
func (s *PassService) EndUserRecords(endUserID uuid.UUID) ([]models.Pass, error) {
	return s.passes.GetByEndUserID(endUserID)
}

// GuardLog returns the latest gate activity for the guard dashboard
func (s *PassService) GuardLog(limit int) ([]models.Pass, error) {
	return s.passes.GetGuardLog(limit)
}

// ScheduledPasses returns passes awaiting physical check-in
func (s *PassService) ScheduledPasses() ([]models.Pass, error) {
	return s.passes.GetScheduled()
}

// CheckedInPasses returns passes currently on site
func (s *PassService) CheckedInPasses() ([]models.Pass, error) {
	return s.passes.GetCheckedIn()
}

// resolveClientID parses the requested client id, falling back to the
// configured default tenant for guard kiosks that do not send one.
func (s *PassService) resolveClientID(raw string) (uuid.UUID, error) {
	if raw == "" {
		if s.defaultClientID == uuid.Nil {
			return uuid.Nil, fmt.Errorf("%w: client_id is required and no default tenant is configured", ErrValidation)
		}
		return s.defaultClientID, nil
	}

	clientID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid client_id", ErrValidation)
	}

	return clientID, nil
}

// armGateCode generates a fresh per-visit code expiring at the scheduled exit
func (s *PassService) armGateCode(pass *models.Pass, scheduledExit time.Time) error {
	code, err := generateGateCode(s.codeLength)
	if err != nil {
		return fmt.Errorf("failed to generate gate code: %w", err)
	}

	pass.GateCode = nullString(code)
	pass.GateCodeExpiresAt = nullTime(scheduledExit)

	return nil
}

// deliverGateCode sends the per-visit code to the visitor's phone.
// Delivery is best effort: a gateway failure leaves the pass scheduled and
// the code recoverable by the client from their dashboard.
func (s *PassService) deliverGateCode(pass *models.Pass) {
	if !pass.Phone.Valid || !pass.GateCode.Valid {
		return
	}

	message := fmt.Sprintf("Your visit code is %s. Present it at the gate on arrival.", pass.GateCode.String)
	if err := s.gateway.Send(pass.Phone.String, message); err != nil {
		s.logger.WithError(err).WithField("pass_id", pass.ID).Warn("Failed to deliver gate code")
	}
}

// nullString wraps a string into models.NullString, empty meaning NULL
func nullString(s string) models.NullString {
	return models.NullString{NullString: sql.NullString{String: s, Valid: s != ""}}
}

// nullTime wraps a time into models.NullTime, zero meaning NULL
func nullTime(t time.Time) models.NullTime {
	return models.NullTime{NullTime: sql.NullTime{Time: t, Valid: !t.IsZero()}}
}

// nullBool wraps a decided boolean into models.NullBool
func nullBool(b bool) models.NullBool {
	return models.NullBool{NullBool: sql.NullBool{Bool: b, Valid: true}}
}
