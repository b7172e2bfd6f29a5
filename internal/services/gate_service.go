package services

import (
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
)

// GateService authenticates physical check-ins and checkouts at the point of
// entry. Both the OTP and QR paths end in the same conditional status update,
// so a duplicate submission under concurrent load loses the race instead of
// stamping check_in_time twice.
type GateService struct {
	passes *database.PassRepository
	alerts *AlertService

	now func() time.Time
}

// NewGateService creates a new gate service
func NewGateService(passes *database.PassRepository, alerts *AlertService) *GateService {
	return &GateService{
		passes: passes,
		alerts: alerts,
		now:    time.Now,
	}
}

// GateMetadata carries optional capture attachments from the gate station
type GateMetadata struct {
	VehicleImage  string
	MaterialImage string
}

// CheckInByOTP validates a pass with its per-visit code and checks it in
func (g *GateService) CheckInByOTP(passID uuid.UUID, code string, meta GateMetadata) (*models.Pass, error) {
	pass, err := g.getPassForCheckIn(passID)
	if err != nil {
		return nil, err
	}

	if !pass.GateCode.Valid || subtle.ConstantTimeCompare([]byte(pass.GateCode.String), []byte(code)) != 1 {
		return nil, ErrInvalidGateCode
	}

	if pass.GateCodeExpiresAt.Valid && g.now().After(pass.GateCodeExpiresAt.Time) {
		return nil, ErrGateCodeExpired
	}

	updated, err := g.checkIn(pass, meta)
	if err != nil {
		return nil, err
	}

	g.alerts.Emit(updated.ID, models.AlertTypeCheckedIn, fmt.Sprintf("%s validated at gate", updated.Name))

	return updated, nil
}

// CheckInByQR validates a pass from a scanned QR payload, which is the pass
// id itself, and checks it in. The possession of the QR is the credential.
func (g *GateService) CheckInByQR(passID uuid.UUID, meta GateMetadata) (*models.Pass, error) {
	pass, err := g.getPassForCheckIn(passID)
	if err != nil {
		return nil, err
	}

	updated, err := g.checkIn(pass, meta)
	if err != nil {
		return nil, err
	}

	g.alerts.Emit(updated.ID, models.AlertTypeCheckedIn, fmt.Sprintf("%s validated by QR", updated.Name))

	return updated, nil
}

// CheckOut stamps the gate exit. CHECKED_OUT is terminal.
func (g *GateService) CheckOut(passID uuid.UUID) (*models.Pass, error) {
	updated, err := g.passes.CheckOut(passID, g.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := g.passes.GetByID(passID); errors.Is(getErr, sql.ErrNoRows) {
				return nil, ErrPassNotFound
			}
			return nil, ErrNotCheckedIn
		}
		return nil, err
	}

	g.alerts.Emit(updated.ID, models.AlertTypeExit, fmt.Sprintf("%s checked out", updated.Name))

	return updated, nil
}

// getPassForCheckIn loads the pass and rejects statuses that can no longer
// check in, with gate-appropriate wording for each.
func (g *GateService) getPassForCheckIn(passID uuid.UUID) (*models.Pass, error) {
	pass, err := g.passes.GetByID(passID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPassNotFound
		}
		return nil, err
	}

	if !pass.CanCheckIn() {
		switch pass.Status {
		case models.PassStatusCheckedOut:
			return nil, ErrPassExpired
		case models.PassStatusCheckedIn, models.PassStatusOverstayed:
			return nil, ErrAlreadyCheckedIn
		default:
			return nil, ErrPassDenied
		}
	}

	return pass, nil
}

// checkIn performs the conditional transition shared by both credential paths
func (g *GateService) checkIn(pass *models.Pass, meta GateMetadata) (*models.Pass, error) {
	updated, err := g.passes.CheckIn(
		pass.ID,
		g.now(),
		metaImage(meta.VehicleImage),
		metaImage(meta.MaterialImage),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent submission won; the status guard above raced.
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}

	return updated, nil
}

// metaImage converts an optional capture into a nullable column value
func metaImage(image string) models.NullString {
	return nullString(strings.TrimSpace(image))
}

// generateGateCode generates a cryptographically random numeric code of the
// given length, zero-padded.
func generateGateCode(length int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < length; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
