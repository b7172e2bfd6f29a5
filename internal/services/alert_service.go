package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/sirupsen/logrus"
)

// AlertService produces the append-only audit trail of lifecycle events and
// runs the overstay sweep. Alert writes are best effort: a failed write is
// logged and never rolls back the transition that triggered it.
type AlertService struct {
	alerts *database.AlertRepository
	passes *database.PassRepository
	logger *logrus.Logger

	fetchLimit int

	now func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(
	alerts *database.AlertRepository,
	passes *database.PassRepository,
	logger *logrus.Logger,
	fetchLimit int,
) *AlertService {
	return &AlertService{
		alerts:     alerts,
		passes:     passes,
		logger:     logger,
		fetchLimit: fetchLimit,
		now:        time.Now,
	}
}

// Emit records a lifecycle alert for a pass. Failures are logged and
// swallowed so the primary mutation is never rolled back.
func (s *AlertService) Emit(passID uuid.UUID, alertType models.AlertType, message string) {
	alert := &models.Alert{
		PassID:  passID,
		Type:    alertType,
		Message: message,
	}

	if err := s.alerts.Create(alert); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"pass_id": passID,
			"type":    alertType,
		}).Error("Failed to write alert")
	}
}

// ListClientAlerts returns the newest alerts for a client's passes. The
// overstay sweep runs first so stale check-ins surface as TIMEOUT alerts on
// the same fetch.
func (s *AlertService) ListClientAlerts(clientID uuid.UUID) ([]models.AlertWithPass, error) {
	if _, err := s.SweepOverstayed(); err != nil {
		s.logger.WithError(err).Warn("Overstay sweep failed")
	}

	return s.alerts.GetByClientID(clientID, s.fetchLimit)
}

// ListEndUserAlerts returns the newest alerts for passes referencing an end user
func (s *AlertService) ListEndUserAlerts(endUserID uuid.UUID) ([]models.AlertWithPass, error) {
	return s.alerts.GetByEndUserID(endUserID, s.fetchLimit)
}

// Dismiss deletes an alert. Dismissal is the only deletion path; alerts are
// never mutated in place.
func (s *AlertService) Dismiss(alertID uuid.UUID) error {
	err := s.alerts.Delete(alertID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlertNotFound
		}
		return err
	}

	return nil
}

// SweepOverstayed flags every pass still on site past its scheduled exit:
// the status flips to OVERSTAYED and exactly one TIMEOUT alert is written.
// The pre-existing alert check makes repeated sweeps idempotent, and the
// conditional status update keeps concurrent sweeps from double-flagging.
// Returns the number of passes flagged.
func (s *AlertService) SweepOverstayed() (int, error) {
	overstayed, err := s.passes.FindOverstayed(s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to scan for overstays: %w", err)
	}

	flagged := 0
	for _, pass := range overstayed {
		exists, err := s.alerts.ExistsForPass(pass.ID, models.AlertTypeTimeout)
		if err != nil {
			s.logger.WithError(err).WithField("pass_id", pass.ID).Error("Failed to check for existing timeout alert")
			continue
		}
		if exists {
			continue
		}

		if err := s.passes.MarkOverstayed(pass.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Checked out or flagged by a concurrent sweep in the meantime.
				continue
			}
			s.logger.WithError(err).WithField("pass_id", pass.ID).Error("Failed to mark pass overstayed")
			continue
		}

		s.Emit(pass.ID, models.AlertTypeTimeout, fmt.Sprintf("%s has overstayed", pass.Name))
		flagged++
	}

	return flagged, nil
}
