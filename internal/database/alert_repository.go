package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
)

// AlertRepository handles database operations for the alerts table
type AlertRepository struct {
	db DB
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert
func (r *AlertRepository) Create(alert *models.Alert) error {
	query := `
		INSERT INTO alerts (id, pass_id, type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING triggered_at
	`

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		alert.ID, alert.PassID, alert.Type, alert.Message,
	).Scan(&alert.TriggeredAt)

	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// ExistsForPass reports whether an alert of the given type already
// references the pass. The overstay sweep uses this to stay idempotent.
func (r *AlertRepository) ExistsForPass(passID uuid.UUID, alertType models.AlertType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts WHERE pass_id = $1 AND type = $2
		)
	`

	var exists bool
	err := r.db.QueryRow(query, passID, alertType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check alert existence: %w", err)
	}

	return exists, nil
}

// GetByClientID returns the newest alerts for a client's passes, joined with
// the pass name for display.
func (r *AlertRepository) GetByClientID(clientID uuid.UUID, limit int) ([]models.AlertWithPass, error) {
	query := `
		SELECT a.id, a.pass_id, a.type, a.message, a.triggered_at, p.name AS pass_name
		FROM alerts a
		JOIN passes p ON p.id = a.pass_id
		WHERE p.client_id = $1
		ORDER BY a.triggered_at DESC
		LIMIT $2
	`

	return r.queryAlerts(query, clientID, limit)
}

// GetByEndUserID returns the newest alerts for passes referencing an end user
func (r *AlertRepository) GetByEndUserID(endUserID uuid.UUID, limit int) ([]models.AlertWithPass, error) {
	query := `
		SELECT a.id, a.pass_id, a.type, a.message, a.triggered_at, p.name AS pass_name
		FROM alerts a
		JOIN passes p ON p.id = a.pass_id
		WHERE p.end_user_id = $1
		ORDER BY a.triggered_at DESC
		LIMIT $2
	`

	return r.queryAlerts(query, endUserID, limit)
}

// Delete removes an alert (client dismissal)
func (r *AlertRepository) Delete(alertID uuid.UUID) error {
	query := `DELETE FROM alerts WHERE id = $1`

	result, err := r.db.Exec(query, alertID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// queryAlerts runs a multi-row alert query
func (r *AlertRepository) queryAlerts(query string, args ...interface{}) ([]models.AlertWithPass, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []models.AlertWithPass{}
	for rows.Next() {
		var alert models.AlertWithPass
		err := rows.Scan(
			&alert.ID, &alert.PassID, &alert.Type, &alert.Message,
			&alert.TriggeredAt, &alert.PassName,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}
