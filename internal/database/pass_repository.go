package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
)

// passColumns is the full column list for the passes table, shared by every
// SELECT and RETURNING clause so scans stay in one shape.
const passColumns = `id, client_id, kind, name, phone, purpose, material_type,
	department, end_user_id, end_user_name,
	requested_by_guard, requested_by_end_user, approval_type, approved_by_client,
	status, scheduled_entry, scheduled_exit, check_in_time, check_out_time,
	vehicle_image, material_image, gate_code, gate_code_expires_at,
	revision, created_at`

// PassRepository handles database operations for visitor/contractor passes
type PassRepository struct {
	db DB
}

// NewPassRepository creates a new PassRepository
func NewPassRepository(db DB) *PassRepository {
	return &PassRepository{db: db}
}

// Create inserts a new pass record
func (r *PassRepository) Create(pass *models.Pass) error {
	query := `
		INSERT INTO passes (
			id, client_id, kind, name, phone, purpose, material_type,
			department, end_user_id, end_user_name,
			requested_by_guard, requested_by_end_user, approval_type, approved_by_client,
			status, scheduled_entry, scheduled_exit,
			vehicle_image, material_image, gate_code, gate_code_expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
		RETURNING revision, created_at
	`

	if pass.ID == uuid.Nil {
		pass.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		pass.ID, pass.ClientID, pass.Kind, pass.Name, pass.Phone, pass.Purpose, pass.MaterialType,
		pass.Department, pass.EndUserID, pass.EndUserName,
		pass.RequestedByGuard, pass.RequestedByEndUser, pass.ApprovalType, pass.ApprovedByClient,
		pass.Status, pass.ScheduledEntry, pass.ScheduledExit,
		pass.VehicleImage, pass.MaterialImage, pass.GateCode, pass.GateCodeExpiresAt,
	).Scan(&pass.Revision, &pass.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create pass: %w", err)
	}

	return nil
}

// GetByID retrieves a pass by ID
func (r *PassRepository) GetByID(passID uuid.UUID) (*models.Pass, error) {
	query := `SELECT ` + passColumns + ` FROM passes WHERE id = $1`

	return r.scanPass(r.db.QueryRow(query, passID))
}

// GetClientQueue returns the client's pending approval queue: requests raised
// by end users, plus guard requests whose approval policy routes to the
// client (CLIENT_ONLY, BOTH, or no policy recorded).
func (r *PassRepository) GetClientQueue(clientID uuid.UUID) ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE client_id = $1
		  AND status = 'PENDING'
		  AND (
			requested_by_end_user = true
			OR (requested_by_guard = true AND approval_type IN ('CLIENT_ONLY', 'BOTH'))
		  )
		ORDER BY created_at DESC
	`

	return r.queryPasses(query, clientID)
}

// GetEndUserQueue returns the pending guard-originated requests routed to a
// department end user. Requests the end user raised themselves are excluded:
// submitting counts as their approval.
func (r *PassRepository) GetEndUserQueue(endUserID uuid.UUID) ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE end_user_id = $1
		  AND status = 'PENDING'
		  AND requested_by_end_user = false
		  AND approval_type IN ('END_USER_ONLY', 'BOTH')
		ORDER BY created_at DESC
	`

	return r.queryPasses(query, endUserID)
}

// GetByClientID retrieves all passes of a kind for a client, newest first
func (r *PassRepository) GetByClientID(clientID uuid.UUID, kind models.PassKind) ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE client_id = $1 AND kind = $2
		ORDER BY created_at DESC
	`

	return r.queryPasses(query, clientID, kind)
}

// GetByEndUserID retrieves all passes referencing an end user, newest first
func (r *PassRepository) GetByEndUserID(endUserID uuid.UUID) ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE end_user_id = $1
		ORDER BY created_at DESC
	`

	return r.queryPasses(query, endUserID)
}

// GetGuardLog returns the latest gate activity: guard-raised requests and
// anything that has physically checked in.
func (r *PassRepository) GetGuardLog(limit int) ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE requested_by_guard = true OR check_in_time IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $1
	`

	return r.queryPasses(query, limit)
}

// GetScheduled returns passes awaiting physical check-in at the gate
func (r *PassRepository) GetScheduled() ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE requested_by_guard = false AND status = 'SCHEDULED'
		ORDER BY scheduled_entry
	`

	return r.queryPasses(query)
}

// GetCheckedIn returns passes currently on site
func (r *PassRepository) GetCheckedIn() ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE status = 'CHECKED_IN'
		ORDER BY check_in_time DESC
	`

	return r.queryPasses(query)
}

// ApproveCheckIn transitions a PENDING pass straight to CHECKED_IN. Used for
// guard-originated requests where the visitor is already at the gate. The
// status predicate makes the transition atomic: a concurrent approval or
// denial leaves exactly one winner.
func (r *PassRepository) ApproveCheckIn(passID uuid.UUID, now, scheduledExit time.Time, byClient bool) (*models.Pass, error) {
	query := `
		UPDATE passes
		SET status = 'CHECKED_IN',
			scheduled_entry = $2,
			scheduled_exit = $3,
			check_in_time = $2,
			approved_by_client = $4,
			revision = revision + 1
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + passColumns

	return r.scanPass(r.db.QueryRow(query, passID, now, scheduledExit, byClient))
}

// ApproveSchedule transitions a PENDING pass to SCHEDULED and arms its gate
// code for the later physical check-in.
func (r *PassRepository) ApproveSchedule(passID uuid.UUID, byClient bool, gateCode string, gateCodeExpiresAt time.Time) (*models.Pass, error) {
	query := `
		UPDATE passes
		SET status = 'SCHEDULED',
			approved_by_client = $2,
			gate_code = $3,
			gate_code_expires_at = $4,
			revision = revision + 1
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + passColumns

	return r.scanPass(r.db.QueryRow(query, passID, byClient, gateCode, gateCodeExpiresAt))
}

// Deny transitions a PENDING pass to DENIED (terminal)
func (r *PassRepository) Deny(passID uuid.UUID) (*models.Pass, error) {
	query := `
		UPDATE passes
		SET status = 'DENIED',
			revision = revision + 1
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + passColumns

	return r.scanPass(r.db.QueryRow(query, passID))
}

// CheckIn stamps the physical gate entry. The predicate restricts the
// transition to statuses that have never checked in, so a duplicate
// submission loses the race instead of double-stamping check_in_time.
func (r *PassRepository) CheckIn(passID uuid.UUID, now time.Time, vehicleImage, materialImage models.NullString) (*models.Pass, error) {
	query := `
		UPDATE passes
		SET status = 'CHECKED_IN',
			check_in_time = $2,
			vehicle_image = COALESCE($3, vehicle_image),
			material_image = COALESCE($4, material_image),
			revision = revision + 1
		WHERE id = $1 AND status IN ('PENDING', 'SCHEDULED', 'APPROVED')
		RETURNING ` + passColumns

	return r.scanPass(r.db.QueryRow(query, passID, now, vehicleImage, materialImage))
}

// CheckOut transitions an on-site pass (CHECKED_IN or OVERSTAYED) to the
// terminal CHECKED_OUT status
func (r *PassRepository) CheckOut(passID uuid.UUID, now time.Time) (*models.Pass, error) {
	query := `
		UPDATE passes
		SET status = 'CHECKED_OUT',
			check_out_time = $2,
			revision = revision + 1
		WHERE id = $1 AND status IN ('CHECKED_IN', 'OVERSTAYED')
		RETURNING ` + passColumns

	return r.scanPass(r.db.QueryRow(query, passID, now))
}

// MarkOverstayed flips a CHECKED_IN pass to OVERSTAYED. Returns
// sql.ErrNoRows when a concurrent sweep or checkout got there first.
func (r *PassRepository) MarkOverstayed(passID uuid.UUID) error {
	query := `
		UPDATE passes
		SET status = 'OVERSTAYED',
			revision = revision + 1
		WHERE id = $1 AND status = 'CHECKED_IN'
	`

	result, err := r.db.Exec(query, passID)
	if err != nil {
		return fmt.Errorf("failed to mark pass overstayed: %w", err)
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

// FindOverstayed returns passes still on site past their scheduled exit
func (r *PassRepository) FindOverstayed(now time.Time) ([]models.Pass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE status = 'CHECKED_IN'
		  AND scheduled_exit IS NOT NULL
		  AND scheduled_exit < $1
		ORDER BY scheduled_exit
	`

	return r.queryPasses(query, now)
}

// queryPasses runs a multi-row pass query
func (r *PassRepository) queryPasses(query string, args ...interface{}) ([]models.Pass, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := []models.Pass{}
	for rows.Next() {
		pass, err := r.scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, *pass)
	}

	return passes, rows.Err()
}

// scanPass scans a single pass row
func (r *PassRepository) scanPass(row scanner) (*models.Pass, error) {
	pass := &models.Pass{}

	err := row.Scan(
		&pass.ID, &pass.ClientID, &pass.Kind, &pass.Name, &pass.Phone,
		&pass.Purpose, &pass.MaterialType,
		&pass.Department, &pass.EndUserID, &pass.EndUserName,
		&pass.RequestedByGuard, &pass.RequestedByEndUser, &pass.ApprovalType, &pass.ApprovedByClient,
		&pass.Status, &pass.ScheduledEntry, &pass.ScheduledExit,
		&pass.CheckInTime, &pass.CheckOutTime,
		&pass.VehicleImage, &pass.MaterialImage,
		&pass.GateCode, &pass.GateCodeExpiresAt,
		&pass.Revision, &pass.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return pass, nil
}
