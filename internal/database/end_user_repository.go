package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
)

// EndUserRepository handles database operations for the end_users table
type EndUserRepository struct {
	db DB
}

// NewEndUserRepository creates a new EndUserRepository
func NewEndUserRepository(db DB) *EndUserRepository {
	return &EndUserRepository{db: db}
}

// Create creates a new end user under a client
func (r *EndUserRepository) Create(endUser *models.EndUser) error {
	query := `
		INSERT INTO end_users (
			id, client_id, name, email, password_hash,
			department, post, approval_type, can_add_visitor
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	if endUser.ID == uuid.Nil {
		endUser.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		endUser.ID, endUser.ClientID, endUser.Name, endUser.Email, endUser.PasswordHash,
		endUser.Department, endUser.Post, endUser.ApprovalType, endUser.CanAddVisitor,
	).Scan(&endUser.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create end user: %w", err)
	}

	return nil
}

// GetByID retrieves an end user by ID
func (r *EndUserRepository) GetByID(endUserID uuid.UUID) (*models.EndUser, error) {
	query := `
		SELECT id, client_id, name, email, password_hash,
			   department, post, approval_type, can_add_visitor, created_at
		FROM end_users
		WHERE id = $1
	`

	return r.scanEndUser(r.db.QueryRow(query, endUserID))
}

// GetByEmail retrieves an end user by email address
func (r *EndUserRepository) GetByEmail(email string) (*models.EndUser, error) {
	query := `
		SELECT id, client_id, name, email, password_hash,
			   department, post, approval_type, can_add_visitor, created_at
		FROM end_users
		WHERE email = $1
	`

	return r.scanEndUser(r.db.QueryRow(query, email))
}

// FindByDepartment retrieves the approver delegate for a (client, department)
// pair. Returns sql.ErrNoRows when the department has no end user.
func (r *EndUserRepository) FindByDepartment(clientID uuid.UUID, department string) (*models.EndUser, error) {
	query := `
		SELECT id, client_id, name, email, password_hash,
			   department, post, approval_type, can_add_visitor, created_at
		FROM end_users
		WHERE client_id = $1 AND department = $2
		ORDER BY created_at
		LIMIT 1
	`

	return r.scanEndUser(r.db.QueryRow(query, clientID, department))
}

// GetByClientID retrieves all end users belonging to a client
func (r *EndUserRepository) GetByClientID(clientID uuid.UUID) ([]models.EndUser, error) {
	query := `
		SELECT id, client_id, name, email, password_hash,
			   department, post, approval_type, can_add_visitor, created_at
		FROM end_users
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	endUsers := []models.EndUser{}
	for rows.Next() {
		endUser, err := r.scanEndUser(rows)
		if err != nil {
			return nil, err
		}
		endUsers = append(endUsers, *endUser)
	}

	return endUsers, rows.Err()
}

// UpdateCredentials updates an end user's email and/or password hash.
// Empty values leave the corresponding column unchanged.
func (r *EndUserRepository) UpdateCredentials(endUserID uuid.UUID, email, passwordHash string) error {
	query := `
		UPDATE end_users
		SET email = COALESCE(NULLIF($2, ''), email),
			password_hash = COALESCE(NULLIF($3, ''), password_hash)
		WHERE id = $1
	`

	result, err := r.db.Exec(query, endUserID, email, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update end user credentials: %w", err)
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

// Delete removes an end user. Existing passes keep their denormalized
// end_user_name snapshot.
func (r *EndUserRepository) Delete(endUserID uuid.UUID) error {
	query := `DELETE FROM end_users WHERE id = $1`

	result, err := r.db.Exec(query, endUserID)
	if err != nil {
		return fmt.Errorf("failed to delete end user: %w", err)
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

// scanEndUser scans a single end user row
func (r *EndUserRepository) scanEndUser(row scanner) (*models.EndUser, error) {
	endUser := &models.EndUser{}

	err := row.Scan(
		&endUser.ID, &endUser.ClientID, &endUser.Name, &endUser.Email, &endUser.PasswordHash,
		&endUser.Department, &endUser.Post, &endUser.ApprovalType, &endUser.CanAddVisitor,
		&endUser.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return endUser, nil
}
