package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
)

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers
type scanner interface {
	Scan(dest ...interface{}) error
}

// ClientRepository handles database operations for the clients table
type ClientRepository struct {
	db DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create creates a new client account
func (r *ClientRepository) Create(client *models.Client) error {
	query := `
		INSERT INTO clients (id, name, email, password_hash, phone, department)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		client.ID, client.Name, client.Email, client.PasswordHash,
		client.Phone, client.Department,
	).Scan(&client.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(clientID uuid.UUID) (*models.Client, error) {
	query := `
		SELECT id, name, email, password_hash, phone, department, created_at
		FROM clients
		WHERE id = $1
	`

	return r.scanClient(r.db.QueryRow(query, clientID))
}

// GetByEmail retrieves a client by email address
func (r *ClientRepository) GetByEmail(email string) (*models.Client, error) {
	query := `
		SELECT id, name, email, password_hash, phone, department, created_at
		FROM clients
		WHERE email = $1
	`

	return r.scanClient(r.db.QueryRow(query, email))
}

// scanClient scans a single client row
func (r *ClientRepository) scanClient(row scanner) (*models.Client, error) {
	client := &models.Client{}

	err := row.Scan(
		&client.ID, &client.Name, &client.Email, &client.PasswordHash,
		&client.Phone, &client.Department, &client.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	return client, nil
}
