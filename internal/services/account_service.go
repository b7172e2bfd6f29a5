package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles client sign-up, client and end-user sign-in, and
// end-user administration by the owning client.
type AccountService struct {
	clients  *database.ClientRepository
	endUsers *database.EndUserRepository

	bcryptCost int
}

// NewAccountService creates a new account service
func NewAccountService(clients *database.ClientRepository, endUsers *database.EndUserRepository, bcryptCost int) *AccountService {
	return &AccountService{
		clients:    clients,
		endUsers:   endUsers,
		bcryptCost: bcryptCost,
	}
}

// SignUpClient registers a new client organization. Clients always carry the
// ADMIN department marker.
func (s *AccountService) SignUpClient(req *models.ClientSignUpRequest) (*models.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	client := &models.Client{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Department:   "ADMIN",
	}

	if err := s.clients.Create(client); err != nil {
		return nil, err
	}

	return client, nil
}

// SignInClient authenticates a client by email and password
func (s *AccountService) SignInClient(email, password string) (*models.Client, error) {
	client, err := s.clients.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	return client, nil
}

// SignInEndUser authenticates an end user by email and password
func (s *AccountService) SignInEndUser(email, password string) (*models.EndUser, error) {
	endUser, err := s.endUsers.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(endUser.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	return endUser, nil
}

// CreateEndUser registers a departmental approver delegate under a client
func (s *AccountService) CreateEndUser(clientID uuid.UUID, req *models.CreateEndUserRequest) (*models.EndUser, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	endUser := &models.EndUser{
		ClientID:      clientID,
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Department:    req.Department,
		Post:          req.Post,
		ApprovalType:  req.ApprovalType,
		CanAddVisitor: req.CanAddVisitor,
	}

	if err := s.endUsers.Create(endUser); err != nil {
		return nil, err
	}

	return endUser, nil
}

// ListEndUsers returns the end users belonging to a client
func (s *AccountService) ListEndUsers(clientID uuid.UUID) ([]models.EndUser, error) {
	return s.endUsers.GetByClientID(clientID)
}

// UpdateEndUserCredentials changes an end user's email and/or password.
// Only the owning client may call this.
func (s *AccountService) UpdateEndUserCredentials(clientID, endUserID uuid.UUID, req *models.UpdateEndUserCredentialsRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	endUser, err := s.endUsers.GetByID(endUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEndUserNotFound
		}
		return err
	}

	if endUser.ClientID != clientID {
		return ErrEndUserNotFound
	}

	passwordHash := ""
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hash)
	}

	if err := s.endUsers.UpdateCredentials(endUserID, req.Email, passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEndUserNotFound
		}
		return err
	}

	return nil
}

// DeleteEndUser removes an end user owned by the client
func (s *AccountService) DeleteEndUser(clientID, endUserID uuid.UUID) error {
	endUser, err := s.endUsers.GetByID(endUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEndUserNotFound
		}
		return err
	}

	if endUser.ClientID != clientID {
		return ErrEndUserNotFound
	}

	if err := s.endUsers.Delete(endUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEndUserNotFound
		}
		return err
	}

	return nil
}
