package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/config"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/services"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/utils"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/jwt"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/validator"
)

// AuthHandler handles sign-up, sign-in, and guard session issuance
type AuthHandler struct {
	accountService *services.AccountService
	auditService   *services.AuditService
	jwtService     *jwt.Service
	phoneValidator *validator.PhoneValidator
	config         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	accountService *services.AccountService,
	auditService *services.AuditService,
	jwtService *jwt.Service,
	phoneValidator *validator.PhoneValidator,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		auditService:   auditService,
		jwtService:     jwtService,
		phoneValidator: phoneValidator,
		config:         cfg,
	}
}

// SessionResponse represents a successful authentication
type SessionResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Role    jwt.Role    `json:"role"`
	Account interface{} `json:"account,omitempty"`
}

// GuardSessionRequest represents a guard kiosk exchanging its station key
// for a session token
type GuardSessionRequest struct {
	StationKey string `json:"station_key" binding:"required"`
	StationID  string `json:"station_id"`
}

// SignUpClient handles POST /api/v1/auth/client/sign-up
func (h *AuthHandler) SignUpClient(c *gin.Context) {
	var req models.ClientSignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	phone, err := h.phoneValidator.Validate(req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
		})
		return
	}
	req.Phone = phone

	client, err := h.accountService.SignUpClient(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	token, err := h.jwtService.GenerateSessionToken(client.ID, client.ID, jwt.RoleClient, client.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		Message: "Client registered",
		Token:   token,
		Role:    jwt.RoleClient,
		Account: client,
	})
}

// SignInClient handles POST /api/v1/auth/client/sign-in
func (h *AuthHandler) SignInClient(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	client, err := h.accountService.SignInClient(req.Email, req.Password)
	if err != nil {
		h.logSignIn(c, nil, "client", req.Email, false)
		writeServiceError(c, err)
		return
	}

	token, err := h.jwtService.GenerateSessionToken(client.ID, client.ID, jwt.RoleClient, client.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.logSignIn(c, &client.ID, "client", req.Email, true)

	c.JSON(http.StatusOK, SessionResponse{
		Message: "Signed in",
		Token:   token,
		Role:    jwt.RoleClient,
		Account: client,
	})
}

// SignInEndUser handles POST /api/v1/auth/end-user/sign-in
func (h *AuthHandler) SignInEndUser(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	endUser, err := h.accountService.SignInEndUser(req.Email, req.Password)
	if err != nil {
		h.logSignIn(c, nil, "end_user", req.Email, false)
		writeServiceError(c, err)
		return
	}

	token, err := h.jwtService.GenerateSessionToken(endUser.ID, endUser.ClientID, jwt.RoleEndUser, endUser.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.logSignIn(c, &endUser.ID, "end_user", req.Email, true)

	c.JSON(http.StatusOK, SessionResponse{
		Message: "Signed in",
		Token:   token,
		Role:    jwt.RoleEndUser,
		Account: endUser,
	})
}

// GuardSession handles POST /api/v1/auth/guard/session. Guard kiosks
// authenticate with a shared station key rather than per-guard accounts.
func (h *AuthHandler) GuardSession(c *gin.Context) {
	var req GuardSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if req.StationKey != h.config.Gate.StationKey {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credential",
			Message: "Invalid station key",
		})
		return
	}

	stationName := req.StationID
	if stationName == "" {
		stationName = "gate"
	}

	clientID := uuid.Nil
	if h.config.Tenant.DefaultClientID != "" {
		if parsed, err := uuid.Parse(h.config.Tenant.DefaultClientID); err == nil {
			clientID = parsed
		}
	}

	token, err := h.jwtService.GenerateSessionToken(uuid.New(), clientID, jwt.RoleGuard, stationName)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Message: "Station session issued",
		Token:   token,
		Role:    jwt.RoleGuard,
	})
}

// logSignIn writes a best-effort audit record for a sign-in attempt
func (h *AuthHandler) logSignIn(c *gin.Context, actorID *uuid.UUID, role, email string, success bool) {
	if !h.config.Security.EnableAuditLog {
		return
	}

	_ = h.auditService.LogSignIn(actorID, role, email, utils.GetRealIP(c), c.Request.UserAgent(), success)
}
