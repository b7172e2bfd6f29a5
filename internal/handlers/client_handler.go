package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/middleware"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/services"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/utils"
)

// ClientHandler handles the client dashboard: the approval queue, direct
// visitor/contractor scheduling, record listings, end-user administration,
// and alerts.
type ClientHandler struct {
	passService    *services.PassService
	alertService   *services.AlertService
	accountService *services.AccountService
	auditService   *services.AuditService
}

// NewClientHandler creates a new client handler
func NewClientHandler(
	passService *services.PassService,
	alertService *services.AlertService,
	accountService *services.AccountService,
	auditService *services.AuditService,
) *ClientHandler {
	return &ClientHandler{
		passService:    passService,
		alertService:   alertService,
		accountService: accountService,
		auditService:   auditService,
	}
}

// GetPendingRequests handles GET /api/v1/client/requests
func (h *ClientHandler) GetPendingRequests(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	passes, err := h.passService.ClientQueue(claims.ClientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": passes})
}

// ApproveRequest handles POST /api/v1/client/requests/:id/approve
func (h *ClientHandler) ApproveRequest(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	passID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid pass id"})
		return
	}

	var req models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	pass, err := h.passService.Approve(passID, true, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	_ = h.auditService.LogDecision(claims.SubjectID, "client", passID, true, utils.GetRealIP(c), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

// DenyRequest handles POST /api/v1/client/requests/:id/deny
func (h *ClientHandler) DenyRequest(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	passID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid pass id"})
		return
	}

	pass, err := h.passService.Deny(passID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	_ = h.auditService.LogDecision(claims.SubjectID, "client", passID, false, utils.GetRealIP(c), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

// AddVisitor handles POST /api/v1/client/visitors
func (h *ClientHandler) AddVisitor(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	var req models.ClientVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	pass, err := h.passService.CreateClientVisitor(claims.ClientID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pass": pass})
}

// AddContractor handles POST /api/v1/client/contractors
func (h *ClientHandler) AddContractor(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	var req models.ClientContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	pass, err := h.passService.CreateClientContractor(claims.ClientID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pass": pass})
}

// GetVisitorRecords handles GET /api/v1/client/records
func (h *ClientHandler) GetVisitorRecords(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	passes, err := h.passService.ClientRecords(claims.ClientID, models.PassKindVisitor)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": passes})
}

// GetContractorRecords handles GET /api/v1/client/contractor-records
func (h *ClientHandler) GetContractorRecords(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	passes, err := h.passService.ClientRecords(claims.ClientID, models.PassKindContractor)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": passes})
}

// CreateEndUser handles POST /api/v1/client/end-users
func (h *ClientHandler) CreateEndUser(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	var req models.CreateEndUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	endUser, err := h.accountService.CreateEndUser(claims.ClientID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"end_user": endUser})
}

// GetEndUsers handles GET /api/v1/client/end-users
func (h *ClientHandler) GetEndUsers(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	endUsers, err := h.accountService.ListEndUsers(claims.ClientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"end_users": endUsers})
}

// UpdateEndUserCredentials handles PUT /api/v1/client/end-users/:id/credentials
func (h *ClientHandler) UpdateEndUserCredentials(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	endUserID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid end user id"})
		return
	}

	var req models.UpdateEndUserCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	if err := h.accountService.UpdateEndUserCredentials(claims.ClientID, endUserID, &req); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Credentials updated"})
}

// DeleteEndUser handles DELETE /api/v1/client/end-users/:id
func (h *ClientHandler) DeleteEndUser(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	endUserID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid end user id"})
		return
	}

	if err := h.accountService.DeleteEndUser(claims.ClientID, endUserID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "End user removed"})
}

// GetAlerts handles GET /api/v1/client/alerts. Fetching runs the overstay
// sweep first, so stale check-ins surface as TIMEOUT alerts in the response.
func (h *ClientHandler) GetAlerts(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	alerts, err := h.alertService.ListClientAlerts(claims.ClientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// DismissAlert handles DELETE /api/v1/client/alerts/:id
func (h *ClientHandler) DismissAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid alert id"})
		return
	}

	if err := h.alertService.Dismiss(alertID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert dismissed"})
}
