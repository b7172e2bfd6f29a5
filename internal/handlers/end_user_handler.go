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

// EndUserHandler handles the end-user dashboard: the department approval
// queue, visit scheduling, record listings, and alerts.
type EndUserHandler struct {
	passService  *services.PassService
	alertService *services.AlertService
	auditService *services.AuditService
}

// NewEndUserHandler creates a new end-user handler
func NewEndUserHandler(
	passService *services.PassService,
	alertService *services.AlertService,
	auditService *services.AuditService,
) *EndUserHandler {
	return &EndUserHandler{
		passService:  passService,
		alertService: alertService,
		auditService: auditService,
	}
}

// GetPendingRequests handles GET /api/v1/end-user/requests
func (h *EndUserHandler) GetPendingRequests(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	passes, err := h.passService.EndUserQueue(claims.SubjectID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": passes})
}

// ApproveRequest handles POST /api/v1/end-user/requests/:id/approve.
// Approval by a department delegate records approved_by_client = false.
func (h *EndUserHandler) ApproveRequest(c *gin.Context) {
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

	pass, err := h.passService.Approve(passID, false, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	_ = h.auditService.LogDecision(claims.SubjectID, "end_user", passID, true, utils.GetRealIP(c), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

// DenyRequest handles POST /api/v1/end-user/requests/:id/deny
func (h *EndUserHandler) DenyRequest(c *gin.Context) {
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

	_ = h.auditService.LogDecision(claims.SubjectID, "end_user", passID, false, utils.GetRealIP(c), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

// AddVisitor handles POST /api/v1/end-user/visitors. Requires the
// can_add_visitor permission; the request still needs client sign-off.
func (h *EndUserHandler) AddVisitor(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	var req models.EndUserVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	pass, err := h.passService.CreateEndUserVisit(claims.SubjectID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pass": pass})
}

// GetRecords handles GET /api/v1/end-user/records
func (h *EndUserHandler) GetRecords(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	passes, err := h.passService.EndUserRecords(claims.SubjectID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": passes})
}

// GetAlerts handles GET /api/v1/end-user/alerts
func (h *EndUserHandler) GetAlerts(c *gin.Context) {
	claims, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Missing session"})
		return
	}

	alerts, err := h.alertService.ListEndUserAlerts(claims.SubjectID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
