package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/config"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/services"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/utils"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/validator"
)

// GuardHandler handles the gate station surface: walk-in request logging,
// the guard log, and OTP/QR validation at the gate.
type GuardHandler struct {
	passService    *services.PassService
	gateService    *services.GateService
	auditService   *services.AuditService
	phoneValidator *validator.PhoneValidator
	config         *config.Config
}

// NewGuardHandler creates a new guard handler
func NewGuardHandler(
	passService *services.PassService,
	gateService *services.GateService,
	auditService *services.AuditService,
	phoneValidator *validator.PhoneValidator,
	cfg *config.Config,
) *GuardHandler {
	return &GuardHandler{
		passService:    passService,
		gateService:    gateService,
		auditService:   auditService,
		phoneValidator: phoneValidator,
		config:         cfg,
	}
}

// CreateRequest handles POST /api/v1/gate/requests. The guard logs a
// walk-in visitor; the request is routed for approval based on the
// department delegate's approval type.
func (h *GuardHandler) CreateRequest(c *gin.Context) {
	var req models.GuardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	if req.Phone != "" {
		phone, err := h.phoneValidator.Validate(req.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid phone number"})
			return
		}
		req.Phone = phone
	}

	pass, err := h.passService.CreateGuardRequest(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pass": pass})
}

// GetLogs handles GET /api/v1/gate/logs
func (h *GuardHandler) GetLogs(c *gin.Context) {
	passes, err := h.passService.GuardLog(h.config.Gate.GuardLogLimit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": passes})
}

// GetScheduled handles GET /api/v1/gate/scheduled
func (h *GuardHandler) GetScheduled(c *gin.Context) {
	passes, err := h.passService.ScheduledPasses()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"passes": passes})
}

// GetCheckedIn handles GET /api/v1/gate/checked-in
func (h *GuardHandler) GetCheckedIn(c *gin.Context) {
	passes, err := h.passService.CheckedInPasses()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"passes": passes})
}

// CheckInByOTP handles POST /api/v1/gate/check-in
func (h *GuardHandler) CheckInByOTP(c *gin.Context) {
	var req models.GateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	passID, err := uuid.Parse(req.PassID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid pass id"})
		return
	}

	meta := services.GateMetadata{
		VehicleImage:  req.VehicleImage,
		MaterialImage: req.MaterialImage,
	}

	pass, err := h.gateService.CheckInByOTP(passID, req.Code, meta)
	h.logGateEvent(c, passID, "gate_check_in", "otp", err)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

// CheckInByQR handles POST /api/v1/gate/check-in/qr
func (h *GuardHandler) CheckInByQR(c *gin.Context) {
	var req models.QrCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	passID, err := uuid.Parse(req.PassID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid pass id"})
		return
	}

	meta := services.GateMetadata{
		VehicleImage:  req.VehicleImage,
		MaterialImage: req.MaterialImage,
	}

	pass, err := h.gateService.CheckInByQR(passID, meta)
	h.logGateEvent(c, passID, "gate_check_in", "qr", err)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

// CheckOut handles POST /api/v1/gate/check-out
func (h *GuardHandler) CheckOut(c *gin.Context) {
	var req models.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body"})
		return
	}

	passID, err := uuid.Parse(req.PassID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid pass id"})
		return
	}

	pass, err := h.gateService.CheckOut(passID)
	h.logGateEvent(c, passID, "gate_check_out", "checkout", err)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pass": pass})
}

func (h *GuardHandler) logGateEvent(c *gin.Context, passID uuid.UUID, action, method string, gateErr error) {
	if !h.config.Security.EnableAuditLog {
		return
	}

	reason := ""
	if gateErr != nil {
		reason = gateErr.Error()
	}

	_ = h.auditService.LogGateEvent(passID, action, method, utils.GetRealIP(c), c.Request.UserAgent(), gateErr == nil, reason)
}
