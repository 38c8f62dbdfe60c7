package handlers

import (
	"net/http"
	"strings"

	"buspass/internal/domain/models"
	"buspass/internal/http/middleware"
	"buspass/internal/repositories"
	"buspass/internal/services"

	"github.com/gin-gonic/gin"
)

type verifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}

func (h Handler) passService(c *gin.Context) services.PassService {
	return services.PassService{
		Applications: repositories.PassApplicationRepository{DB: h.DB},
		Routes:       repositories.RouteRepository{DB: h.DB},
		Users:        repositories.UserRepository{DB: h.DB},
		OTP:          h.OTP,
		OTPTTL:       h.OTPTTL,
		Events:       h.publisher(),
		Now:          h.clock(),
		RequestID:    middleware.GetRequestID(c),
	}
}

// POST /api/passes/applications
func (h Handler) ApplyPass(c *gin.Context) {
	var in models.PassApplicationInput
	if !BindJSONOrError(c, &in) {
		return
	}
	app, err := h.passService(c).Apply(c.Request.Context(), caller(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, "Application submitted. OTP sent to your mobile number", app)
}

// POST /api/passes/applications/:id/otp
func (h Handler) SendPassOTP(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.passService(c).IssueOTP(c.Request.Context(), caller(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "OTP sent successfully", nil)
}

// POST /api/passes/applications/:id/verify
func (h Handler) VerifyPassOTP(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req verifyOTPRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	app, err := h.passService(c).VerifyOTP(c.Request.Context(), caller(c), id, strings.TrimSpace(req.OTP))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Mobile number verified successfully", app)
}

// PUT /api/passes/applications/:id/cancel
func (h Handler) CancelPass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.passService(c).Cancel(c.Request.Context(), caller(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Application cancelled successfully", nil)
}

// GET /api/passes/applications/me
func (h Handler) MyPassApplications(c *gin.Context) {
	apps, err := h.passService(c).ListMine(c.Request.Context(), caller(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Applications retrieved successfully", apps)
}

// GET /api/passes/applications/:id
func (h Handler) GetPassApplication(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	app, err := h.passService(c).Get(c.Request.Context(), caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Application retrieved successfully", app)
}

// GET /api/passes/verify/:code
func (h Handler) CheckPass(c *gin.Context) {
	check, err := h.passService(c).CheckPass(c.Request.Context(), strings.TrimSpace(c.Param("code")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Pass is valid", check)
}

// GET /api/admin/passes/applications?status=
func (h Handler) AdminListPassApplications(c *gin.Context) {
	apps, err := h.passService(c).ListAll(c.Request.Context(), strings.TrimSpace(c.Query("status")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Applications retrieved successfully", apps)
}

// PUT /api/admin/passes/applications/:id/status
func (h Handler) AdminUpdatePassStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.PassStatusUpdate
	if !BindJSONOrError(c, &in) {
		return
	}
	app, err := h.passService(c).UpdateStatus(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, "Application status updated successfully", app)
}
