package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"buspass/internal/domain"
	"buspass/internal/events"
	"buspass/internal/http/middleware"
	"buspass/internal/otp"

	"github.com/gin-gonic/gin"
)

// Handler carries the shared dependencies; services are built per request.
type Handler struct {
	DB            *sql.DB
	Secret        []byte
	OTP           otp.Store
	OTPTTL        time.Duration
	SearchTimeout time.Duration
	Events        events.Publisher
	Now           func() time.Time
}

// RespondOK sends the standard success envelope.
func RespondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// RespondPage sends the success envelope with pagination metadata.
func RespondPage(c *gin.Context, message string, data any, page domain.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    message,
		"data":       data,
		"pagination": page,
	})
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"success":    false,
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "Request body is required", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request payload", err)
		return false
	}
	return true
}

// paramID parses a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return n
}

func queryID(c *gin.Context, name string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// caller returns the authenticated user; routes using it sit behind RequireAuth.
func caller(c *gin.Context) domain.RequestContext {
	rc, _ := middleware.GetRequestContext(c)
	return rc
}

func (h Handler) clock() func() time.Time {
	if h.Now != nil {
		return h.Now
	}
	return time.Now
}

func (h Handler) publisher() events.Publisher {
	if h.Events != nil {
		return h.Events
	}
	return events.Nop{}
}
