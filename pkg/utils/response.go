package utils

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// Response is the envelope of every JSON API reply. RequestID echoes X-Request-ID
// so a client can quote it when reporting a failed build.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *AppError   `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// Meta describes a limited listing
type Meta struct {
	Limit int   `json:"limit,omitempty"`
	Total int64 `json:"total,omitempty"`
}

func respond(c *gin.Context, statusCode int, resp Response, abort bool) {
	resp.RequestID = c.GetString(RequestIDKey)
	if abort {
		c.AbortWithStatusJSON(statusCode, resp)
		return
	}
	c.JSON(statusCode, resp)
}

func SendSuccess(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, Response{Success: true, Data: data}, false)
}

func SendSuccessWithMeta(c *gin.Context, data interface{}, meta *Meta) {
	respond(c, http.StatusOK, Response{Success: true, Data: data, Meta: meta}, false)
}

func SendError(c *gin.Context, statusCode int, err *AppError) {
	respond(c, statusCode, Response{Error: err}, false)
}

// AbortWithError writes the error envelope and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, err *AppError) {
	respond(c, statusCode, Response{Error: err}, true)
}

func SendValidationError(c *gin.Context, message string, details string) {
	SendError(c, http.StatusBadRequest, NewAppError(ErrCodeValidation, message, details))
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, NewAppError(ErrCodeNotFound, message))
}

func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, NewAppError(ErrCodeInternal, message))
}

func SendUnavailable(c *gin.Context, message string) {
	SendError(c, http.StatusServiceUnavailable, NewAppError(ErrCodeUnavailable, message))
}

// AbortPayloadTooLarge rejects a body over maxBytes; maxBytes <= 0 omits the limit from the details
func AbortPayloadTooLarge(c *gin.Context, maxBytes int64) {
	err := NewAppError(ErrCodePayloadTooLarge, "Request body too large")
	if maxBytes > 0 {
		err.Details = fmt.Sprintf("limit is %d bytes", maxBytes)
	}
	AbortWithError(c, http.StatusRequestEntityTooLarge, err)
}

// AbortRateLimited rejects the request with 429 and a whole-second Retry-After
func AbortRateLimited(c *gin.Context, wait time.Duration) {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", fmt.Sprintf("%d", seconds))
	AbortWithError(c, http.StatusTooManyRequests,
		NewAppError(ErrCodeRateLimited, "Too many requests", fmt.Sprintf("retry in %ds", seconds)))
}
