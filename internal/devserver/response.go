package devserver

import "github.com/gin-gonic/gin"

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	ErrInvalidOTP     ErrCode = "INVALID_OTP"
	ErrOTPNotFound    ErrCode = "OTP_NOT_REQUESTED"
	ErrTokenRequired  ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid   ErrCode = "TOKEN_INVALID"
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrAlreadyApplied ErrCode = "ALREADY_APPLIED"
	ErrInternal       ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidOTP:
		return "The one-time code is incorrect or expired."
	case ErrOTPNotFound:
		return "No code was requested for this phone number."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrNotFound:
		return "Resource not found."
	case ErrAlreadyApplied:
		return "You have already applied for this job."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

// errorBody is the structured error payload inside the envelope.
type errorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respond sends the {success,data} envelope the mobile client expects.
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondPage sends a paginated item list inside the data envelope.
func respondPage(c *gin.Context, status int, items interface{}, total int) {
	c.JSON(status, gin.H{"success": true, "data": gin.H{"items": items, "total": total}})
}

// fail sends an error envelope.
func fail(c *gin.Context, status int, code ErrCode) {
	c.JSON(status, gin.H{"success": false, "error": errorBody{Code: code, Message: GetMessage(code)}})
}

// failWithFields sends an error envelope with field-level validation details.
func failWithFields(c *gin.Context, status int, code ErrCode, fields map[string]string) {
	c.JSON(status, gin.H{"success": false, "error": errorBody{Code: code, Message: GetMessage(code), Fields: fields}})
}

// abortFail aborts the middleware chain and sends an error envelope.
func abortFail(c *gin.Context, status int, code ErrCode) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": errorBody{Code: code, Message: GetMessage(code)}})
}
