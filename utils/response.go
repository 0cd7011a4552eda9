package utils

import (
	"philabid/internal/biddingerrors"

	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	JSONErrorWithData(c, status, err, message, nil)
}

// JSONErrorWithData sends an error response that still carries a payload,
// such as the audit record of a rejected bid.
func JSONErrorWithData(c *gin.Context, status int, err error, message string, data any) {
	body := gin.H{
		"status":    status,
		"message":   message,
		"error":     err.Error(),
		"retryable": biddingerrors.IsRetryable(err),
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}
