package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps a domain error code to its HTTP status.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidationFailed:
		return http.StatusBadRequest
	case domain.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Field errors go under "errors"; every
// other domain error is a single "error" message. Faults are logged and
// never echoed.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	status := statusFor(derr.Code)
	if len(derr.Fields) > 0 {
		c.AbortWithStatusJSON(status, gin.H{"errors": derr.Fields})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": derr.Message})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
