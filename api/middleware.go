package api

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// Authenticate resolves the Authorization header, raw or "Bearer <token>",
// into a Principal. A missing or unknown token leaves the caller anonymous;
// each command decides whether that is enough.
func Authenticate(auth Authenticator, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Set(principalKey, domain.Anonymous())
			c.Next()
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil && !errors.Is(err, domain.ErrUnauthenticated) {
			respondError(c, log, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// principal returns the caller set by Authenticate, or an anonymous one.
func principal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Anonymous()
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
