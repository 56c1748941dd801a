package auth

import (
	"errors"
	"strings"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/google/uuid"
)

// TokenLength is the length of every session token.
const TokenLength = 32

// TokenAttempts bounds how many fresh tokens a write tries before giving up
// on a collision.
const TokenAttempts = 3

// NewToken returns 32 lowercase hex characters from a random UUIDv4.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TokenCollision reports whether err is a unique violation on the token.
func TokenCollision(err error) bool {
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeConflict {
		return false
	}
	_, ok := derr.Fields["token"]
	return ok
}
