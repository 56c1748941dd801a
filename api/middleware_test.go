package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func whoAmI(c *gin.Context) {
	p := principal(c)
	c.JSON(http.StatusOK, gin.H{"id": p.ID, "admin": p.IsAdmin()})
}

func newAuthEngine(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", Authenticate(auth, logging.Discard()), whoAmI)
	return engine
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		token      string
		principal  domain.Principal
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no header is anonymous",
			wantStatus: http.StatusOK,
			wantBody:   `{"id":0,"admin":false}`,
		},
		{
			name:       "raw token",
			header:     "abc",
			token:      "abc",
			principal:  testUser,
			wantStatus: http.StatusOK,
			wantBody:   `{"id":2,"admin":false}`,
		},
		{
			name:       "bearer token",
			header:     "Bearer xyz",
			token:      "xyz",
			principal:  testAdmin,
			wantStatus: http.StatusOK,
			wantBody:   `{"id":1,"admin":true}`,
		},
		{
			name:       "unknown token is anonymous",
			header:     "stale",
			token:      "stale",
			err:        domain.ErrUnauthenticated,
			wantStatus: http.StatusOK,
			wantBody:   `{"id":0,"admin":false}`,
		},
		{
			name:       "store failure",
			header:     "abc",
			token:      "abc",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &MockSessionUseCase{}
			if tt.token != "" {
				auth.On("Authenticate", mock.Anything, tt.token).Return(tt.principal, tt.err)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newAuthEngine(auth).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			auth.AssertExpectations(t)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Equal(t, "", bearerToken("  "))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.CodeUnauthenticated))
	assert.Equal(t, http.StatusForbidden, statusFor(domain.CodeForbidden))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.CodeNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.CodeValidationFailed))
	assert.Equal(t, http.StatusConflict, statusFor(domain.CodeConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.Code("OTHER")))
}
