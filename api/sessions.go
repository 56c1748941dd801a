package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/internal/service/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SessionHandler struct {
	service session.SessionUseCase
	log     logrus.FieldLogger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func NewSessionHandler(service session.SessionUseCase, log logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{service: service, log: log}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.login)
	router.DELETE("", h.logout)
}

func (h *SessionHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Token: u.Token, User: toUserResponse(*u)})
}

func (h *SessionHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), principal(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
