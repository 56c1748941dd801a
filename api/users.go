package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	service users.UserUseCase
	log     logrus.FieldLogger
}

type userRequest struct {
	Email                *string `json:"email"`
	FirstName            *string `json:"first_name"`
	LastName             *string `json:"last_name"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
	Role                 *string `json:"role"`
}

// input parses the role; an unknown role is a field error.
func (r userRequest) input() (users.UserInput, error) {
	in := users.UserInput{
		Email:                r.Email,
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
	}
	if r.Role != nil {
		role, err := domain.ParseRole(*r.Role)
		if err != nil {
			return in, domain.Invalid(domain.FieldErrors{"role": {"is not included in the list"}})
		}
		in.Role = &role
	}
	return in, nil
}

type passwordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

func NewUserHandler(service users.UserUseCase, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{service: service, log: log}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.create)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.PATCH("/:id/password", h.changePassword)
}

func (h *UserHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	u, err := h.service.GetByID(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}

// create is sign-up. The new user's token is returned once so the client
// is logged in straight away.
func (h *UserHandler) create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	u, err := h.service.CreateUser(c.Request.Context(), principal(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Token: u.Token, User: toUserResponse(*u)})
}

func (h *UserHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	u, err := h.service.UpdateUser(c.Request.Context(), principal(c), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}

func (h *UserHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) changePassword(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), principal(c), id, req.Password, req.PasswordConfirmation); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
