package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/internal/service/companies"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CompanyHandler struct {
	service companies.CompanyUseCase
	log     logrus.FieldLogger
}

type companyRequest struct {
	Name string `json:"name"`
}

type companyResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	NoOfActiveFlights int    `json:"no_of_active_flights"`
}

func toCompanyResponse(v companies.CompanyView) companyResponse {
	return companyResponse{ID: v.ID, Name: v.Name, NoOfActiveFlights: v.NoOfActiveFlights}
}

func NewCompanyHandler(service companies.CompanyUseCase, log logrus.FieldLogger) *CompanyHandler {
	return &CompanyHandler{service: service, log: log}
}

func (h *CompanyHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.create)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

// list honours ?filter=active.
func (h *CompanyHandler) list(c *gin.Context) {
	views, err := h.service.List(c.Request.Context(), principal(c), c.Query("filter") == "active")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]companyResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCompanyResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CompanyHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	v, err := h.service.GetByID(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(*v))
}

func (h *CompanyHandler) create(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	company, err := h.service.Create(c.Request.Context(), principal(c), req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toCompanyResponse(companies.CompanyView{Company: *company}))
}

func (h *CompanyHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := h.service.Update(c.Request.Context(), principal(c), id, req.Name); err != nil {
		respondError(c, h.log, err)
		return
	}
	v, err := h.service.GetByID(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(*v))
}

func (h *CompanyHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
