package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FlightHandler struct {
	service flights.FlightUseCase
	log     logrus.FieldLogger
}

type flightRequest struct {
	CompanyID *int64     `json:"company_id"`
	Name      *string    `json:"name"`
	DepartsAt *time.Time `json:"departs_at"`
	ArrivesAt *time.Time `json:"arrives_at"`
	BasePrice *int64     `json:"base_price"`
	NoOfSeats *int       `json:"no_of_seats"`
}

func (r flightRequest) input() flights.FlightInput {
	return flights.FlightInput{
		CompanyID: r.CompanyID,
		Name:      r.Name,
		DepartsAt: r.DepartsAt,
		ArrivesAt: r.ArrivesAt,
		BasePrice: r.BasePrice,
		NoOfSeats: r.NoOfSeats,
	}
}

type flightResponse struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	Name         string    `json:"name"`
	DepartsAt    time.Time `json:"departs_at"`
	ArrivesAt    time.Time `json:"arrives_at"`
	BasePrice    int64     `json:"base_price"`
	CurrentPrice int64     `json:"current_price"`
	NoOfSeats    int       `json:"no_of_seats"`
}

func toFlightResponse(v flights.FlightView) flightResponse {
	return flightResponse{
		ID:           v.ID,
		CompanyID:    v.CompanyID,
		Name:         v.Name,
		DepartsAt:    v.DepartsAt,
		ArrivesAt:    v.ArrivesAt,
		BasePrice:    v.BasePrice,
		CurrentPrice: v.CurrentPrice,
		NoOfSeats:    v.NoOfSeats,
	}
}

func NewFlightHandler(service flights.FlightUseCase, log logrus.FieldLogger) *FlightHandler {
	return &FlightHandler{service: service, log: log}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.create)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *FlightHandler) list(c *gin.Context) {
	var filter repository.FlightFilter
	if raw := c.Query("company_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid company_id")
			return
		}
		filter.CompanyID = id
	}

	views, err := h.service.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]flightResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toFlightResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	view, err := h.service.GetByID(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*view))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.service.Create(c.Request.Context(), principal(c), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(*flight))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.service.Update(c.Request.Context(), principal(c), id, req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) delete(c *gin.Context) {
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
