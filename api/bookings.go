package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service booking.BookingUseCase
	log     logrus.FieldLogger
}

// bookingRequest has no seat price: the price is always set by the server.
type bookingRequest struct {
	FlightID  *int64 `json:"flight_id"`
	UserID    *int64 `json:"user_id"`
	NoOfSeats *int   `json:"no_of_seats"`
}

type bookingResponse struct {
	ID         int64     `json:"id"`
	FlightID   int64     `json:"flight_id"`
	UserID     int64     `json:"user_id"`
	NoOfSeats  int       `json:"no_of_seats"`
	SeatPrice  int64     `json:"seat_price"`
	TotalPrice int64     `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		FlightID:   b.FlightID,
		UserID:     b.UserID,
		NoOfSeats:  b.NoOfSeats,
		SeatPrice:  b.SeatPrice,
		TotalPrice: b.TotalPrice(),
		CreatedAt:  b.CreatedAt,
	}
}

func NewBookingHandler(service booking.BookingUseCase, log logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.create)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *BookingHandler) list(c *gin.Context) {
	var filter repository.BookingFilter
	if raw := c.Query("flight_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid flight_id")
			return
		}
		filter.FlightID = id
	}

	bookings, err := h.service.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) create(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := h.service.CreateBooking(c.Request.Context(), principal(c), booking.BookingInput{
		FlightID:  req.FlightID,
		UserID:    req.UserID,
		NoOfSeats: req.NoOfSeats,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(*b))
}

func (h *BookingHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := h.service.UpdateBooking(c.Request.Context(), principal(c), id, booking.BookingInput{
		FlightID:  req.FlightID,
		UserID:    req.UserID,
		NoOfSeats: req.NoOfSeats,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
