package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/internal/metrics"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/companies"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/Domenick1991/skybooking/internal/service/session"
	"github.com/Domenick1991/skybooking/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services groups the use cases the router exposes. Weather is optional.
type Services struct {
	Companies companies.CompanyUseCase
	Flights   flights.FlightUseCase
	Bookings  booking.BookingUseCase
	Users     users.UserUseCase
	Sessions  session.SessionUseCase
	Weather   WeatherLookup
}

func NewRouter(svc Services, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api", Authenticate(svc.Sessions, log))
	NewCompanyHandler(svc.Companies, log).Register(api.Group("/companies"))
	NewFlightHandler(svc.Flights, log).Register(api.Group("/flights"))
	NewBookingHandler(svc.Bookings, log).Register(api.Group("/bookings"))
	NewUserHandler(svc.Users, log).Register(api.Group("/users"))
	NewSessionHandler(svc.Sessions, log).Register(api.Group("/session"))
	if svc.Weather != nil {
		NewWeatherHandler(svc.Weather, log).Register(api.Group("/weather"))
	}
	return router
}
