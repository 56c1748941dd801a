package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/skybooking/internal/weather"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WeatherLookup interface {
	Cities(ctx context.Context, names []string) ([]weather.City, error)
}

type WeatherHandler struct {
	lookup WeatherLookup
	log    logrus.FieldLogger
}

type cityResponse struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Temp float64 `json:"temp"`
}

func NewWeatherHandler(lookup WeatherLookup, log logrus.FieldLogger) *WeatherHandler {
	return &WeatherHandler{lookup: lookup, log: log}
}

func (h *WeatherHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.cities)
}

// cities answers GET /weather?city=Split&city=Zagreb, coldest first.
func (h *WeatherHandler) cities(c *gin.Context) {
	names := c.QueryArray("city")
	if len(names) == 0 {
		badRequest(c, "city is required")
		return
	}
	cities, err := h.lookup.Cities(c.Request.Context(), names)
	if err != nil {
		h.log.WithError(err).Warn("weather lookup failed")
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "weather service unavailable"})
		return
	}
	out := make([]cityResponse, 0, len(cities))
	for _, city := range cities {
		out = append(out, cityResponse{ID: city.ID, Name: city.Name, Lat: city.Lat, Lon: city.Lon, Temp: city.Temp()})
	}
	c.JSON(http.StatusOK, out)
}
