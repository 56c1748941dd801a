package weather

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

const kelvinOffset = 273.15

type City struct {
	ID    int64   `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	TempK float64 `json:"temp_k"`
	Name  string  `json:"name"`
}

// Temp is the temperature in Celsius rounded to two decimals.
func (c City) Temp() float64 {
	return math.Round((c.TempK-kelvinOffset)*100) / 100
}

// Compare orders by temperature, then by name.
func (c City) Compare(other City) int {
	switch t, o := c.Temp(), other.Temp(); {
	case t < o:
		return -1
	case t > o:
		return 1
	}
	return strings.Compare(c.Name, other.Name)
}

func SortCities(cities []City) {
	sort.SliceStable(cities, func(i, j int) bool { return cities[i].Compare(cities[j]) < 0 })
}

// ParseCity reads a current-weather response body.
func ParseCity(body []byte) (City, error) {
	if !gjson.ValidBytes(body) {
		return City{}, errors.New("weather: malformed response")
	}
	res := gjson.ParseBytes(body)
	if !res.Get("id").Exists() || !res.Get("main.temp").Exists() {
		return City{}, errors.New("weather: response has no city data")
	}
	return City{
		ID:    res.Get("id").Int(),
		Lat:   res.Get("coord.lat").Float(),
		Lon:   res.Get("coord.lon").Float(),
		TempK: res.Get("main.temp").Float(),
		Name:  res.Get("name").String(),
	}, nil
}
