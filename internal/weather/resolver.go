package weather

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

//go:embed city_ids.json
var defaultCityIDs []byte

// Resolver maps city names to weather-service city ids.
type Resolver struct {
	ids map[string]int64
}

// NewResolver parses a JSON array of {"id", "name"} objects.
func NewResolver(data []byte) (*Resolver, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("weather: malformed city id list")
	}
	list := gjson.ParseBytes(data)
	if !list.IsArray() {
		return nil, errors.New("weather: city id list is not an array")
	}
	r := &Resolver{ids: make(map[string]int64)}
	list.ForEach(func(_, city gjson.Result) bool {
		name := strings.ToLower(city.Get("name").String())
		if _, seen := r.ids[name]; !seen && name != "" {
			r.ids[name] = city.Get("id").Int()
		}
		return true
	})
	return r, nil
}

// LoadResolver reads the list at path, or the bundled one when path is empty.
func LoadResolver(path string) (*Resolver, error) {
	if path == "" {
		return NewResolver(defaultCityIDs)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("weather: read city ids: %w", err)
	}
	return NewResolver(data)
}

// CityID ignores case; the first entry wins when names repeat.
func (r *Resolver) CityID(name string) (int64, bool) {
	id, ok := r.ids[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
