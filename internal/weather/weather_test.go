package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/skybooking/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCity_Temp(t *testing.T) {
	assert.Equal(t, 27.0, City{TempK: 300.15}.Temp())
	assert.Equal(t, -0.15, City{TempK: 273.0}.Temp())
}

func TestCity_Compare(t *testing.T) {
	cairns := City{ID: 2172797, TempK: 300.15, Name: "Cairns"}

	assert.Equal(t, -1, City{TempK: 295.0, Name: "Moscow"}.Compare(cairns))
	assert.Equal(t, -1, City{TempK: 300.15, Name: "Athens"}.Compare(cairns))
	assert.Equal(t, 0, City{TempK: 300.15, Name: "Cairns"}.Compare(cairns))
	assert.Equal(t, 1, City{TempK: 305.0, Name: "Brisbane"}.Compare(cairns))
	assert.Equal(t, -1, cairns.Compare(City{TempK: 300.15, Name: "Zurich"}))
}

func TestParseCity(t *testing.T) {
	city, err := ParseCity([]byte(`{"coord":{"lon":145.77,"lat":-16.92},"main":{"temp":300.15},"id":2172797,"name":"Cairns"}`))
	require.NoError(t, err)
	assert.Equal(t, City{ID: 2172797, Lat: -16.92, Lon: 145.77, TempK: 300.15, Name: "Cairns"}, city)
	assert.Equal(t, 27.0, city.Temp())

	_, err = ParseCity([]byte(`{"cod":"404","message":"city not found"}`))
	assert.Error(t, err)
	_, err = ParseCity([]byte(`{`))
	assert.Error(t, err)
}

func TestResolver(t *testing.T) {
	r, err := NewResolver([]byte(`[{"id":1,"name":"Split"},{"id":2,"name":"SPLIT"},{"id":3,"name":"Zagreb"}]`))
	require.NoError(t, err)

	id, ok := r.CityID(" split ")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	_, ok = r.CityID("Atlantis")
	assert.False(t, ok)

	_, err = NewResolver([]byte(`{"id":1}`))
	assert.Error(t, err)
}

func TestLoadResolver_Bundled(t *testing.T) {
	r, err := LoadResolver("")
	require.NoError(t, err)
	id, ok := r.CityID("zagreb")
	assert.True(t, ok)
	assert.Equal(t, int64(3186886), id)
}

func TestClient_Cities(t *testing.T) {
	temps := map[string]float64{"1": 290.0, "2": 280.0}
	names := map[string]string{"1": "Split", "2": "Zagreb"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		id := r.URL.Query().Get("id")
		fmt.Fprintf(w, `{"coord":{"lon":1,"lat":2},"main":{"temp":%v},"id":%s,"name":%q}`, temps[id], id, names[id])
	}))
	defer srv.Close()

	resolver, err := NewResolver([]byte(`[{"id":1,"name":"Split"},{"id":2,"name":"Zagreb"}]`))
	require.NoError(t, err)
	client := NewClient(config.WeatherConfig{BaseURL: srv.URL, APIKey: "secret"}, resolver)

	cities, err := client.Cities(context.Background(), []string{"split", "Atlantis", "zagreb"})
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Zagreb", cities[0].Name)
	assert.Equal(t, "Split", cities[1].Name)
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	resolver, err := NewResolver([]byte(`[{"id":1,"name":"Split"}]`))
	require.NoError(t, err)
	client := NewClient(config.WeatherConfig{BaseURL: srv.URL}, resolver)

	_, err = client.City(context.Background(), "Split")
	assert.ErrorContains(t, err, "401")
}
