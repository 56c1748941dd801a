package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

const flightsKey = "cache:flights"

// RedisCache keeps the full, unfiltered flight list. Prices are derived
// from it at read time so the cached rows never go stale by date alone.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetFlights returns nil, nil on a miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeFlights(data)
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := encodeFlights(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey, payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type cachedFlight struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	DepartsAt time.Time `json:"departs_at"`
	ArrivesAt time.Time `json:"arrives_at"`
	BasePrice int64     `json:"base_price"`
	NoOfSeats int       `json:"no_of_seats"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func encodeFlights(flights []domain.Flight) ([]byte, error) {
	rows := make([]cachedFlight, 0, len(flights))
	for _, f := range flights {
		rows = append(rows, cachedFlight(f))
	}
	return json.Marshal(rows)
}

func decodeFlights(data []byte) ([]domain.Flight, error) {
	var rows []cachedFlight
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	flights := make([]domain.Flight, 0, len(rows))
	for _, r := range rows {
		flights = append(flights, domain.Flight(r))
	}
	return flights, nil
}
