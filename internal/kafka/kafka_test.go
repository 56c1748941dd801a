package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingEvent(t *testing.T) {
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	b := domain.Booking{ID: 12, FlightID: 3, UserID: 5, NoOfSeats: 2, SeatPrice: 133}

	event := NewBookingEvent(EventBookingCreated, b, at)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventBookingCreated, event.Type)
	assert.Equal(t, int64(266), event.TotalPrice)
	assert.Equal(t, "12", event.Key())
	assert.Equal(t, at, event.OccurredAt)
}

func TestBookingEvents_DecodesPayload(t *testing.T) {
	sent := NewBookingEvent(EventBookingDeleted, domain.Booking{ID: 1, FlightID: 2, UserID: 3, NoOfSeats: 1, SeatPrice: 50}, time.Now().UTC())
	data, err := json.Marshal(sent)
	require.NoError(t, err)

	var got BookingEvent
	handler := BookingEvents(func(_ context.Context, e BookingEvent) error {
		got = e
		return nil
	})

	require.NoError(t, handler(context.Background(), kafka.Message{Value: data}))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, EventBookingDeleted, got.Type)
	assert.Equal(t, int64(50), got.TotalPrice)
}

func TestBookingEvents_RejectsGarbage(t *testing.T) {
	handler := BookingEvents(func(context.Context, BookingEvent) error { return nil })
	assert.Error(t, handler(context.Background(), kafka.Message{Value: []byte("{")}))
}

func TestRetrying_GivesUpAfterAttempts(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, logging.Discard())
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Retrying{Producer: p, Attempts: 1}.Publish(ctx, "booking-events", "1", map[string]int{"id": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 1 retries")
}
