package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Recipients resolves the user a booking event should be mailed to.
type Recipients interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Sender turns booking events into notification mails. Delivery is a log
// line until an SMTP relay is wired in.
type Sender struct {
	users Recipients
	log   logrus.FieldLogger
}

func NewSender(users Recipients, log logrus.FieldLogger) *Sender {
	return &Sender{users: users, log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	user, err := s.users.GetByID(ctx, event.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			s.log.WithField("user_id", event.UserID).Warn("skipping notification for deleted user")
			return nil
		}
		return err
	}

	s.log.WithFields(logrus.Fields{
		"to":         user.Email,
		"event":      event.Type,
		"booking_id": event.BookingID,
		"flight_id":  event.FlightID,
	}).Info(Subject(event))
	return nil
}

func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking #%d confirmed: %d seat(s), total %d", event.BookingID, event.NoOfSeats, event.TotalPrice)
	case kafka.EventBookingUpdated:
		return fmt.Sprintf("Booking #%d changed: %d seat(s), total %d", event.BookingID, event.NoOfSeats, event.TotalPrice)
	case kafka.EventBookingDeleted:
		return fmt.Sprintf("Booking #%d cancelled", event.BookingID)
	}
	return fmt.Sprintf("Booking #%d: %s", event.BookingID, event.Type)
}
