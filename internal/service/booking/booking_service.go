package booking

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/access"
	"github.com/Domenick1991/skybooking/internal/clock"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/guard"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/pricing"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	List(ctx context.Context, p domain.Principal, filter repository.BookingFilter) ([]domain.Booking, error)
	GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.Booking, error)
	CreateBooking(ctx context.Context, p domain.Principal, input BookingInput) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, p domain.Principal, id int64, input BookingInput) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, p domain.Principal, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// BookingInput carries the attributes a command sets. A nil UserID books
// for the caller. The seat price is never taken from the caller.
type BookingInput struct {
	FlightID  *int64
	UserID    *int64
	NoOfSeats *int
}

func (in BookingInput) apply(b *domain.Booking) {
	if in.FlightID != nil {
		b.FlightID = *in.FlightID
	}
	if in.UserID != nil {
		b.UserID = *in.UserID
	}
	if in.NoOfSeats != nil {
		b.NoOfSeats = *in.NoOfSeats
	}
}

type BookingService struct {
	store              repository.Store
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	clock              clock.Clock
	log                logrus.FieldLogger
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(c clock.Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = c
	}
}

func WithLogger(log logrus.FieldLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(store repository.Store, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		store: store,
		clock: clock.System,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List narrows the query to the caller's own bookings unless the caller
// is an admin.
func (s *BookingService) List(ctx context.Context, p domain.Principal, filter repository.BookingFilter) ([]domain.Booking, error) {
	scope, err := access.ListScope(p, access.ActionListBookings)
	if err != nil {
		return nil, err
	}
	if !scope.All() {
		filter.UserID = scope.OwnerID
	}
	return s.store.Bookings().List(ctx, filter)
}

func (s *BookingService) GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.Booking, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	b, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ActionViewBooking, access.Owned(b.UserID)).Err(); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, p domain.Principal, input BookingInput) (_ *domain.Booking, err error) {
	ctx, done := service.Track(ctx, s.log, "create_booking")
	defer func() { done(err) }()

	booking := domain.Booking{UserID: p.ID}
	input.apply(&booking)

	target := access.Owned(booking.UserID)
	if booking.UserID != p.ID {
		target = access.Target{OwnerID: p.ID, Privileged: []string{"user_id"}}
	}
	if err := access.Authorize(p, access.ActionCreateBooking, target).Err(); err != nil {
		return nil, err
	}

	errs := booking.ValidateInput()
	if booking.FlightID <= 0 {
		return nil, errs.Err()
	}

	err = s.store.InTx(ctx, func(tx repository.Repositories) error {
		flight, err := tx.Flights().Lock(ctx, booking.FlightID)
		if err != nil {
			return missingFlight(err, errs)
		}
		if err := errs.Err(); err != nil {
			return err
		}
		now := s.clock.Now()
		booking.SeatPrice = pricing.CurrentPrice(flight.BasePrice, flight.DepartsAt, now)
		if err := booking.Validate().Err(); err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, booking.UserID); err != nil {
			return err
		}

		existing, err := tx.Bookings().ListByFlight(ctx, flight.ID)
		if err != nil {
			return err
		}
		if err := guard.CheckBooking(*flight, existing, booking, now).Err(); err != nil {
			return err
		}
		return tx.Bookings().Create(ctx, &booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"flight_id":  booking.FlightID,
		"user_id":    booking.UserID,
	}).Info("booking created")
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return &booking, nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, p domain.Principal, id int64, input BookingInput) (_ *domain.Booking, err error) {
	ctx, done := service.Track(ctx, s.log, "update_booking")
	defer func() { done(err) }()

	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	var updated domain.Booking
	err = s.store.InTx(ctx, func(tx repository.Repositories) error {
		current, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		target := access.Owned(current.UserID)
		if input.UserID != nil && *input.UserID != current.UserID {
			target.Privileged = []string{"user_id"}
		}
		if err := access.Authorize(p, access.ActionUpdateBooking, target).Err(); err != nil {
			return err
		}

		candidate := *current
		input.apply(&candidate)
		errs := candidate.ValidateInput()
		if candidate.FlightID <= 0 {
			return errs.Err()
		}

		// Lock order: flights by ascending id.
		flights := make(map[int64]*domain.Flight, 2)
		for _, flightID := range service.LockOrder(current.FlightID, candidate.FlightID) {
			f, err := tx.Flights().Lock(ctx, flightID)
			if err != nil {
				return missingFlight(err, errs)
			}
			flights[flightID] = f
		}
		if err := errs.Err(); err != nil {
			return err
		}

		// Re-read under the flight lock; the first read only chose what to lock.
		locked, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if locked.FlightID != current.FlightID {
			return fmt.Errorf("booking %d changed flight concurrently", id)
		}
		candidate = *locked
		input.apply(&candidate)

		flight := flights[candidate.FlightID]
		now := s.clock.Now()
		if candidate.FlightID != locked.FlightID {
			candidate.SeatPrice = pricing.CurrentPrice(flight.BasePrice, flight.DepartsAt, now)
		}
		if err := candidate.Validate().Err(); err != nil {
			return err
		}
		if candidate.UserID != locked.UserID {
			if _, err := tx.Users().GetByID(ctx, candidate.UserID); err != nil {
				return err
			}
		}

		existing, err := tx.Bookings().ListByFlight(ctx, flight.ID)
		if err != nil {
			return err
		}
		if err := guard.CheckBooking(*flight, existing, candidate, now).Err(); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, &candidate); err != nil {
			return err
		}
		updated = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": updated.ID, "flight_id": updated.FlightID}).Info("booking updated")
	s.publish(ctx, kafka.EventBookingUpdated, updated)
	return &updated, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, p domain.Principal, id int64) (err error) {
	ctx, done := service.Track(ctx, s.log, "delete_booking")
	defer func() { done(err) }()

	if !p.Authenticated() {
		return domain.ErrUnauthenticated
	}

	var deleted domain.Booking
	err = s.store.InTx(ctx, func(tx repository.Repositories) error {
		current, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(p, access.ActionDeleteBooking, access.Owned(current.UserID)).Err(); err != nil {
			return err
		}
		deleted = *current
		return tx.Bookings().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.WithField("booking_id", id).Info("booking deleted")
	s.publish(ctx, kafka.EventBookingDeleted, deleted)
	return nil
}

// publish runs after commit; a failed publish is logged and never undoes
// the booking.
// missingFlight reports an unknown flight together with the input errors
// already found. Any other lookup error is returned as is.
func missingFlight(err error, errs domain.FieldErrors) error {
	if !domain.IsNotFound(err) {
		return err
	}
	errs.Add("flight", domain.MsgMustExist)
	return errs.Err()
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, s.clock.Now())
	for _, topic := range []string{s.bookingTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, event.Key(), event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"event":      eventType,
				"topic":      topic,
			}).Warn("failed to publish booking event")
		}
	}
}


var _ BookingUseCase = (*BookingService)(nil)
