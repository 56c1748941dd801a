package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/access"
	"github.com/Domenick1991/skybooking/internal/clock"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/guard"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/pricing"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context, p domain.Principal, filter repository.FlightFilter) ([]FlightView, error)
	GetByID(ctx context.Context, p domain.Principal, id int64) (*FlightView, error)
	Create(ctx context.Context, p domain.Principal, input FlightInput) (*FlightView, error)
	Update(ctx context.Context, p domain.Principal, id int64, input FlightInput) (*FlightView, error)
	Delete(ctx context.Context, p domain.Principal, id int64) error
}

// Cache holds the unfiltered flight list. A nil slice from GetFlights is a miss.
type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// FlightView is a flight with its price at read time.
type FlightView struct {
	domain.Flight
	CurrentPrice int64
}

// FlightInput carries the attributes a command sets. Nil fields are left
// unchanged on update and blank on create.
type FlightInput struct {
	CompanyID *int64
	Name      *string
	DepartsAt *time.Time
	ArrivesAt *time.Time
	BasePrice *int64
	NoOfSeats *int
}

func (in FlightInput) apply(f *domain.Flight) {
	if in.CompanyID != nil {
		f.CompanyID = *in.CompanyID
	}
	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.DepartsAt != nil {
		f.DepartsAt = *in.DepartsAt
	}
	if in.ArrivesAt != nil {
		f.ArrivesAt = *in.ArrivesAt
	}
	if in.BasePrice != nil {
		f.BasePrice = *in.BasePrice
	}
	if in.NoOfSeats != nil {
		f.NoOfSeats = *in.NoOfSeats
	}
}

type FlightService struct {
	store repository.Store
	cache Cache
	clock clock.Clock
	log   logrus.FieldLogger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache Cache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithClock(c clock.Clock) FlightServiceOption {
	return func(s *FlightService) {
		s.clock = c
	}
}

func WithLogger(log logrus.FieldLogger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(store repository.Store, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		store: store,
		clock: clock.System,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context, p domain.Principal, filter repository.FlightFilter) ([]FlightView, error) {
	if _, err := access.ListScope(p, access.ActionListFlights); err != nil {
		return nil, err
	}

	flights, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]FlightView, 0, len(flights))
	for _, f := range flights {
		if filter.CompanyID != 0 && f.CompanyID != filter.CompanyID {
			continue
		}
		views = append(views, s.view(f, now))
	}
	return views, nil
}

func (s *FlightService) listAll(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.WithError(err).Warn("flight cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.store.Flights().List(ctx, repository.FlightFilter{})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.WithError(err).Warn("flight cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, p domain.Principal, id int64) (*FlightView, error) {
	if err := access.Authorize(p, access.ActionViewFlight, access.Target{}).Err(); err != nil {
		return nil, err
	}
	f, err := s.store.Flights().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*f, s.clock.Now())
	return &v, nil
}

func (s *FlightService) view(f domain.Flight, now time.Time) FlightView {
	return FlightView{Flight: f, CurrentPrice: pricing.CurrentPrice(f.BasePrice, f.DepartsAt, now)}
}

func (s *FlightService) Create(ctx context.Context, p domain.Principal, input FlightInput) (_ *FlightView, err error) {
	ctx, done := service.Track(ctx, s.log, "create_flight")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionCreateFlight, access.Target{}).Err(); err != nil {
		return nil, err
	}

	var flight domain.Flight
	input.apply(&flight)
	if err := flight.Validate().Err(); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Companies().Lock(ctx, flight.CompanyID); err != nil {
			return service.FieldOrMissing(err, "company")
		}
		siblings, err := tx.Flights().ListByCompany(ctx, flight.CompanyID)
		if err != nil {
			return err
		}
		if err := guard.CheckSchedule(flight, siblings).Err(); err != nil {
			return err
		}
		return tx.Flights().Create(ctx, &flight)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"flight_id": flight.ID, "company_id": flight.CompanyID}).Info("flight created")
	v := s.view(flight, s.clock.Now())
	return &v, nil
}

func (s *FlightService) Update(ctx context.Context, p domain.Principal, id int64, input FlightInput) (_ *FlightView, err error) {
	ctx, done := service.Track(ctx, s.log, "update_flight")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionUpdateFlight, access.Target{}).Err(); err != nil {
		return nil, err
	}

	var updated domain.Flight
	err = s.store.InTx(ctx, func(tx repository.Repositories) error {
		current, err := tx.Flights().GetByID(ctx, id)
		if err != nil {
			return err
		}
		candidate := *current
		input.apply(&candidate)
		if err := candidate.Validate().Err(); err != nil {
			return err
		}

		// Lock order: companies by ascending id, then the flight.
		for _, companyID := range service.LockOrder(current.CompanyID, candidate.CompanyID) {
			if _, err := tx.Companies().Lock(ctx, companyID); err != nil {
				return service.FieldOrMissing(err, "company")
			}
		}
		locked, err := tx.Flights().Lock(ctx, id)
		if err != nil {
			return err
		}
		if locked.CompanyID != current.CompanyID {
			return fmt.Errorf("flight %d changed company concurrently", id)
		}
		candidate = *locked
		input.apply(&candidate)
		if err := candidate.Validate().Err(); err != nil {
			return err
		}

		siblings, err := tx.Flights().ListByCompany(ctx, candidate.CompanyID)
		if err != nil {
			return err
		}
		bookings, err := tx.Bookings().ListByFlight(ctx, id)
		if err != nil {
			return err
		}
		errs := guard.CheckSchedule(candidate, siblings)
		errs.Merge(guard.CheckCapacityShrink(candidate, bookings))
		if err := errs.Err(); err != nil {
			return err
		}

		if err := tx.Flights().Update(ctx, &candidate); err != nil {
			return err
		}
		updated = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.WithField("flight_id", id).Info("flight updated")
	v := s.view(updated, s.clock.Now())
	return &v, nil
}

func (s *FlightService) Delete(ctx context.Context, p domain.Principal, id int64) (err error) {
	ctx, done := service.Track(ctx, s.log, "delete_flight")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionDeleteFlight, access.Target{}).Err(); err != nil {
		return err
	}
	if err := s.store.Flights().Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.log.WithField("flight_id", id).Info("flight deleted")
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.WithError(err).Warn("flight cache invalidation failed")
	}
}


var _ FlightUseCase = (*FlightService)(nil)
