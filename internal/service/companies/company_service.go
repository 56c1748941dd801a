package companies

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/access"
	"github.com/Domenick1991/skybooking/internal/clock"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service"
	"github.com/sirupsen/logrus"
)

type CompanyUseCase interface {
	List(ctx context.Context, p domain.Principal, activeOnly bool) ([]CompanyView, error)
	GetByID(ctx context.Context, p domain.Principal, id int64) (*CompanyView, error)
	Create(ctx context.Context, p domain.Principal, name string) (*domain.Company, error)
	Update(ctx context.Context, p domain.Principal, id int64, name string) (*domain.Company, error)
	Delete(ctx context.Context, p domain.Principal, id int64) error
}

// FlightCache is dropped whenever a company change removes flights.
type FlightCache interface {
	InvalidateFlights(ctx context.Context) error
}

// CompanyView is a company with the number of its flights still to depart.
type CompanyView struct {
	domain.Company
	NoOfActiveFlights int
}

type CompanyService struct {
	store repository.Store
	cache FlightCache
	clock clock.Clock
	log   logrus.FieldLogger
}

type CompanyServiceOption func(*CompanyService)

func WithCache(cache FlightCache) CompanyServiceOption {
	return func(s *CompanyService) {
		s.cache = cache
	}
}

func WithClock(c clock.Clock) CompanyServiceOption {
	return func(s *CompanyService) {
		s.clock = c
	}
}

func WithLogger(log logrus.FieldLogger) CompanyServiceOption {
	return func(s *CompanyService) {
		s.log = log
	}
}

func NewCompanyService(store repository.Store, opts ...CompanyServiceOption) *CompanyService {
	s := &CompanyService{
		store: store,
		clock: clock.System,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every company, or with activeOnly just those with a flight
// departing after now.
func (s *CompanyService) List(ctx context.Context, p domain.Principal, activeOnly bool) ([]CompanyView, error) {
	if _, err := access.ListScope(p, access.ActionListCompanies); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	filter := repository.CompanyFilter{}
	if activeOnly {
		filter.ActiveAfter = now
	}
	companies, err := s.store.Companies().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]CompanyView, 0, len(companies))
	for _, c := range companies {
		v, err := s.view(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *CompanyService) GetByID(ctx context.Context, p domain.Principal, id int64) (*CompanyView, error) {
	if err := access.Authorize(p, access.ActionViewCompany, access.Target{}).Err(); err != nil {
		return nil, err
	}
	c, err := s.store.Companies().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, *c)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *CompanyService) view(ctx context.Context, c domain.Company) (CompanyView, error) {
	n, err := s.store.Companies().CountActiveFlights(ctx, c.ID, s.clock.Now())
	if err != nil {
		return CompanyView{}, err
	}
	return CompanyView{Company: c, NoOfActiveFlights: n}, nil
}

func (s *CompanyService) Create(ctx context.Context, p domain.Principal, name string) (_ *domain.Company, err error) {
	ctx, done := service.Track(ctx, s.log, "create_company")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionCreateCompany, access.Target{}).Err(); err != nil {
		return nil, err
	}
	company := domain.Company{Name: name}
	if err := company.Validate().Err(); err != nil {
		return nil, err
	}
	if err := s.store.Companies().Create(ctx, &company); err != nil {
		return nil, err
	}

	s.log.WithField("company_id", company.ID).Info("company created")
	return &company, nil
}

func (s *CompanyService) Update(ctx context.Context, p domain.Principal, id int64, name string) (_ *domain.Company, err error) {
	ctx, done := service.Track(ctx, s.log, "update_company")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionUpdateCompany, access.Target{}).Err(); err != nil {
		return nil, err
	}

	var updated domain.Company
	err = s.store.InTx(ctx, func(tx repository.Repositories) error {
		current, err := tx.Companies().Lock(ctx, id)
		if err != nil {
			return err
		}
		current.Name = name
		if err := current.Validate().Err(); err != nil {
			return err
		}
		if err := tx.Companies().Update(ctx, current); err != nil {
			return err
		}
		updated = *current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the company together with its flights and their bookings.
func (s *CompanyService) Delete(ctx context.Context, p domain.Principal, id int64) (err error) {
	ctx, done := service.Track(ctx, s.log, "delete_company")
	defer func() { done(err) }()

	if err := access.Authorize(p, access.ActionDeleteCompany, access.Target{}).Err(); err != nil {
		return err
	}
	if err := s.store.Companies().Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.WithError(err).Warn("flight cache invalidation failed")
		}
	}
	s.log.WithField("company_id", id).Info("company deleted")
	return nil
}

var _ CompanyUseCase = (*CompanyService)(nil)
