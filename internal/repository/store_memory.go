package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// foldKey is the case-insensitive identity of a unique name or email.
func foldKey(s string) string {
	return fold.String(strings.TrimSpace(s))
}

// MemoryStore keeps everything in process. InTx holds one store-wide lock
// for the whole transaction and works on a copy that replaces the live
// state only on success, which makes every transaction serializable.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	state *memState
}

type memState struct {
	seq       int64
	companies map[int64]domain.Company
	flights   map[int64]domain.Flight
	bookings  map[int64]domain.Booking
	users     map[int64]domain.User
}

func newMemState() *memState {
	return &memState{
		companies: make(map[int64]domain.Company),
		flights:   make(map[int64]domain.Flight),
		bookings:  make(map[int64]domain.Booking),
		users:     make(map[int64]domain.User),
	}
}

func (st *memState) clone() *memState {
	c := newMemState()
	c.seq = st.seq
	for k, v := range st.companies {
		c.companies[k] = v
	}
	for k, v := range st.flights {
		c.flights[k] = v
	}
	for k, v := range st.bookings {
		c.bookings[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	return c
}

func (st *memState) nextID() int64 {
	st.seq++
	return st.seq
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, state: newMemState()}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(memRepositories{store: s, tx: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *MemoryStore) Companies() CompanyRepository { return memCompanies{memRepositories{store: s}} }
func (s *MemoryStore) Flights() FlightRepository    { return memFlights{memRepositories{store: s}} }
func (s *MemoryStore) Bookings() BookingRepository  { return memBookings{memRepositories{store: s}} }
func (s *MemoryStore) Users() UserRepository        { return memUsers{memRepositories{store: s}} }

type memRepositories struct {
	store *MemoryStore
	tx    *memState
}

func (r memRepositories) Companies() CompanyRepository { return memCompanies{r} }
func (r memRepositories) Flights() FlightRepository    { return memFlights{r} }
func (r memRepositories) Bookings() BookingRepository  { return memBookings{r} }
func (r memRepositories) Users() UserRepository        { return memUsers{r} }

// with runs fn against the transaction state, or against the live state
// under the store lock outside a transaction.
func (r memRepositories) with(ctx context.Context, fn func(st *memState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.state)
}

type memCompanies struct{ memRepositories }

func (r memCompanies) List(ctx context.Context, filter CompanyFilter) ([]domain.Company, error) {
	out := make([]domain.Company, 0)
	err := r.with(ctx, func(st *memState) error {
		for _, c := range st.companies {
			if !filter.ActiveAfter.IsZero() && st.activeFlights(c.ID, filter.ActiveAfter) == 0 {
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r memCompanies) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	var out *domain.Company
	err := r.with(ctx, func(st *memState) error {
		c, ok := st.companies[id]
		if !ok {
			return domain.NotFound("company")
		}
		out = &c
		return nil
	})
	return out, err
}

func (r memCompanies) Lock(ctx context.Context, id int64) (*domain.Company, error) {
	return r.GetByID(ctx, id)
}

func (r memCompanies) CountActiveFlights(ctx context.Context, id int64, after time.Time) (int, error) {
	var n int
	err := r.with(ctx, func(st *memState) error {
		n = st.activeFlights(id, after)
		return nil
	})
	return n, err
}

func (st *memState) activeFlights(companyID int64, after time.Time) int {
	n := 0
	for _, f := range st.flights {
		if f.CompanyID == companyID && f.DepartsAt.After(after) {
			n++
		}
	}
	return n
}

func (st *memState) companyNameTaken(c *domain.Company) bool {
	for _, other := range st.companies {
		if other.ID != c.ID && foldKey(other.Name) == foldKey(c.Name) {
			return true
		}
	}
	return false
}

func (r memCompanies) Create(ctx context.Context, company *domain.Company) error {
	return r.with(ctx, func(st *memState) error {
		if st.companyNameTaken(company) {
			return domain.Conflict("name", nil)
		}
		company.ID = st.nextID()
		company.CreatedAt = r.store.now()
		company.UpdatedAt = company.CreatedAt
		st.companies[company.ID] = *company
		return nil
	})
}

func (r memCompanies) Update(ctx context.Context, company *domain.Company) error {
	return r.with(ctx, func(st *memState) error {
		current, ok := st.companies[company.ID]
		if !ok {
			return domain.NotFound("company")
		}
		if st.companyNameTaken(company) {
			return domain.Conflict("name", nil)
		}
		company.CreatedAt = current.CreatedAt
		company.UpdatedAt = r.store.now()
		st.companies[company.ID] = *company
		return nil
	})
}

func (r memCompanies) Delete(ctx context.Context, id int64) error {
	return r.with(ctx, func(st *memState) error {
		if _, ok := st.companies[id]; !ok {
			return domain.NotFound("company")
		}
		delete(st.companies, id)
		for fid, f := range st.flights {
			if f.CompanyID == id {
				st.deleteFlight(fid)
			}
		}
		return nil
	})
}

type memFlights struct{ memRepositories }

func (r memFlights) List(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	out := make([]domain.Flight, 0)
	err := r.with(ctx, func(st *memState) error {
		for _, f := range st.flights {
			if filter.CompanyID != 0 && f.CompanyID != filter.CompanyID {
				continue
			}
			out = append(out, f)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartsAt.Equal(out[j].DepartsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DepartsAt.Before(out[j].DepartsAt)
	})
	return out, err
}

func (r memFlights) ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error) {
	return r.List(ctx, FlightFilter{CompanyID: companyID})
}

func (r memFlights) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var out *domain.Flight
	err := r.with(ctx, func(st *memState) error {
		f, ok := st.flights[id]
		if !ok {
			return domain.NotFound("flight")
		}
		out = &f
		return nil
	})
	return out, err
}

func (r memFlights) Lock(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.GetByID(ctx, id)
}

func (st *memState) checkFlight(f *domain.Flight) error {
	if _, ok := st.companies[f.CompanyID]; !ok {
		return domain.NotFound("company")
	}
	for _, other := range st.flights {
		if other.ID != f.ID && other.CompanyID == f.CompanyID && foldKey(other.Name) == foldKey(f.Name) {
			return domain.Conflict("name", nil)
		}
	}
	return nil
}

func (r memFlights) Create(ctx context.Context, flight *domain.Flight) error {
	return r.with(ctx, func(st *memState) error {
		if err := st.checkFlight(flight); err != nil {
			return err
		}
		flight.ID = st.nextID()
		flight.CreatedAt = r.store.now()
		flight.UpdatedAt = flight.CreatedAt
		st.flights[flight.ID] = *flight
		return nil
	})
}

func (r memFlights) Update(ctx context.Context, flight *domain.Flight) error {
	return r.with(ctx, func(st *memState) error {
		current, ok := st.flights[flight.ID]
		if !ok {
			return domain.NotFound("flight")
		}
		if err := st.checkFlight(flight); err != nil {
			return err
		}
		flight.CreatedAt = current.CreatedAt
		flight.UpdatedAt = r.store.now()
		st.flights[flight.ID] = *flight
		return nil
	})
}

func (r memFlights) Delete(ctx context.Context, id int64) error {
	return r.with(ctx, func(st *memState) error {
		if _, ok := st.flights[id]; !ok {
			return domain.NotFound("flight")
		}
		st.deleteFlight(id)
		return nil
	})
}

func (st *memState) deleteFlight(id int64) {
	delete(st.flights, id)
	for bid, b := range st.bookings {
		if b.FlightID == id {
			delete(st.bookings, bid)
		}
	}
}

type memBookings struct{ memRepositories }

func (r memBookings) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	out := make([]domain.Booking, 0)
	err := r.with(ctx, func(st *memState) error {
		for _, b := range st.bookings {
			if filter.UserID != 0 && b.UserID != filter.UserID {
				continue
			}
			if filter.FlightID != 0 && b.FlightID != filter.FlightID {
				continue
			}
			out = append(out, b)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r memBookings) ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	return r.List(ctx, BookingFilter{FlightID: flightID})
}

func (r memBookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.with(ctx, func(st *memState) error {
		b, ok := st.bookings[id]
		if !ok {
			return domain.NotFound("booking")
		}
		out = &b
		return nil
	})
	return out, err
}

func (st *memState) checkBooking(b *domain.Booking) error {
	if _, ok := st.flights[b.FlightID]; !ok {
		return domain.NotFound("flight")
	}
	if _, ok := st.users[b.UserID]; !ok {
		return domain.NotFound("user")
	}
	return nil
}

func (r memBookings) Create(ctx context.Context, booking *domain.Booking) error {
	return r.with(ctx, func(st *memState) error {
		if err := st.checkBooking(booking); err != nil {
			return err
		}
		booking.ID = st.nextID()
		booking.CreatedAt = r.store.now()
		booking.UpdatedAt = booking.CreatedAt
		st.bookings[booking.ID] = *booking
		return nil
	})
}

func (r memBookings) Update(ctx context.Context, booking *domain.Booking) error {
	return r.with(ctx, func(st *memState) error {
		current, ok := st.bookings[booking.ID]
		if !ok {
			return domain.NotFound("booking")
		}
		if err := st.checkBooking(booking); err != nil {
			return err
		}
		booking.CreatedAt = current.CreatedAt
		booking.UpdatedAt = r.store.now()
		st.bookings[booking.ID] = *booking
		return nil
	})
}

func (r memBookings) Delete(ctx context.Context, id int64) error {
	return r.with(ctx, func(st *memState) error {
		if _, ok := st.bookings[id]; !ok {
			return domain.NotFound("booking")
		}
		delete(st.bookings, id)
		return nil
	})
}

type memUsers struct{ memRepositories }

func (r memUsers) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	out := make([]domain.User, 0)
	err := r.with(ctx, func(st *memState) error {
		for _, u := range st.users {
			if filter.ID != 0 && u.ID != filter.ID {
				continue
			}
			out = append(out, u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := foldKey(email)
	return r.find(ctx, func(u domain.User) bool { return foldKey(u.Email) == key })
}

func (r memUsers) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return token != "" && u.Token == token })
}

func (r memUsers) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	var out *domain.User
	err := r.with(ctx, func(st *memState) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				out = &u
				return nil
			}
		}
		return domain.NotFound("user")
	})
	return out, err
}

func (st *memState) checkUser(u *domain.User) error {
	for _, other := range st.users {
		if other.ID == u.ID {
			continue
		}
		if foldKey(other.Email) == foldKey(u.Email) {
			return domain.Conflict("email", nil)
		}
		if other.Token == u.Token {
			return domain.Conflict("token", nil)
		}
	}
	return nil
}

func (r memUsers) Create(ctx context.Context, user *domain.User) error {
	return r.with(ctx, func(st *memState) error {
		if err := st.checkUser(user); err != nil {
			return err
		}
		user.ID = st.nextID()
		user.CreatedAt = r.store.now()
		user.UpdatedAt = user.CreatedAt
		st.users[user.ID] = *user
		return nil
	})
}

func (r memUsers) Update(ctx context.Context, user *domain.User) error {
	return r.with(ctx, func(st *memState) error {
		current, ok := st.users[user.ID]
		if !ok {
			return domain.NotFound("user")
		}
		if err := st.checkUser(user); err != nil {
			return err
		}
		user.CreatedAt = current.CreatedAt
		user.UpdatedAt = r.store.now()
		st.users[user.ID] = *user
		return nil
	})
}

func (r memUsers) Delete(ctx context.Context, id int64) error {
	return r.with(ctx, func(st *memState) error {
		if _, ok := st.users[id]; !ok {
			return domain.NotFound("user")
		}
		delete(st.users, id)
		for bid, b := range st.bookings {
			if b.UserID == id {
				delete(st.bookings, bid)
			}
		}
		return nil
	})
}

var _ Store = (*MemoryStore)(nil)
