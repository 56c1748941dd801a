package domain

import "time"

type Flight struct {
	ID        int64
	CompanyID int64
	Name      string
	DepartsAt time.Time
	ArrivesAt time.Time
	BasePrice int64
	NoOfSeats int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the shape of a flight. Schedule overlap and capacity
// against existing bookings are checked separately inside a transaction.
func (f Flight) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(f.Name) {
		errs.Add("name", MsgBlank)
	}
	if f.CompanyID <= 0 {
		errs.Add("company", MsgMustExist)
	}
	if f.DepartsAt.IsZero() {
		errs.Add("departs_at", MsgBlank)
	}
	if f.ArrivesAt.IsZero() {
		errs.Add("arrives_at", MsgBlank)
	}
	if !f.DepartsAt.IsZero() && !f.ArrivesAt.IsZero() && !f.DepartsAt.Before(f.ArrivesAt) {
		errs.Add("departs_at", "must be before arrives_at")
	}
	if f.BasePrice <= 0 {
		errs.Add("base_price", MsgPositive)
	}
	if f.NoOfSeats <= 0 {
		errs.Add("no_of_seats", MsgPositive)
	}
	return errs
}
