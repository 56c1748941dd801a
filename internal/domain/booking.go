package domain

import "time"

type Booking struct {
	ID        int64
	FlightID  int64
	UserID    int64
	NoOfSeats int
	SeatPrice int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPrice is derived and never stored.
func (b Booking) TotalPrice() int64 {
	return b.SeatPrice * int64(b.NoOfSeats)
}

// ValidateInput checks the fields a caller supplies. The seat price is set
// by the server once the flight is known, so it is left to Validate.
func (b Booking) ValidateInput() FieldErrors {
	errs := FieldErrors{}
	if b.FlightID <= 0 {
		errs.Add("flight", MsgMustExist)
	}
	if b.UserID <= 0 {
		errs.Add("user", MsgMustExist)
	}
	if b.NoOfSeats <= 0 {
		errs.Add("no_of_seats", MsgPositive)
	}
	return errs
}

func (b Booking) Validate() FieldErrors {
	errs := b.ValidateInput()
	if b.SeatPrice <= 0 {
		errs.Add("seat_price", MsgPositive)
	}
	return errs
}
