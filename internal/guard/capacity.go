package guard

import (
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

const (
	MsgOverbooked    = "exceeds the seats available on the flight"
	MsgPastDeparture = "can't be in the past"
	MsgBelowBooked   = "is less than booked seats"
)

// BookedSeats sums the seats of bookings on flightID, leaving out excludeID.
func BookedSeats(bookings []domain.Booking, flightID, excludeID int64) int {
	total := 0
	for _, b := range bookings {
		if b.FlightID != flightID {
			continue
		}
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		total += b.NoOfSeats
	}
	return total
}

// CheckCapacity rejects a candidate booking whose seats would push the
// flight over capacity. Filling the flight exactly is allowed. The candidate
// itself is excluded from existing when it is being revalidated.
func CheckCapacity(flight domain.Flight, existing []domain.Booking, candidate domain.Booking) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if BookedSeats(existing, flight.ID, candidate.ID)+candidate.NoOfSeats > flight.NoOfSeats {
		errs.Add("no_of_seats", MsgOverbooked)
	}
	return errs
}

// CheckDeparture rejects bookings on flights that do not depart strictly
// after now. It is reported on "flight" so callers can tell it apart from
// overbooking.
func CheckDeparture(flight domain.Flight, now time.Time) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if !flight.DepartsAt.After(now) {
		errs.Add("flight", MsgPastDeparture)
	}
	return errs
}

// CheckBooking runs both booking rules and reports every violation.
func CheckBooking(flight domain.Flight, existing []domain.Booking, candidate domain.Booking, now time.Time) domain.FieldErrors {
	errs := CheckDeparture(flight, now)
	errs.Merge(CheckCapacity(flight, existing, candidate))
	return errs
}

// CheckCapacityShrink keeps an updated flight's seat count at or above the
// seats already booked on it.
func CheckCapacityShrink(flight domain.Flight, existing []domain.Booking) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if BookedSeats(existing, flight.ID, 0) > flight.NoOfSeats {
		errs.Add("no_of_seats", MsgBelowBooked)
	}
	return errs
}
