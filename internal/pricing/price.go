// Package pricing computes the time-sensitive seat price of a flight.
package pricing

import (
	"math"
	"time"
)

// SurgeWindowDays is how far ahead of departure the price starts rising.
const SurgeWindowDays = 15

// CurrentPrice returns basePrice while departure is SurgeWindowDays or more
// away, then rises linearly to twice basePrice on the day of departure.
// The result is rounded half away from zero.
func CurrentPrice(basePrice int64, departsAt, now time.Time) int64 {
	days := DaysUntilDeparture(departsAt, now)
	if days >= SurgeWindowDays {
		return basePrice
	}
	factor := 1 + (1.0/SurgeWindowDays)*float64(SurgeWindowDays-days)
	return int64(math.Round(float64(basePrice) * factor))
}

// DaysUntilDeparture counts whole calendar days from now's date to the
// departure date, both taken in now's location. Past departures count as 0.
func DaysUntilDeparture(departsAt, now time.Time) int {
	loc := now.Location()
	from := civilDate(now.In(loc))
	to := civilDate(departsAt.In(loc))
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
