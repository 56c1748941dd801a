// Package guard holds the pure checks that protect flight schedules and
// flight capacity. Guards never touch storage: callers load a consistent
// snapshot of sibling rows inside the same transaction that performs the
// write and pass it in.
package guard

import (
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

const MsgOverlap = "overlaps with another flight of the same company"

// Overlaps reports whether [d1, a1) and [d2, a2) share an instant.
// Back-to-back windows (a1 == d2) do not overlap.
func Overlaps(d1, a1, d2, a2 time.Time) bool {
	return d1.Before(a2) && d2.Before(a1)
}

// CheckSchedule compares candidate with every sibling flight of the same
// company, skipping the candidate itself when it is already persisted.
//
// departs_at is flagged when the candidate departs inside a sibling's
// window, arrives_at when it arrives inside one. A candidate that fully
// encloses a sibling gets both.
func CheckSchedule(candidate domain.Flight, siblings []domain.Flight) domain.FieldErrors {
	errs := domain.FieldErrors{}
	for _, s := range siblings {
		if candidate.ID != 0 && s.ID == candidate.ID {
			continue
		}
		if s.CompanyID != candidate.CompanyID {
			continue
		}
		if !Overlaps(candidate.DepartsAt, candidate.ArrivesAt, s.DepartsAt, s.ArrivesAt) {
			continue
		}
		departsInside := within(candidate.DepartsAt, s)
		arrivesInside := !candidate.ArrivesAt.After(s.ArrivesAt) && candidate.ArrivesAt.After(s.DepartsAt)
		if departsInside || !arrivesInside {
			errs.Add("departs_at", MsgOverlap)
		}
		if arrivesInside || !departsInside {
			errs.Add("arrives_at", MsgOverlap)
		}
	}
	return errs
}

func within(t time.Time, f domain.Flight) bool {
	return !t.Before(f.DepartsAt) && t.Before(f.ArrivesAt)
}
