// Package access decides whether a principal may perform an action on a
// resource. Decisions are pure: no storage, no side effects.
package access

import (
	"github.com/Domenick1991/skybooking/internal/domain"
)

type Action string

const (
	ActionListCompanies Action = "companies:list"
	ActionViewCompany   Action = "companies:view"
	ActionCreateCompany Action = "companies:create"
	ActionUpdateCompany Action = "companies:update"
	ActionDeleteCompany Action = "companies:delete"

	ActionListFlights  Action = "flights:list"
	ActionViewFlight   Action = "flights:view"
	ActionCreateFlight Action = "flights:create"
	ActionUpdateFlight Action = "flights:update"
	ActionDeleteFlight Action = "flights:delete"

	ActionListBookings  Action = "bookings:list"
	ActionViewBooking   Action = "bookings:view"
	ActionCreateBooking Action = "bookings:create"
	ActionUpdateBooking Action = "bookings:update"
	ActionDeleteBooking Action = "bookings:delete"

	ActionListUsers      Action = "users:list"
	ActionViewUser       Action = "users:view"
	ActionCreateUser     Action = "users:create"
	ActionUpdateUser     Action = "users:update"
	ActionDeleteUser     Action = "users:delete"
	ActionChangePassword Action = "users:change_password"

	ActionLogout Action = "session:logout"
)

type kind int

const (
	// adminOnly actions are open to administrators alone.
	adminOnly kind = iota
	// selfScoped actions are open to the owner of the target and to admins.
	selfScoped
	// public actions need no principal at all.
	public
	// listing actions need a principal; results are narrowed by Scope.
	listing
)

type rule struct {
	kind         kind
	requiresAuth bool
}

var rules = map[Action]rule{
	ActionListCompanies: {kind: public},
	ActionViewCompany:   {kind: public},
	ActionCreateCompany: {kind: adminOnly, requiresAuth: true},
	ActionUpdateCompany: {kind: adminOnly, requiresAuth: true},
	ActionDeleteCompany: {kind: adminOnly, requiresAuth: true},

	ActionListFlights:  {kind: public},
	ActionViewFlight:   {kind: public},
	ActionCreateFlight: {kind: adminOnly, requiresAuth: true},
	ActionUpdateFlight: {kind: adminOnly, requiresAuth: true},
	ActionDeleteFlight: {kind: adminOnly, requiresAuth: true},

	ActionListBookings:  {kind: listing, requiresAuth: true},
	ActionViewBooking:   {kind: selfScoped, requiresAuth: true},
	ActionCreateBooking: {kind: selfScoped, requiresAuth: true},
	ActionUpdateBooking: {kind: selfScoped, requiresAuth: true},
	ActionDeleteBooking: {kind: selfScoped, requiresAuth: true},

	ActionListUsers:      {kind: listing, requiresAuth: true},
	ActionViewUser:       {kind: selfScoped, requiresAuth: true},
	ActionCreateUser:     {kind: public},
	ActionUpdateUser:     {kind: selfScoped, requiresAuth: true},
	ActionDeleteUser:     {kind: selfScoped, requiresAuth: true},
	ActionChangePassword: {kind: selfScoped, requiresAuth: true},

	ActionLogout: {kind: selfScoped, requiresAuth: true},
}

// Target describes the resource an action is aimed at.
type Target struct {
	// OwnerID is the user that owns the resource, or 0 when it has none.
	OwnerID int64
	// Privileged lists the privileged fields the command sets or changes,
	// such as a user's role or a booking's owner.
	Privileged []string
}

// Owned is a Target for a resource owned by ownerID.
func Owned(ownerID int64) Target {
	return Target{OwnerID: ownerID}
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a denial into the matching domain error.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == domain.ReasonUnauthenticated:
		return domain.ErrUnauthenticated
	default:
		return domain.Forbidden(d.Reason)
	}
}

// Authorize evaluates, in order: authentication, admin bypass, privileged
// fields, ownership, public access. A privileged field is checked before
// ownership so that owning a record never lets a non-admin change its role
// or owner.
func Authorize(p domain.Principal, action Action, target Target) Decision {
	r, ok := rules[action]
	if !ok {
		return deny(domain.ReasonForbidden)
	}
	if r.requiresAuth && !p.Authenticated() {
		return deny(domain.ReasonUnauthenticated)
	}
	if p.IsAdmin() {
		return allow()
	}
	if len(target.Privileged) > 0 {
		return deny(domain.ReasonPrivilegedField)
	}
	switch r.kind {
	case selfScoped:
		if p.Authenticated() && target.OwnerID == p.ID {
			return allow()
		}
	case public, listing:
		return allow()
	}
	return deny(domain.ReasonForbidden)
}

// Scope narrows a listing query. A zero OwnerID means every row.
type Scope struct {
	OwnerID int64
}

func (s Scope) All() bool { return s.OwnerID == 0 }

// ListScope shapes the query for a listing action: admins and public
// listings see everything, everybody else only what they own.
func ListScope(p domain.Principal, action Action) (Scope, error) {
	if err := Authorize(p, action, Target{}).Err(); err != nil {
		return Scope{}, err
	}
	if rules[action].kind == public || p.IsAdmin() {
		return Scope{}, nil
	}
	return Scope{OwnerID: p.ID}, nil
}
