package domain

import (
	"errors"
	"strings"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses are the states that hold a product: at most one order per
// product may be in any of them.
var ActiveStatuses = []Status{StatusPending, StatusPaid, StatusShipped}

var ErrInvalidStatus = errors.New("order status is invalid")

// IsActive reports whether the order still holds its product.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus accepts status names in any case ("paid", "PAID").
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Action is a lifecycle operation requested by a participant.
type Action string

const (
	ActionPay      Action = "pay"
	ActionShip     Action = "ship"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Role is the part a user plays in a given order.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

type transition struct {
	from  Status
	to    Status
	roles []Role
}

// transitions is the complete lifecycle table. Any (state, action) pair not
// listed is an invalid transition.
var transitions = map[Action]transition{
	ActionPay:      {from: StatusPending, to: StatusPaid, roles: []Role{RoleBuyer}},
	ActionShip:     {from: StatusPaid, to: StatusShipped, roles: []Role{RoleSeller}},
	ActionComplete: {from: StatusShipped, to: StatusCompleted, roles: []Role{RoleBuyer}},
	ActionCancel:   {from: StatusPending, to: StatusCancelled, roles: []Role{RoleBuyer, RoleSeller}},
}

// Target returns the state an action leads to.
func (a Action) Target() (Status, bool) {
	t, ok := transitions[a]
	return t.to, ok
}

func (t transition) allows(role Role) bool {
	for _, r := range t.roles {
		if r == role {
			return true
		}
	}
	return false
}
