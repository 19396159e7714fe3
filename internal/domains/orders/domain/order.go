package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidProduct    = errors.New("product id must be greater than zero")
	ErrInvalidBuyer      = errors.New("buyer id must be greater than zero")
	ErrInvalidPrice      = errors.New("unit price must be greater than zero")
	ErrEmptyOrderNumber  = errors.New("order number is required")
	ErrSelfPurchase      = errors.New("sellers cannot buy their own product")
	ErrUnknownAction     = errors.New("unknown order action")
	ErrNotParticipant    = errors.New("user is neither buyer nor seller of this order")
	ErrActionNotAllowed  = errors.New("user is not allowed to perform this action")
	ErrInvalidTransition = errors.New("order cannot perform this action in its current state")
	ErrRemarkTooLong     = errors.New("remark must be at most 500 characters")
)

const maxRemarkLength = 500

// Snapshot freezes the listing as the buyer saw it when ordering.
type Snapshot struct {
	Title    string
	ImageURL string
	Price    decimal.Decimal
}

// Draft carries everything needed to open a new order.
type Draft struct {
	Number    string
	ProductID int64
	BuyerID   int64
	SellerID  int64
	Snapshot  Snapshot
	Quantity  int32
	Remark    string
	At        time.Time
}

// Order is the purchase aggregate. Number, snapshot and total never change after creation.
type Order struct {
	ID           int64
	Number       string
	ProductID    int64
	BuyerID      int64
	SellerID     int64
	Snapshot     Snapshot
	Quantity     int32
	Total        decimal.Decimal
	Status       Status
	CreatedAt    time.Time
	PaidAt       *time.Time
	ShippedAt    *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	BuyerRemark  string
	SellerRemark string
}

// NewOrder validates the draft and returns a PENDING order with its total computed.
func NewOrder(d Draft) (*Order, error) {
	if strings.TrimSpace(d.Number) == "" {
		return nil, ErrEmptyOrderNumber
	}
	if d.ProductID <= 0 {
		return nil, ErrInvalidProduct
	}
	if d.BuyerID <= 0 {
		return nil, ErrInvalidBuyer
	}
	if d.BuyerID == d.SellerID {
		return nil, ErrSelfPurchase
	}
	if d.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !d.Snapshot.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	remark := strings.TrimSpace(d.Remark)
	if len([]rune(remark)) > maxRemarkLength {
		return nil, ErrRemarkTooLong
	}
	price := d.Snapshot.Price.Round(2)
	return &Order{
		Number:    d.Number,
		ProductID: d.ProductID,
		BuyerID:   d.BuyerID,
		SellerID:  d.SellerID,
		Snapshot: Snapshot{
			Title:    d.Snapshot.Title,
			ImageURL: d.Snapshot.ImageURL,
			Price:    price,
		},
		Quantity:    d.Quantity,
		Total:       price.Mul(decimal.NewFromInt32(d.Quantity)),
		Status:      StatusPending,
		CreatedAt:   d.At,
		BuyerRemark: remark,
	}, nil
}

// RoleOf returns the role userID plays in the order.
func (o *Order) RoleOf(userID int64) (Role, bool) {
	switch userID {
	case o.BuyerID:
		return RoleBuyer, true
	case o.SellerID:
		return RoleSeller, true
	default:
		return "", false
	}
}

// IsParticipant reports whether userID is the buyer or the seller.
func (o *Order) IsParticipant(userID int64) bool {
	_, ok := o.RoleOf(userID)
	return ok
}

// Apply runs one lifecycle action for userID at the given instant. The actor
// is checked before the state.
func (o *Order) Apply(action Action, userID int64, at time.Time) error {
	t, ok := transitions[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	role, ok := o.RoleOf(userID)
	if !ok {
		return ErrNotParticipant
	}
	if !t.allows(role) {
		return fmt.Errorf("%w: only the %s may %s", ErrActionNotAllowed, joinRoles(t.roles), action)
	}
	if o.Status != t.from {
		return fmt.Errorf("%w: cannot %s a %s order", ErrInvalidTransition, action, strings.ToLower(string(o.Status)))
	}
	stamp := at
	o.Status = t.to
	switch t.to {
	case StatusPaid:
		o.PaidAt = &stamp
	case StatusShipped:
		o.ShippedAt = &stamp
	case StatusCompleted:
		o.CompletedAt = &stamp
	case StatusCancelled:
		o.CancelledAt = &stamp
	}
	return nil
}

// SetSellerRemark records the seller's note, typically tracking info on shipment.
func (o *Order) SetSellerRemark(remark string) error {
	remark = strings.TrimSpace(remark)
	if len([]rune(remark)) > maxRemarkLength {
		return ErrRemarkTooLong
	}
	o.SellerRemark = remark
	return nil
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.PaidAt = cloneTime(o.PaidAt)
	c.ShippedAt = cloneTime(o.ShippedAt)
	c.CompletedAt = cloneTime(o.CompletedAt)
	c.CancelledAt = cloneTime(o.CancelledAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func joinRoles(roles []Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, " or ")
}
