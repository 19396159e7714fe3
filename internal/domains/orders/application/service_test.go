package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordersmemory "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/memory"
	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	productsmemory "github.com/Apurer/secondhand-market/internal/domains/products/adapters/memory"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

const (
	sellerS int64 = 10
	buyerB  int64 = 20
	buyerC  int64 = 30
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	svc      *Service
	products *productsmemory.Repository
	store    *ordersmemory.Store
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	products := productsmemory.NewRepository()
	store := ordersmemory.NewStore(products)
	return &fixture{svc: NewService(store, opts...), products: products, store: store}
}

func (f *fixture) listProduct(t *testing.T, sellerID int64, price string) *productdomain.Product {
	t.Helper()
	p, err := productdomain.NewProduct(sellerID, "Film camera", "works fine", decimal.RequireFromString(price), []string{"cover.jpg", "back.jpg"})
	require.NoError(t, err)
	saved, err := f.products.Create(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func (f *fixture) productStatus(t *testing.T, id int64) productdomain.Status {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func qty(n int32) *int32 { return &n }

func TestCreateOrder_SnapshotsListing(t *testing.T) {
	f := newFixture(t, WithClock(newStepClock().Now))
	product := f.listProduct(t, sellerS, "100.00")

	order, err := f.svc.CreateOrder(context.Background(), types.CreateOrderInput{
		BuyerID:   buyerB,
		ProductID: product.ID,
		Quantity:  qty(2),
		Remark:    "  please wrap it ",
	})
	require.NoError(t, err)
	require.Positive(t, order.ID)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, sellerS, order.SellerID)
	require.Equal(t, "Film camera", order.Snapshot.Title)
	require.Equal(t, "cover.jpg", order.Snapshot.ImageURL)
	require.True(t, order.Total.Equal(decimal.RequireFromString("200.00")))
	require.Equal(t, "please wrap it", order.BuyerRemark)
	require.Regexp(t, `^ORD\d{14}[0-9A-F]{8}$`, order.Number)

	require.Equal(t, productdomain.StatusOnSale, f.productStatus(t, product.ID))
}

func TestCreateOrder_DefaultsQuantityToOne(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "12.50")

	order, err := f.svc.CreateOrder(context.Background(), types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)
	require.Equal(t, int32(1), order.Quantity)
	require.True(t, order.Total.Equal(decimal.RequireFromString("12.50")))
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID, Quantity: qty(0)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: 0, ProductID: product.ID})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: -1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrder_MissingProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOrder(context.Background(), types.CreateOrderInput{BuyerID: buyerB, ProductID: 99})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrder_SellerCannotBuyOwnProduct(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	_, err := f.svc.CreateOrder(context.Background(), types.CreateOrderInput{BuyerID: sellerS, ProductID: product.ID})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateOrder_ProductNotOnSale(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	swapped, err := f.products.CompareAndSetStatus(context.Background(), product.ID, productdomain.StatusOnSale, productdomain.StatusWithdrawn)
	require.NoError(t, err)
	require.True(t, swapped)

	_, err = f.svc.CreateOrder(context.Background(), types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestOrderLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t, WithClock(newStepClock().Now))
	product := f.listProduct(t, sellerS, "100.00")
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	paid, err := f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Status)
	require.Equal(t, productdomain.StatusSold, f.productStatus(t, product.ID))

	shipped, err := f.svc.ShipOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: sellerS, Remark: "tracking SF123"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, shipped.Status)
	require.Equal(t, "tracking SF123", shipped.SellerRemark)

	completed, err := f.svc.CompleteOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, completed.Status)

	require.NotNil(t, completed.PaidAt)
	require.NotNil(t, completed.ShippedAt)
	require.NotNil(t, completed.CompletedAt)
	require.Nil(t, completed.CancelledAt)
	require.True(t, order.CreatedAt.Before(*completed.PaidAt))
	require.True(t, completed.PaidAt.Before(*completed.ShippedAt))
	require.True(t, completed.ShippedAt.Before(*completed.CompletedAt))
	require.Equal(t, productdomain.StatusSold, f.productStatus(t, product.ID))
}

func TestOrderLifecycle_TotalSurvivesPriceEdit(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "100.00")
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID, Quantity: qty(3)})
	require.NoError(t, err)

	edited := product.Clone()
	require.NoError(t, edited.Revise(edited.Title, edited.Description, decimal.RequireFromString("80.00"), edited.ImageURLs))
	_, err = f.products.Update(ctx, edited)
	require.NoError(t, err)

	paid, err := f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)
	require.True(t, paid.Total.Equal(decimal.RequireFromString("300.00")))
	require.True(t, paid.Snapshot.Price.Equal(decimal.RequireFromString("100.00")))
}

func TestOrderLifecycle_WrongActor(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: sellerS})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerC})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)

	_, err = f.svc.ShipOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ShipOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: sellerS})
	require.NoError(t, err)

	_, err = f.svc.CompleteOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: sellerS})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestOrderLifecycle_OutOfOrderTransitions(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	_, err = f.svc.ShipOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: sellerS})
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = f.svc.CompleteOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelOrder_OnlyFromPending(t *testing.T) {
	ctx := context.Background()
	steps := map[domain.Status][]func(*Service, int64) error{
		domain.StatusPaid: {
			func(s *Service, id int64) error {
				_, err := s.PayOrder(ctx, types.TransitionInput{OrderID: id, UserID: buyerB})
				return err
			},
		},
		domain.StatusShipped: {
			func(s *Service, id int64) error {
				_, err := s.PayOrder(ctx, types.TransitionInput{OrderID: id, UserID: buyerB})
				return err
			},
			func(s *Service, id int64) error {
				_, err := s.ShipOrder(ctx, types.TransitionInput{OrderID: id, UserID: sellerS})
				return err
			},
		},
		domain.StatusCompleted: {
			func(s *Service, id int64) error {
				_, err := s.PayOrder(ctx, types.TransitionInput{OrderID: id, UserID: buyerB})
				return err
			},
			func(s *Service, id int64) error {
				_, err := s.ShipOrder(ctx, types.TransitionInput{OrderID: id, UserID: sellerS})
				return err
			},
			func(s *Service, id int64) error {
				_, err := s.CompleteOrder(ctx, types.TransitionInput{OrderID: id, UserID: buyerB})
				return err
			},
		},
		domain.StatusCancelled: {
			func(s *Service, id int64) error {
				_, err := s.CancelOrder(ctx, types.TransitionInput{OrderID: id, UserID: buyerB})
				return err
			},
		},
	}

	for status, path := range steps {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			product := f.listProduct(t, sellerS, "10")
			order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
			require.NoError(t, err)
			for _, step := range path {
				require.NoError(t, step(f.svc, order.ID))
			}

			_, err = f.svc.CancelOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
			require.ErrorIs(t, err, ErrInvalidState)
			_, err = f.svc.CancelOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: sellerS})
			require.ErrorIs(t, err, ErrInvalidState)

			detail, err := f.svc.GetOrder(ctx, types.OrderLookup{OrderID: order.ID, UserID: buyerB})
			require.NoError(t, err)
			require.Equal(t, status, detail.Order.Status)
		})
	}
}

func TestCancelOrder_ReleasesProductForAnotherBuyer(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "100.00")
	ctx := context.Background()

	first, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerC, ProductID: product.ID})
	require.ErrorIs(t, err, ErrInvalidState)

	cancelled, err := f.svc.CancelOrder(ctx, types.TransitionInput{OrderID: first.ID, UserID: sellerS})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Equal(t, productdomain.StatusOnSale, f.productStatus(t, product.ID))

	second, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerC, ProductID: product.ID})
	require.NoError(t, err)
	require.NotEqual(t, first.Number, second.Number)
}

func TestCreateOrder_SoldProductRejectsNewOrders(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)
	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerC, ProductID: product.ID})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateOrder_ConcurrentBuyersOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "100.00")

	const buyers = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, buyers)
	created := make([]bool, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.svc.CreateOrder(context.Background(), types.CreateOrderInput{
				BuyerID:   int64(1000 + i),
				ProductID: product.ID,
			})
			errs[i] = err
			created[i] = err == nil
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for i := range errs {
		if created[i] {
			wins++
			continue
		}
		kind := KindOf(errs[i])
		require.Contains(t, []Kind{KindInvalidState, KindConflict}, kind, "unexpected error: %v", errs[i])
	}
	require.Equal(t, 1, wins)

	page, err := f.svc.ListOrders(context.Background(), types.ListOrdersInput{UserID: sellerS, Role: domain.RoleSeller})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
}

func TestPayOrder_WithdrawnProductRollsBack(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	swapped, err := f.products.CompareAndSetStatus(ctx, product.ID, productdomain.StatusOnSale, productdomain.StatusWithdrawn)
	require.NoError(t, err)
	require.True(t, swapped)

	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.ErrorIs(t, err, ErrInvalidState)

	detail, err := f.svc.GetOrder(ctx, types.OrderLookup{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, detail.Order.Status)
	require.Nil(t, detail.Order.PaidAt)
	require.Equal(t, productdomain.StatusWithdrawn, f.productStatus(t, product.ID))
}

func TestTransition_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PayOrder(context.Background(), types.TransitionInput{OrderID: 404, UserID: buyerB})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.PayOrder(context.Background(), types.TransitionInput{OrderID: 0, UserID: buyerB})
	require.ErrorIs(t, err, ErrValidation)
}

type scriptedNumbers struct {
	mu      sync.Mutex
	numbers []string
	calls   int
}

func (s *scriptedNumbers) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.numbers[s.calls%len(s.numbers)]
	s.calls++
	return n
}

func TestCreateOrder_RetriesNumberCollision(t *testing.T) {
	numbers := &scriptedNumbers{numbers: []string{"ORD-TAKEN"}}
	f := newFixture(t, WithNumberSource(numbers))
	ctx := context.Background()
	first := f.listProduct(t, sellerS, "10")
	second := f.listProduct(t, sellerS, "20")

	_, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: first.ID})
	require.NoError(t, err)

	numbers.numbers = []string{"ORD-TAKEN", "ORD-TAKEN", "ORD-FRESH"}
	numbers.calls = 0
	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: second.ID})
	require.NoError(t, err)
	require.Equal(t, "ORD-FRESH", order.Number)
	require.Equal(t, 3, numbers.calls)
}

func TestCreateOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	numbers := &scriptedNumbers{numbers: []string{"ORD-TAKEN"}}
	f := newFixture(t, WithNumberSource(numbers))
	ctx := context.Background()
	first := f.listProduct(t, sellerS, "10")
	second := f.listProduct(t, sellerS, "20")

	_, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: first.ID})
	require.NoError(t, err)

	numbers.calls = 0
	_, err = f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: second.ID})
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, maxNumberAttempts, numbers.calls)
}

func TestCreateOrder_IdempotencyReplay(t *testing.T) {
	f := newFixture(t, WithIdempotencyStore(ordersmemory.NewIdempotencyStore()))
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()
	input := types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID, IdempotencyKey: "key-1"}

	first, err := f.svc.CreateOrder(ctx, input)
	require.NoError(t, err)

	replayed, err := f.svc.CreateOrder(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.ID, replayed.ID)
	require.Equal(t, first.Number, replayed.Number)

	input.Quantity = qty(2)
	_, err = f.svc.CreateOrder(ctx, input)
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateOrder_IdempotencyKeyScopedByBuyer(t *testing.T) {
	store := ordersmemory.NewIdempotencyStore()
	f := newFixture(t, WithIdempotencyStore(store))
	first := f.listProduct(t, sellerS, "10")
	second := f.listProduct(t, sellerS, "10")
	ctx := context.Background()

	mine, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: first.ID, IdempotencyKey: "shared"})
	require.NoError(t, err)
	theirs, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerC, ProductID: second.ID, IdempotencyKey: "shared"})
	require.NoError(t, err)
	require.NotEqual(t, mine.ID, theirs.ID)
	require.Equal(t, buyerC, theirs.BuyerID)

	replayed, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerC, ProductID: second.ID, IdempotencyKey: "shared"})
	require.NoError(t, err)
	require.Equal(t, theirs.ID, replayed.ID)

	record, err := store.Get(ctx, idempotencyScope(buyerB, "shared"))
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, mine.ID, record.OrderID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestLifecycle_PublishesEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	f := newFixture(t, WithEventPublisher(publisher))
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)
	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)
	_, err = f.svc.ShipOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: sellerS})
	require.NoError(t, err)
	_, err = f.svc.CompleteOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)

	// rejected transitions publish nothing
	_, err = f.svc.CancelOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.Error(t, err)

	var got []domain.EventType
	for _, e := range publisher.events {
		require.Equal(t, order.Number, e.OrderNo)
		got = append(got, e.Type)
	}
	require.Equal(t, []domain.EventType{
		domain.EventOrderCreated,
		domain.EventOrderPaid,
		domain.EventOrderShipped,
		domain.EventOrderCompleted,
	}, got)
}

func TestLifecycle_PublishFailureDoesNotFailTransition(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	f := newFixture(t, WithEventPublisher(publisher))
	product := f.listProduct(t, sellerS, "10")

	order, err := f.svc.CreateOrder(context.Background(), types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
}

func TestTransitionMatrix(t *testing.T) {
	actions := map[domain.Action]func(*Service, types.TransitionInput) (*domain.Order, error){
		domain.ActionPay:      func(s *Service, in types.TransitionInput) (*domain.Order, error) { return s.PayOrder(context.Background(), in) },
		domain.ActionShip:     func(s *Service, in types.TransitionInput) (*domain.Order, error) { return s.ShipOrder(context.Background(), in) },
		domain.ActionComplete: func(s *Service, in types.TransitionInput) (*domain.Order, error) { return s.CompleteOrder(context.Background(), in) },
		domain.ActionCancel:   func(s *Service, in types.TransitionInput) (*domain.Order, error) { return s.CancelOrder(context.Background(), in) },
	}
	actors := map[domain.Action]int64{
		domain.ActionPay:      buyerB,
		domain.ActionShip:     sellerS,
		domain.ActionComplete: buyerB,
		domain.ActionCancel:   buyerB,
	}
	allowed := map[domain.Status]domain.Action{
		domain.StatusPending: domain.ActionPay,
		domain.StatusPaid:    domain.ActionShip,
		domain.StatusShipped: domain.ActionComplete,
	}
	paths := map[domain.Status][]domain.Action{
		domain.StatusPending:   nil,
		domain.StatusPaid:      {domain.ActionPay},
		domain.StatusShipped:   {domain.ActionPay, domain.ActionShip},
		domain.StatusCompleted: {domain.ActionPay, domain.ActionShip, domain.ActionComplete},
		domain.StatusCancelled: {domain.ActionCancel},
	}

	for status, path := range paths {
		for action, run := range actions {
			t.Run(fmt.Sprintf("%s/%s", status, action), func(t *testing.T) {
				f := newFixture(t)
				product := f.listProduct(t, sellerS, "10")
				order, err := f.svc.CreateOrder(context.Background(), types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
				require.NoError(t, err)
				for _, step := range path {
					_, err := actions[step](f.svc, types.TransitionInput{OrderID: order.ID, UserID: actors[step]})
					require.NoError(t, err)
				}

				_, err = run(f.svc, types.TransitionInput{OrderID: order.ID, UserID: actors[action]})
				legal := allowed[status] == action || (status == domain.StatusPending && action == domain.ActionCancel)
				if legal {
					require.NoError(t, err)
					return
				}
				require.ErrorIs(t, err, ErrInvalidState)
			})
		}
	}
}
