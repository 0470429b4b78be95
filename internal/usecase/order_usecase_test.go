package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderUC(f *fixture, pub usecase.OrderEventPublisher) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(f.tx, f.orders, pub, discardLogger())
}

func TestListOrders_OwnOnly(t *testing.T) {
	f := newFixture()
	uc := newOrderUC(f, nil)

	f.orders.On("ListByUserID", mock.Anything, "u1").
		Return([]model.Order{{ID: "o1", UserID: "u1"}}, nil).Once()

	orders, err := uc.ListOrders(context.Background(), shopper)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	f.orders.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestListOrders_AdminSeesAll(t *testing.T) {
	f := newFixture()
	uc := newOrderUC(f, nil)

	f.orders.On("ListAll", mock.Anything).
		Return([]model.Order{{ID: "o1"}, {ID: "o2"}}, nil).Once()

	orders, err := uc.ListOrders(context.Background(), usecase.Actor{UserID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestListOrders_DBError(t *testing.T) {
	f := newFixture()
	uc := newOrderUC(f, nil)

	f.orders.On("ListByUserID", mock.Anything, "u1").Return(nil, errDB).Once()

	orders, err := uc.ListOrders(context.Background(), shopper)
	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
	assert.NotNil(t, orders)
}

func TestPlaceOrder_UsesCatalogPrice(t *testing.T) {
	f := newFixture()
	uc := newOrderUC(f, nil)

	clientTotal := decimal.NewFromInt(1)

	f.products.On("FindByIDs", mock.Anything, []string{"p1"}).
		Return([]model.Product{ring("p1", "120")}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.Status == model.OrderStatusPending &&
			o.Total.Equal(decimal.NewFromInt(240)) &&
			o.StripeSessionID != nil && *o.StripeSessionID == "cs_9"
	})).Return("o9", nil).Once()
	f.orderItems.On("CreateBulk", mock.Anything, "o9", mock.Anything).Return(nil).Once()

	order, err := uc.PlaceOrder(context.Background(), shopper, usecase.CreateOrderInput{
		Items:           []usecase.LineItemInput{{ID: "p1", Quantity: 2}},
		Total:           &clientTotal,
		StripeSessionID: " cs_9 ",
	})

	require.NoError(t, err)
	assert.Equal(t, "o9", order.ID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(240)))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Ring p1", order.Items[0].Name)
	f.orders.AssertExpectations(t)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture()
	uc := newOrderUC(f, nil)

	_, err := uc.PlaceOrder(context.Background(), usecase.Actor{}, usecase.CreateOrderInput{})
	assertHTTPError(t, err, http.StatusUnauthorized, "unauthorized")

	_, err = uc.PlaceOrder(context.Background(), shopper, usecase.CreateOrderInput{})
	assertHTTPError(t, err, http.StatusBadRequest, "cart is empty")

	_, err = uc.PlaceOrder(context.Background(), shopper, usecase.CreateOrderInput{
		Items: []usecase.LineItemInput{{ID: " ", Quantity: 1}},
	})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid item id")

	assert.Equal(t, 0, f.tx.calls)
}

func TestApplyPaymentEvent_CompletedMarksPaid(t *testing.T) {
	f := newFixture()
	pub := &PublisherSpy{}
	uc := newOrderUC(f, pub)

	f.orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", UserID: "u1", Status: model.OrderStatusPending}, nil).Once()
	f.orders.On("TransitionStatus", mock.Anything, "o1", model.OrderStatusPending, model.OrderStatusPaid).
		Return(true, nil).Once()
	f.orders.On("SetStripeSessionID", mock.Anything, "o1", "cs_1").Return(nil).Once()
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Actor == model.AuditActorPaymentGateway &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceID == "o1" &&
			l.AfterJSON == `{"status":"paid"}`
	})).Return(nil).Once()

	err := uc.ApplyPaymentEvent(context.Background(), usecase.PaymentEvent{
		Type:      usecase.PaymentEventCheckoutCompleted,
		SessionID: "cs_1",
		OrderID:   "o1",
	})

	require.NoError(t, err)
	f.orders.AssertExpectations(t)
	f.audits.AssertExpectations(t)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "o1", events[0].OrderID)
	assert.Equal(t, "u1", events[0].UserID)
	assert.Equal(t, model.OrderStatusPending, events[0].From)
	assert.Equal(t, model.OrderStatusPaid, events[0].To)
}

func TestApplyPaymentEvent_ExpiredMarksFailed(t *testing.T) {
	f := newFixture()
	pub := &PublisherSpy{}
	uc := newOrderUC(f, pub)

	f.orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", UserID: "u1", Status: model.OrderStatusPending}, nil).Once()
	f.orders.On("TransitionStatus", mock.Anything, "o1", model.OrderStatusPending, model.OrderStatusFailed).
		Return(true, nil).Once()
	f.audits.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	err := uc.ApplyPaymentEvent(context.Background(), usecase.PaymentEvent{
		Type:      usecase.PaymentEventCheckoutExpired,
		SessionID: "cs_1",
		OrderID:   "o1",
	})

	require.NoError(t, err)
	f.orders.AssertNotCalled(t, "SetStripeSessionID", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, model.OrderStatusFailed, pub.Events()[0].To)
}

func TestApplyPaymentEvent_Ignored(t *testing.T) {
	tests := []struct {
		name  string
		ev    usecase.PaymentEvent
		setup func(f *fixture)
	}{
		{
			name: "unknown type",
			ev:   usecase.PaymentEvent{Type: "payment_intent.created", OrderID: "o1"},
		},
		{
			name: "missing order id",
			ev:   usecase.PaymentEvent{Type: usecase.PaymentEventCheckoutCompleted},
		},
		{
			name: "unknown order",
			ev:   usecase.PaymentEvent{Type: usecase.PaymentEventCheckoutCompleted, OrderID: "ghost"},
			setup: func(f *fixture) {
				f.orders.On("FindByID", mock.Anything, "ghost").Return(model.Order{}, repo.ErrNotFound).Once()
			},
		},
		{
			name: "redelivered",
			ev:   usecase.PaymentEvent{Type: usecase.PaymentEventCheckoutCompleted, OrderID: "o1"},
			setup: func(f *fixture) {
				f.orders.On("FindByID", mock.Anything, "o1").
					Return(model.Order{ID: "o1", Status: model.OrderStatusPaid}, nil).Once()
			},
		},
		{
			name: "already shipped",
			ev:   usecase.PaymentEvent{Type: usecase.PaymentEventCheckoutExpired, OrderID: "o1"},
			setup: func(f *fixture) {
				f.orders.On("FindByID", mock.Anything, "o1").
					Return(model.Order{ID: "o1", Status: model.OrderStatusShipped}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			pub := &PublisherSpy{}
			uc := newOrderUC(f, pub)
			if tt.setup != nil {
				tt.setup(f)
			}

			err := uc.ApplyPaymentEvent(context.Background(), tt.ev)

			require.NoError(t, err)
			assert.Equal(t, 0, f.tx.calls)
			assert.Empty(t, pub.Events())
			f.orders.AssertExpectations(t)
		})
	}
}

func TestApplyPaymentEvent_LostRace(t *testing.T) {
	f := newFixture()
	pub := &PublisherSpy{}
	uc := newOrderUC(f, pub)

	f.orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", Status: model.OrderStatusPending}, nil).Once()
	f.orders.On("TransitionStatus", mock.Anything, "o1", model.OrderStatusPending, model.OrderStatusPaid).
		Return(false, nil).Once()

	err := uc.ApplyPaymentEvent(context.Background(), usecase.PaymentEvent{
		Type:    usecase.PaymentEventCheckoutCompleted,
		OrderID: "o1",
	})

	require.NoError(t, err)
	f.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, pub.Events())
}

func TestApplyPaymentEvent_DBErrorIsReturned(t *testing.T) {
	f := newFixture()
	uc := newOrderUC(f, &PublisherSpy{})

	f.orders.On("FindByID", mock.Anything, "o1").Return(model.Order{}, errDB).Once()

	err := uc.ApplyPaymentEvent(context.Background(), usecase.PaymentEvent{
		Type:    usecase.PaymentEventCheckoutCompleted,
		OrderID: "o1",
	})
	assert.ErrorIs(t, err, errDB)
}

func TestApplyPaymentEvent_PublishFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	pub := &PublisherSpy{err: errDB}
	uc := newOrderUC(f, pub)

	f.orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", Status: model.OrderStatusPending}, nil).Once()
	f.orders.On("TransitionStatus", mock.Anything, "o1", model.OrderStatusPending, model.OrderStatusPaid).
		Return(true, nil).Once()
	f.audits.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	err := uc.ApplyPaymentEvent(context.Background(), usecase.PaymentEvent{
		Type:    usecase.PaymentEventCheckoutAsyncSucceeded,
		OrderID: "o1",
	})
	require.NoError(t, err)
	assert.Len(t, pub.Events(), 1)
}
