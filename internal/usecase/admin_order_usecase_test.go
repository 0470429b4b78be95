package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
	"lumiere/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminOrderList_Validation(t *testing.T) {
	tests := []struct {
		name string
		f    repo.AdminOrderListFilter
		want string
	}{
		{"page 0", repo.AdminOrderListFilter{Page: 0, Limit: 10}, "invalid page"},
		{"limit 0", repo.AdminOrderListFilter{Page: 1, Limit: 0}, "invalid limit"},
		{"limit 101", repo.AdminOrderListFilter{Page: 1, Limit: 101}, "invalid limit"},
		{"bad status", repo.AdminOrderListFilter{Page: 1, Limit: 10, Status: "lost"}, "invalid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			uc := usecase.NewAdminOrderUsecase(f.tx, nil, discardLogger())

			_, err := uc.List(context.Background(), tt.f)

			assertHTTPError(t, err, http.StatusBadRequest, tt.want)
			assert.Equal(t, 0, f.tx.calls)
		})
	}
}

func TestAdminOrderList_OK(t *testing.T) {
	f := newFixture()
	uc := usecase.NewAdminOrderUsecase(f.tx, nil, discardLogger())

	filter := repo.AdminOrderListFilter{Page: 2, Limit: 10, Status: "paid"}
	f.orders.On("ListAdmin", mock.Anything, filter).
		Return([]model.Order{{ID: "o1"}}, int64(11), nil).Once()

	out, err := uc.List(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Total)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 10, out.Limit)
	assert.Len(t, out.Orders, 1)
}

func TestAdminUpdateStatus_PaidToShipped(t *testing.T) {
	f := newFixture()
	pub := &PublisherSpy{}
	uc := usecase.NewAdminOrderUsecase(f.tx, pub, discardLogger())

	f.orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", UserID: "u1", Status: model.OrderStatusPaid}, nil).Once()
	f.orders.On("TransitionStatus", mock.Anything, "o1", model.OrderStatusPaid, model.OrderStatusShipped).
		Return(true, nil).Once()
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Actor == "admin-1" &&
			l.BeforeJSON == `{"status":"paid"}` &&
			l.AfterJSON == `{"status":"shipped"}`
	})).Return(nil).Once()

	out, err := uc.UpdateStatus(context.Background(), "admin-1", "o1", usecase.AdminUpdateOrderStatusInput{Status: " Shipped "})

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, out.Status)
	f.audits.AssertExpectations(t)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OrderStatusPaid, events[0].From)
	assert.Equal(t, model.OrderStatusShipped, events[0].To)
	assert.Equal(t, "u1", events[0].UserID)
}

func TestAdminUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newFixture()
	pub := &PublisherSpy{}
	uc := usecase.NewAdminOrderUsecase(f.tx, pub, discardLogger())

	f.orders.On("FindByID", mock.Anything, "o1").
		Return(model.Order{ID: "o1", Status: model.OrderStatusShipped}, nil).Once()

	out, err := uc.UpdateStatus(context.Background(), "admin-1", "o1", usecase.AdminUpdateOrderStatusInput{Status: "shipped"})

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, out.Status)
	f.orders.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, pub.Events())
}

func TestAdminUpdateStatus_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		current model.OrderStatus
		target  string
		status  int
		want    string
	}{
		{"payment managed", "", "paid", http.StatusBadRequest, "status is managed by payment"},
		{"unknown", "", "lost", http.StatusBadRequest, "invalid status"},
		{"delivered is terminal", model.OrderStatusDelivered, "shipped", http.StatusConflict, "cannot change delivered order"},
		{"failed is terminal", model.OrderStatusFailed, "shipped", http.StatusConflict, "cannot change failed order"},
		{"skip shipped", model.OrderStatusPaid, "delivered", http.StatusConflict, "invalid status transition"},
		{"pending cannot ship", model.OrderStatusPending, "shipped", http.StatusConflict, "invalid status transition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			pub := &PublisherSpy{}
			uc := usecase.NewAdminOrderUsecase(f.tx, pub, discardLogger())
			if tt.current != "" {
				f.orders.On("FindByID", mock.Anything, "o1").
					Return(model.Order{ID: "o1", Status: tt.current}, nil).Once()
			}

			_, err := uc.UpdateStatus(context.Background(), "admin-1", "o1", usecase.AdminUpdateOrderStatusInput{Status: tt.target})

			assertHTTPError(t, err, tt.status, tt.want)
			assert.Empty(t, pub.Events())
			f.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAdminUpdateStatus_NotFound(t *testing.T) {
	f := newFixture()
	uc := usecase.NewAdminOrderUsecase(f.tx, nil, discardLogger())

	f.orders.On("FindByID", mock.Anything, "ghost").Return(model.Order{}, repo.ErrNotFound).Once()

	_, err := uc.UpdateStatus(context.Background(), "admin-1", "ghost", usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assertHTTPError(t, err, http.StatusNotFound, "not found")
}

func TestParseDateTimeRFC3339(t *testing.T) {
	got, ok := usecase.ParseDateTimeRFC3339("2024-05-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, ok = usecase.ParseDateTimeRFC3339("yesterday")
	assert.False(t, ok)

	_, ok = usecase.ParseDateTimeRFC3339("")
	assert.False(t, ok)
}
