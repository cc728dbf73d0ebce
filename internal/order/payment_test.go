package order_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/events"
	"github.com/vasiliy-maslov/garage-platform/internal/order"
)

var txnPattern = regexp.MustCompile(`^TXN-\d+-[0-9A-F]{6}$`)

func createPendingOrder(t *testing.T, f fixture) *order.Order {
	t.Helper()

	created, err := f.orders.CreateOrder(context.Background(), order.CreateOrderInput{
		CustomerInfo: validCustomer(),
		Items:        []order.ItemInput{{PartID: "P1", Quantity: 2, Price: ptr(10.0)}},
		TotalAmount:  ptr(20.0),
	})
	require.NoError(t, err)
	require.Equal(t, order.StatusPending, created.Status)
	return created
}

func TestPayment_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := createPendingOrder(t, f)

	status, err := f.payments.GetPaymentStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentAwaiting, status.PaymentStatus)
	assert.Nil(t, status.PaymentDetails)

	result, err := f.payments.ProcessPayment(ctx, order.ProcessPaymentInput{OrderID: created.ID, Method: order.MethodCashOnDelivery})
	require.NoError(t, err)
	assert.Equal(t, created.ID, result.OrderID)
	assert.Equal(t, order.StatusProcessing, result.Status)
	require.NotNil(t, result.PaymentDetails)
	assert.Equal(t, order.PaymentCompleted, result.PaymentDetails.Status)
	assert.Equal(t, order.MethodCashOnDelivery, result.PaymentDetails.Method)
	assert.Regexp(t, txnPattern, result.PaymentDetails.TransactionID)
	assert.False(t, result.PaymentDetails.Timestamp.IsZero())

	status, err = f.payments.GetPaymentStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, status.OrderStatus)
	assert.Equal(t, order.PaymentCompleted, status.PaymentStatus)

	cleared, err := f.payments.DeletePayment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, cleared.Status)
	assert.Nil(t, cleared.PaymentDetails)

	fetched, err := f.orders.GetOrderByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, fetched.Status)
	assert.Nil(t, fetched.PaymentDetails)

	assert.Equal(t, []string{events.TypeOrderCreated, events.TypePaymentProcessed, events.TypePaymentCleared}, f.emitter.Types())
}

func TestPayment_ProcessValidation(t *testing.T) {
	f := newFixture(t)
	created := createPendingOrder(t, f)

	tests := []struct {
		name     string
		in       order.ProcessPaymentInput
		wantErr  error
		wantKind apperr.Kind
	}{
		{
			name:     "missing_order_id",
			in:       order.ProcessPaymentInput{Method: order.MethodPayPal},
			wantErr:  order.ErrMissingOrderID,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "missing_method",
			in:       order.ProcessPaymentInput{OrderID: created.ID},
			wantErr:  order.ErrMissingPaymentMethod,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "unsupported_method",
			in:       order.ProcessPaymentInput{OrderID: created.ID, Method: "bitcoin"},
			wantErr:  order.ErrUnsupportedMethod,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "unknown_order",
			in:       order.ProcessPaymentInput{OrderID: "missing", Method: order.MethodCreditCard},
			wantErr:  order.ErrOrderNotFound,
			wantKind: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.payments.ProcessPayment(context.Background(), tt.in)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestPayment_SimulatedFailureIsPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := createPendingOrder(t, f)

	result, err := f.payments.ProcessPayment(ctx, order.ProcessPaymentInput{
		OrderID:         created.ID,
		Method:          order.MethodCreditCard,
		SimulateFailure: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrPaymentDeclined)
	assert.Equal(t, apperr.KindPaymentFailed, apperr.KindOf(err))

	require.NotNil(t, result)
	assert.Equal(t, order.StatusPending, result.Status)
	assert.Equal(t, order.PaymentFailed, result.PaymentDetails.Status)

	status, err := f.payments.GetPaymentStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentFailed, status.PaymentStatus)
	assert.Equal(t, order.StatusPending, status.OrderStatus)
}

func TestPayment_RepeatedProcessingOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := createPendingOrder(t, f)

	first, err := f.payments.ProcessPayment(ctx, order.ProcessPaymentInput{OrderID: created.ID, Method: order.MethodDebitCard})
	require.NoError(t, err)
	second, err := f.payments.ProcessPayment(ctx, order.ProcessPaymentInput{OrderID: created.ID, Method: order.MethodPayPal})
	require.NoError(t, err)

	assert.NotEqual(t, first.PaymentDetails.TransactionID, second.PaymentDetails.TransactionID)

	status, err := f.payments.GetPaymentStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.MethodPayPal, status.PaymentDetails.Method)
}

func TestPayment_ListOnlyPaidOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	paid := createPendingOrder(t, f)
	_ = createPendingOrder(t, f)

	_, err := f.payments.ProcessPayment(ctx, order.ProcessPaymentInput{OrderID: paid.ID, Method: order.MethodCreditCard})
	require.NoError(t, err)

	payments, err := f.payments.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, paid.ID, payments[0].ID)
}

func TestPayment_DeleteUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.payments.DeletePayment(context.Background(), "missing")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.payments.GetPaymentStatus(context.Background(), "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
