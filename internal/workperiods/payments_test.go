package workperiods

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookingdesk/payperiod/internal/api"
)

func loadThreePeriods(t *testing.T, store *Store, svc *fakeService) {
	t.Helper()
	svc.fetchBookings = func(ctx context.Context, q api.BookingsQuery) (api.BookingsPage, error) {
		return singleBooking(
			api.WorkPeriod{ID: "wp-1", UserHandle: "alice"},
			api.WorkPeriod{ID: "wp-2", UserHandle: "bob"},
			api.WorkPeriod{ID: "wp-3", UserHandle: "carol"},
		), nil
	}
	store.LoadPage(1)
	require.Eventually(t, func() bool {
		return len(store.Snapshot().Periods) == 3
	}, waitFor, tick)
}

func TestProcessPaymentsItemizedPartialFailure(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	var submitted []api.PaymentRequest
	svc.postPayments = func(ctx context.Context, items []api.PaymentRequest) ([]api.PaymentResult, error) {
		submitted = items
		return []api.PaymentResult{
			{WorkPeriodID: "wp-1", Amount: 500},
			{WorkPeriodID: "wp-2", Error: &api.PaymentError{Message: "no billing account"}},
			{WorkPeriodID: "wp-3", Amount: 250},
		}, nil
	}
	store, log := newTestStore(t, svc)
	loadThreePeriods(t, store, svc)

	store.ToggleSelect("wp-1")
	store.ToggleSelect("wp-2")
	store.ToggleSelect("wp-3")

	require.NoError(t, store.ProcessPayments())
	require.Len(t, submitted, 3)

	snap := store.Snapshot()
	assert.False(t, snap.IsProcessing)
	// Every reconciled item lands in the highlight map; failures marked.
	assert.Equal(t, map[string]bool{"wp-1": false, "wp-2": true, "wp-3": false}, snap.Highlight)
	// Succeeded rows drop out of the selection, failed rows stay.
	assert.Equal(t, []string{"wp-2"}, snap.SelectedIDs())

	toast, ok := log.lastToast()
	require.True(t, ok)
	assert.Equal(t, ToastWarning, toast.Kind)
	require.Len(t, toast.Failed, 1)
	assert.Equal(t, "wp-2", toast.Failed[0].WorkPeriodID)
}

func TestProcessPaymentsItemizedAllSucceed(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.postPayments = func(ctx context.Context, items []api.PaymentRequest) ([]api.PaymentResult, error) {
		out := make([]api.PaymentResult, len(items))
		for i, item := range items {
			out[i] = api.PaymentResult{WorkPeriodID: item.WorkPeriodID}
		}
		return out, nil
	}
	store, log := newTestStore(t, svc)
	loadThreePeriods(t, store, svc)

	store.ToggleSelect("wp-1")
	store.ToggleSelect("wp-2")

	require.NoError(t, store.ProcessPayments())

	snap := store.Snapshot()
	assert.Empty(t, snap.SelectedIDs())
	toast, ok := log.lastToast()
	require.True(t, ok)
	assert.Equal(t, ToastSuccess, toast.Kind)
	assert.Contains(t, toast.Message, "2")
}

func TestProcessPaymentsEmptyOutcomeIsError(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.postPayments = func(ctx context.Context, items []api.PaymentRequest) ([]api.PaymentResult, error) {
		return nil, nil
	}
	store, log := newTestStore(t, svc)
	loadThreePeriods(t, store, svc)
	store.ToggleSelect("wp-1")

	require.NoError(t, store.ProcessPayments())

	// Zero scheduled and zero failed still reads as a failed run.
	toast, ok := log.lastToast()
	require.True(t, ok)
	assert.Equal(t, ToastError, toast.Kind)
}

func TestProcessPaymentsTransportError(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.postPayments = func(ctx context.Context, items []api.PaymentRequest) ([]api.PaymentResult, error) {
		return nil, errors.New("gateway down")
	}
	store, log := newTestStore(t, svc)
	loadThreePeriods(t, store, svc)
	store.ToggleSelect("wp-1")

	require.Error(t, store.ProcessPayments())
	toast, ok := log.lastToast()
	require.True(t, ok)
	assert.Equal(t, ToastError, toast.Kind)
	assert.Contains(t, toast.Message, "gateway down")
	assert.False(t, store.Snapshot().IsProcessing)
}

func TestProcessPaymentsBulkWhenSelectionSpansPages(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	var gotFilter api.PaymentsAllFilter
	svc.postPaymentsAll = func(ctx context.Context, filter api.PaymentsAllFilter) (api.PaymentsAllResult, error) {
		gotFilter = filter
		return api.PaymentsAllResult{TotalSuccess: 20, TotalError: 5}, nil
	}
	svc.fetchBookings = func(ctx context.Context, q api.BookingsQuery) (api.BookingsPage, error) {
		page := singleBooking(
			api.WorkPeriod{ID: "wp-1"},
			api.WorkPeriod{ID: "wp-2"},
		)
		page.Total = 25
		page.PageCount = 3
		return page, nil
	}
	store, log := newTestStore(t, svc)
	store.SetFilters(Filters{
		StartDate:       mustDate(t, "2026-08-24"),
		UserHandle:      "alice",
		PaymentStatuses: map[Status]bool{StatusPending: true},
	})
	require.Eventually(t, func() bool {
		return store.Snapshot().Pagination.TotalCount == 25
	}, waitFor, tick)
	store.ToggleSelectAll()

	require.NoError(t, store.ProcessPayments())

	assert.Equal(t, 1, svc.callCount("paymentsAll"))
	assert.Zero(t, svc.callCount("payments"))
	assert.Equal(t, "placed", gotFilter.Status)
	assert.Equal(t, "alice", gotFilter.UserHandle)
	assert.Equal(t, "2026-08-24", gotFilter.StartDate)
	assert.Equal(t, []string{"pending"}, gotFilter.PaymentStatuses)

	snap := store.Snapshot()
	assert.False(t, snap.SelectAll)
	assert.Empty(t, snap.SelectedIDs())

	toast, ok := log.lastToast()
	require.True(t, ok)
	assert.Equal(t, ToastWarning, toast.Kind)

	// The processing toast announced the whole filtered set.
	toasts := log.toasts()
	require.NotEmpty(t, toasts)
	assert.Contains(t, toasts[len(toasts)-2].Message, "25")
}

func TestProcessPaymentsItemizedWhenSelectionFitsOnePage(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.fetchBookings = func(ctx context.Context, q api.BookingsQuery) (api.BookingsPage, error) {
		page := singleBooking(
			api.WorkPeriod{ID: "wp-1"},
			api.WorkPeriod{ID: "wp-2"},
		)
		page.Total = 2
		return page, nil
	}
	svc.postPayments = func(ctx context.Context, items []api.PaymentRequest) ([]api.PaymentResult, error) {
		out := make([]api.PaymentResult, len(items))
		for i, item := range items {
			out[i] = api.PaymentResult{WorkPeriodID: item.WorkPeriodID}
		}
		return out, nil
	}
	store, _ := newTestStore(t, svc)
	store.LoadPage(1)
	require.Eventually(t, func() bool {
		return len(store.Snapshot().Periods) == 2
	}, waitFor, tick)
	store.ToggleSelectAll()

	require.NoError(t, store.ProcessPayments())

	// Everything selected but it all fits on one page: itemized path.
	assert.Equal(t, 1, svc.callCount("payments"))
	assert.Zero(t, svc.callCount("paymentsAll"))
	// The whole-set marker belongs to the bulk path only.
	assert.True(t, store.Snapshot().SelectAll)
}

func TestProcessPaymentsBulkTransportErrorStillClearsMarker(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.postPaymentsAll = func(ctx context.Context, filter api.PaymentsAllFilter) (api.PaymentsAllResult, error) {
		return api.PaymentsAllResult{}, errors.New("gateway down")
	}
	svc.fetchBookings = func(ctx context.Context, q api.BookingsQuery) (api.BookingsPage, error) {
		page := singleBooking(api.WorkPeriod{ID: "wp-1"})
		page.Total = 100
		page.PageCount = 10
		return page, nil
	}
	store, log := newTestStore(t, svc)
	store.LoadPage(1)
	require.Eventually(t, func() bool {
		return store.Snapshot().Pagination.TotalCount == 100
	}, waitFor, tick)
	store.ToggleSelectAll()

	require.Error(t, store.ProcessPayments())
	assert.False(t, store.Snapshot().SelectAll)
	toast, ok := log.lastToast()
	require.True(t, ok)
	assert.Equal(t, ToastError, toast.Kind)
	assert.Contains(t, toast.Message, "gateway down")
}

func TestProcessPaymentsRejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	block := make(chan struct{})
	started := make(chan struct{})
	svc.postPayments = func(ctx context.Context, items []api.PaymentRequest) ([]api.PaymentResult, error) {
		close(started)
		<-block
		return nil, nil
	}
	store, _ := newTestStore(t, svc)
	loadThreePeriods(t, store, svc)
	store.ToggleSelect("wp-1")

	errs := make(chan error, 1)
	go func() { errs <- store.ProcessPayments() }()
	<-started

	assert.True(t, store.Snapshot().IsProcessing)
	assert.ErrorIs(t, store.ProcessPayments(), ErrPaymentsInProgress)

	close(block)
	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("payment run never settled")
	}
	assert.False(t, store.Snapshot().IsProcessing)
}

func TestProcessPaymentsNothingSelected(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	store, _ := newTestStore(t, svc)
	loadThreePeriods(t, store, svc)

	require.NoError(t, store.ProcessPayments())
	assert.Zero(t, svc.callCount("payments"))
	assert.Zero(t, svc.callCount("paymentsAll"))
}

func TestClassifyRun(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ToastSuccess, classifyRun(3, 0, nil).Kind)
	assert.Equal(t, ToastWarning, classifyRun(2, 1, nil).Kind)
	assert.Equal(t, ToastError, classifyRun(0, 4, nil).Kind)
	assert.Equal(t, ToastError, classifyRun(0, 0, nil).Kind)
}
