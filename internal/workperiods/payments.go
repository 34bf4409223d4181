package workperiods

import (
	"errors"

	"github.com/bookingdesk/payperiod/internal/api"
)

// ErrPaymentsInProgress is returned when a payment run is started while one
// is already running.
var ErrPaymentsInProgress = errors.New("payment processing already in progress")

// ProcessPayments submits payments for the current selection and blocks until
// the run settles. When the whole filtered set is selected and it spans more
// than one page, the run goes through the filter-predicate endpoint and only
// aggregate counters come back; otherwise each selected period is submitted
// individually and reconciled per item.
//
// Callers drive this from a goroutine; state changes and toasts arrive
// through the sink like any other mutation.
func (s *Store) ProcessPayments() error {
	s.mu.Lock()
	if s.state.IsProcessing {
		s.mu.Unlock()
		return ErrPaymentsInProgress
	}
	ids := s.state.SelectedIDs()
	bulk := s.state.SelectAll && s.state.Pagination.TotalCount > s.state.Pagination.PageSize
	if len(ids) == 0 && !bulk {
		s.mu.Unlock()
		return nil
	}
	s.state.IsProcessing = true
	totalCount := s.state.Pagination.TotalCount
	filter := s.paymentsAllFilter()
	s.mu.Unlock()
	s.emit(Updated{})

	defer func() {
		s.mu.Lock()
		s.state.IsProcessing = false
		s.mu.Unlock()
		s.emit(Updated{})
	}()

	if bulk {
		return s.processAllPayments(filter, totalCount)
	}
	return s.processSelectedPayments(ids)
}

// paymentsAllFilter translates the active filters into the predicate of the
// pay-all-matching call. Caller holds the lock.
func (s *Store) paymentsAllFilter() api.PaymentsAllFilter {
	f := s.state.Filters
	return api.PaymentsAllFilter{
		Status:          BookingStatusPlaced,
		UserHandle:      f.UserHandle,
		StartDate:       f.StartDate.Format(DateFormatAPI),
		PaymentStatuses: f.apiStatuses(),
	}
}

func (s *Store) processAllPayments(filter api.PaymentsAllFilter, totalCount int) error {
	s.emit(ToastEvent{Toast: toastPaymentsProcessing(totalCount)})

	result, err := s.svc.PostPaymentsAll(s.ctx, filter)

	// The whole-set marker is spent either way; a rerun must be deliberate.
	s.mu.Lock()
	s.state.SelectAll = false
	s.state.Selected = make(map[string]bool)
	s.mu.Unlock()
	s.emit(Updated{})

	if err != nil {
		s.log.Debug("bulk payment run failed", "error", err)
		s.emit(ToastEvent{Toast: toastPaymentsRunError(err)})
		return err
	}

	succeeded := result.TotalSuccess.Int()
	failed := result.TotalError.Int()
	s.emit(ToastEvent{Toast: classifyRun(succeeded, failed, nil)})
	return nil
}

func (s *Store) processSelectedPayments(ids []string) error {
	s.emit(ToastEvent{Toast: toastPaymentsProcessing(len(ids))})

	items := make([]api.PaymentRequest, len(ids))
	for i, id := range ids {
		items[i] = api.PaymentRequest{WorkPeriodID: id}
	}

	results, err := s.svc.PostPayments(s.ctx, items)
	if err != nil {
		s.log.Debug("payment run failed", "items", len(items), "error", err)
		s.emit(ToastEvent{Toast: toastPaymentsRunError(err)})
		return err
	}

	var failedResults []api.PaymentResult
	succeeded := 0
	highlight := make(map[string]bool, len(results))
	for _, r := range results {
		highlight[r.WorkPeriodID] = r.Failed()
		if r.Failed() {
			failedResults = append(failedResults, r)
		} else {
			succeeded++
		}
	}

	s.mu.Lock()
	s.state.Highlight = highlight
	for _, r := range results {
		if !r.Failed() {
			delete(s.state.Selected, r.WorkPeriodID)
		}
	}
	s.mu.Unlock()
	s.emit(Updated{})

	s.emit(ToastEvent{Toast: classifyRun(succeeded, len(failedResults), failedResults)})
	return nil
}

// classifyRun picks the outcome toast. A run that scheduled nothing is an
// error even when nothing is reported failed; an empty outcome is never a
// success.
func classifyRun(succeeded, failed int, failedResults []api.PaymentResult) Toast {
	switch {
	case succeeded > 0 && failed == 0:
		return toastPaymentsSuccess(succeeded)
	case succeeded > 0:
		return toastPaymentsWarning(succeeded, failed, failedResults)
	default:
		return toastPaymentsError(failed)
	}
}
