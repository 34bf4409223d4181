package workperiods

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookingdesk/payperiod/internal/api"
)

// Service is the slice of the platform API the Store consumes.
type Service interface {
	FetchResourceBookings(ctx context.Context, q api.BookingsQuery) (api.BookingsPage, error)
	FetchJob(ctx context.Context, jobID string) (api.Job, error)
	FetchBillingAccounts(ctx context.Context, projectID int64) ([]api.BillingAccount, error)
	FetchWorkPeriods(ctx context.Context, resourceBookingID string) ([]api.WorkPeriod, error)
	PatchWorkingDays(ctx context.Context, periodID string, days int) error
	PatchBillingAccount(ctx context.Context, resourceBookingID string, accountID int64) error
	PostPayments(ctx context.Context, items []api.PaymentRequest) ([]api.PaymentResult, error)
	PostPaymentsAll(ctx context.Context, filter api.PaymentsAllFilter) (api.PaymentsAllResult, error)
}

// Options configures a Store. Service is required; everything else has a
// usable default.
type Options struct {
	Service  Service
	Sink     func(Event)
	PageSize int
	Debounce time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Store owns the console state and serializes every mutation behind one
// mutex. Reads go through Snapshot; change notifications go to the sink,
// always emitted outside the lock.
type Store struct {
	svc      Service
	sink     func(Event)
	log      *slog.Logger
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	loadSlot    tokenSlot
	detailSlots map[string]*tokenSlot
	timers      *timerRegistry
}

// NewStore builds a Store around the given service. Call Close when done to
// release outstanding requests and pending timers.
func NewStore(opts Options) *Store {
	if opts.Service == nil {
		panic("workperiods: Options.Service is required")
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DebounceDelay
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		svc:         opts.Service,
		sink:        opts.Sink,
		log:         log,
		debounce:    debounce,
		ctx:         ctx,
		cancel:      cancel,
		state:       newState(pageSize, now()),
		detailSlots: make(map[string]*tokenSlot),
		timers:      newTimerRegistry(),
	}
}

// Close cancels every in-flight request and discards pending debounced
// writes.
func (s *Store) Close() {
	s.timers.stop()
	s.mu.Lock()
	s.loadSlot.drop()
	for _, slot := range s.detailSlots {
		slot.drop()
	}
	s.mu.Unlock()
	s.cancel()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.snapshot()
}

func (s *Store) emit(events ...Event) {
	if s.sink == nil {
		return
	}
	for _, e := range events {
		s.sink(e)
	}
}

// LoadPage loads the given page of the collection under the active filters
// and sorting. Page 0 reloads the current page. A load that is still in
// flight when the next one starts is cancelled and its completion discarded.
func (s *Store) LoadPage(page int) {
	s.mu.Lock()
	if page <= 0 {
		page = s.state.Pagination.PageNumber
	}
	ctx, gen := s.loadSlot.next(s.ctx)
	s.state.Loading = true
	s.state.LoadError = ""
	s.state.Pagination.PageNumber = page
	query := s.bookingsQuery(page)
	s.mu.Unlock()
	s.emit(Updated{})

	go func() {
		result, err := s.svc.FetchResourceBookings(ctx, query)

		s.mu.Lock()
		if !s.loadSlot.current(gen) {
			s.mu.Unlock()
			return
		}
		if err != nil {
			if api.IsCanceled(err) {
				s.mu.Unlock()
				return
			}
			s.state.Loading = false
			s.state.LoadError = err.Error()
			s.mu.Unlock()
			s.log.Debug("page load failed", "page", page, "error", err)
			s.emit(Updated{})
			return
		}
		old := s.state.Periods
		s.state.Loading = false
		s.state.Periods = NormalizePeriodItems(result.Bookings)
		s.state.Pagination.PageNumber = result.Page
		s.state.Pagination.TotalCount = result.Total
		s.state.Pagination.PageCount = result.PageCount
		stale := s.droppedRowTimerKeys(old)
		s.mu.Unlock()
		// A pending working-day write for a row that left the page would be
		// a dead letter; discard it with the row.
		for _, key := range stale {
			s.timers.cancel(key)
		}
		s.emit(Updated{})
	}()
}

// droppedRowTimerKeys lists the debounce keys of rows present in old but
// absent from the freshly loaded page. Caller holds the lock.
func (s *Store) droppedRowTimerKeys(old []Period) []string {
	current := make(map[string]bool, len(s.state.Periods))
	for i := range s.state.Periods {
		current[s.state.Periods[i].ID] = true
	}
	var keys []string
	for i := range old {
		if !current[old[i].ID] {
			keys = append(keys, "wp:"+old[i].ID)
		}
	}
	return keys
}

// bookingsQuery builds the list query from the current filters and sorting.
// Caller holds the lock.
func (s *Store) bookingsQuery(page int) api.BookingsQuery {
	f := s.state.Filters
	return api.BookingsQuery{
		Fields:          FieldsQuery,
		Page:            page,
		PerPage:         s.state.Pagination.PageSize,
		SortBy:          APISortField(s.state.Sorting.Criteria),
		SortOrder:       string(s.state.Sorting.Order),
		Status:          BookingStatusPlaced,
		UserHandle:      f.UserHandle,
		StartDate:       f.StartDate.Format(DateFormatAPI),
		PaymentStatuses: f.apiStatuses(),
	}
}

// SetFilters replaces the active filters, resets to the first page and
// reloads. The selection is discarded since it referred to the old result
// set.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	s.state.Filters = f.clone()
	s.state.Selected = make(map[string]bool)
	s.state.SelectAll = false
	s.mu.Unlock()
	s.LoadPage(1)
}

// SetSorting replaces the sort criteria and reloads from the first page.
func (s *Store) SetSorting(sorting Sorting) {
	s.mu.Lock()
	s.state.Sorting = sorting
	s.mu.Unlock()
	s.LoadPage(1)
}

// ToggleSelect flips the selection of one period. Deselecting any row also
// clears the select-all marker; the selection is no longer "everything".
func (s *Store) ToggleSelect(id string) {
	s.mu.Lock()
	if s.state.Selected[id] {
		delete(s.state.Selected, id)
		s.state.SelectAll = false
	} else {
		s.state.Selected[id] = true
	}
	s.mu.Unlock()
	s.emit(Updated{})
}

// ToggleSelectAll selects or deselects every row of the current page and
// marks the selection as covering the whole filtered set.
func (s *Store) ToggleSelectAll() {
	s.mu.Lock()
	s.state.SelectAll = !s.state.SelectAll
	if s.state.SelectAll {
		for i := range s.state.Periods {
			s.state.Selected[s.state.Periods[i].ID] = true
		}
	} else {
		s.state.Selected = make(map[string]bool)
	}
	s.mu.Unlock()
	s.emit(Updated{})
}

func (s *Store) detailSlot(id string) *tokenSlot {
	slot, ok := s.detailSlots[id]
	if !ok {
		slot = &tokenSlot{}
		s.detailSlots[id] = slot
	}
	return slot
}

// ToggleDetails expands or collapses the detail panel of one row. show forces
// a direction; nil toggles. Collapsing cancels the row's in-flight fetches and
// destroys the detail state, so re-expanding starts fresh: three independent
// fetches for the job name, the billing accounts and the booking's period
// history.
func (s *Store) ToggleDetails(id string, show *bool) {
	s.mu.Lock()
	p := s.state.PeriodByID(id)
	if p == nil {
		s.mu.Unlock()
		return
	}
	slot := s.detailSlot(id)
	slot.drop()

	_, visible := s.state.Details[id]
	wantShow := !visible
	if show != nil {
		wantShow = *show
	}

	if !wantShow {
		delete(s.state.Details, id)
		s.mu.Unlock()
		s.emit(Updated{})
		return
	}
	if visible {
		// Forced show on an already expanded row.
		s.mu.Unlock()
		return
	}

	d := &Details{
		PeriodID:         id,
		RBID:             p.RBID,
		BillingAccountID: p.BillingAccountID,
	}
	hasJob := p.JobID != ""
	if hasJob {
		d.JobNameLoading = true
	} else {
		d.JobName = JobNameNone
	}
	d.BillingAccountsLoading = true
	d.PeriodsLoading = true
	s.state.Details[id] = d

	ctx, gen := slot.next(s.ctx)
	jobID, projectID, rbID := p.JobID, p.ProjectID, p.RBID
	s.mu.Unlock()
	s.emit(Updated{})

	if hasJob {
		go s.loadJobName(ctx, gen, id, jobID)
	}
	go s.loadBillingAccounts(ctx, gen, id, projectID)
	go s.loadPeriodHistory(ctx, gen, id, rbID)
}

// settleDetail runs apply under the lock when the fetch generation is still
// live and the detail entry still exists, then emits. Stale or cancelled
// completions are discarded.
func (s *Store) settleDetail(err error, gen uint64, id string, apply func(*Details)) {
	if err != nil && api.IsCanceled(err) {
		return
	}
	s.mu.Lock()
	slot, ok := s.detailSlots[id]
	if !ok || !slot.current(gen) {
		s.mu.Unlock()
		return
	}
	d, ok := s.state.Details[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	apply(d)
	s.mu.Unlock()
	s.emit(Updated{})
}

func (s *Store) loadJobName(ctx context.Context, gen uint64, id, jobID string) {
	job, err := s.svc.FetchJob(ctx, jobID)
	s.settleDetail(err, gen, id, func(d *Details) {
		d.JobNameLoading = false
		if err != nil {
			d.JobNameError = err.Error()
			return
		}
		d.JobName = ExtractJobName(job)
	})
}

func (s *Store) loadBillingAccounts(ctx context.Context, gen uint64, id string, projectID int64) {
	accounts, err := s.svc.FetchBillingAccounts(ctx, projectID)
	s.settleDetail(err, gen, id, func(d *Details) {
		d.BillingAccountsLoading = false
		if err != nil {
			d.BillingAccountsError = err.Error()
			return
		}
		// The row may have changed while the fetch was in flight; resolve
		// against its billing account as of now, not as of dispatch.
		selected := d.BillingAccountID
		if p := s.state.PeriodByID(id); p != nil {
			selected = p.BillingAccountID
		}
		options, found := NormalizeBillingAccounts(accounts, selected)
		d.BillingAccounts = options
		if found {
			d.BillingAccountID = selected
		}
	})
}

func (s *Store) loadPeriodHistory(ctx context.Context, gen uint64, id, rbID string) {
	periods, err := s.svc.FetchWorkPeriods(ctx, rbID)
	s.settleDetail(err, gen, id, func(d *Details) {
		d.PeriodsLoading = false
		if err != nil {
			d.PeriodsError = err.Error()
			return
		}
		d.Periods = NormalizeDetailsPeriodItems(periods)
	})
	if err != nil && !api.IsCanceled(err) {
		s.emit(ToastEvent{Toast: toastMessage(ToastError,
			fmt.Sprintf("Failed to load work periods of resource booking %s: %v", rbID, err))})
	}
}

// SetWorkingDays updates the worked-day count of a row on the current page.
// The value is clamped to the already-paid days on the low end and the work
// week on the high end. The write to the API is debounced per period; rapid
// edits persist only the final value. A failed write keeps the edited value
// on screen and surfaces a toast.
func (s *Store) SetWorkingDays(id string, days int) {
	s.mu.Lock()
	p := s.state.PeriodByID(id)
	if p == nil {
		s.mu.Unlock()
		return
	}
	days = clampDays(days, p.DaysPaid)
	if days == p.DaysWorked {
		s.mu.Unlock()
		return
	}
	p.DaysWorked = days
	s.mu.Unlock()
	s.emit(Updated{})

	s.timers.trigger("wp:"+id, s.debounce, func() {
		s.persistWorkingDays(id)
	})
}

func (s *Store) persistWorkingDays(id string) {
	s.mu.Lock()
	p := s.state.PeriodByID(id)
	if p == nil {
		s.mu.Unlock()
		return
	}
	days := p.DaysWorked
	s.mu.Unlock()

	if err := s.svc.PatchWorkingDays(s.ctx, id, days); err != nil {
		s.log.Debug("working days update failed", "period", id, "error", err)
		s.emit(ToastEvent{Toast: toastMessage(ToastError,
			fmt.Sprintf("Failed to update working days for work period %s: %v", id, err))})
	}
}

// SetHistoryWorkingDays updates the worked-day count of a row in the expanded
// period history of parentID. Paid periods are immutable. The parent's own
// period appears in its history; edits to that row stay local and are never
// written back from here.
func (s *Store) SetHistoryWorkingDays(parentID, periodID string, days int) {
	s.mu.Lock()
	d, ok := s.state.Details[parentID]
	if !ok {
		s.mu.Unlock()
		return
	}
	var row *Period
	for i := range d.Periods {
		if d.Periods[i].ID == periodID {
			row = &d.Periods[i]
			break
		}
	}
	if row == nil || row.PaymentStatus == StatusPaid {
		s.mu.Unlock()
		return
	}
	days = clampDays(days, row.DaysPaid)
	if days == row.DaysWorked {
		s.mu.Unlock()
		return
	}
	row.DaysWorked = days
	isCurrent := periodID == parentID
	s.mu.Unlock()
	s.emit(Updated{})

	if isCurrent {
		return
	}
	s.timers.trigger("hist:"+periodID, s.debounce, func() {
		s.persistHistoryWorkingDays(parentID, periodID)
	})
}

func (s *Store) persistHistoryWorkingDays(parentID, periodID string) {
	s.mu.Lock()
	var days int
	found := false
	if d, ok := s.state.Details[parentID]; ok {
		for i := range d.Periods {
			if d.Periods[i].ID == periodID {
				days = d.Periods[i].DaysWorked
				found = true
				break
			}
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	if err := s.svc.PatchWorkingDays(s.ctx, periodID, days); err != nil {
		s.log.Debug("working days update failed", "period", periodID, "error", err)
		s.emit(ToastEvent{Toast: toastMessage(ToastError,
			fmt.Sprintf("Failed to update working days for work period %s: %v", periodID, err))})
	}
}

func clampDays(days, floor int) int {
	if days < floor {
		return floor
	}
	if days > MaxWorkingDays {
		return MaxWorkingDays
	}
	return days
}

// SetBillingAccount switches the billing account of a booking, optimistically
// in the local state and then on the API. A failed write keeps the optimistic
// value and surfaces a toast.
func (s *Store) SetBillingAccount(periodID, rbID string, accountID int64) {
	s.mu.Lock()
	if d, ok := s.state.Details[periodID]; ok {
		d.BillingAccountID = accountID
	}
	for i := range s.state.Periods {
		if s.state.Periods[i].RBID == rbID {
			s.state.Periods[i].BillingAccountID = accountID
		}
	}
	s.mu.Unlock()
	s.emit(Updated{})

	go func() {
		if err := s.svc.PatchBillingAccount(s.ctx, rbID, accountID); err != nil {
			s.log.Debug("billing account update failed", "booking", rbID, "error", err)
			s.emit(ToastEvent{Toast: toastMessage(ToastError,
				fmt.Sprintf("Failed to update billing account for resource booking %s: %v", rbID, err))})
		}
	}()
}
