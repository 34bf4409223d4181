package workperiods

import (
	"sort"
	"time"

	"github.com/bookingdesk/payperiod/internal/api"
)

// MaxWorkingDays is the number of billable days in a work week.
const MaxWorkingDays = 5

// Period is one row of the console: a single work period of a resource
// booking together with its payment facet.
type Period struct {
	ID               string
	RBID             string
	JobID            string
	ProjectID        int64
	BillingAccountID int64
	UserHandle       string
	StartDate        string // YYYY-MM-DD
	EndDate          string // YYYY-MM-DD
	WeeklyRate       float64

	DaysWorked    int
	DaysPaid      int
	PaymentStatus Status
	PaymentTotal  float64
	Payments      []api.Payment
	LastError     string
}

// AccountOption is one selectable billing account.
type AccountOption struct {
	Label string
	Value int64
}

// Details is the expandable sub-state of one row. The three payloads load
// independently and fail independently; each carries its own loading flag and
// error slot.
type Details struct {
	PeriodID         string
	RBID             string
	BillingAccountID int64

	JobName        string
	JobNameLoading bool
	JobNameError   string

	BillingAccounts        []AccountOption
	BillingAccountsLoading bool
	BillingAccountsError   string

	Periods        []Period
	PeriodsLoading bool
	PeriodsError   string
}

// Filters restricts the loaded collection. StartDate selects the work week;
// an empty PaymentStatuses set means no status restriction.
type Filters struct {
	StartDate       time.Time
	UserHandle      string
	PaymentStatuses map[Status]bool
}

// clone returns an independent copy.
func (f Filters) clone() Filters {
	out := f
	out.PaymentStatuses = make(map[Status]bool, len(f.PaymentStatuses))
	for s, on := range f.PaymentStatuses {
		out.PaymentStatuses[s] = on
	}
	return out
}

// apiStatuses translates the enabled statuses to their wire values, in the
// stable Statuses() order.
func (f Filters) apiStatuses() []string {
	var out []string
	for _, status := range Statuses() {
		if !f.PaymentStatuses[status] {
			continue
		}
		if v, ok := status.APIValue(); ok {
			out = append(out, v)
		}
	}
	return out
}

// Sorting holds the active sort criteria and direction.
type Sorting struct {
	Criteria SortBy
	Order    SortOrder
}

// Pagination mirrors the server-side paging of the collection.
type Pagination struct {
	PageNumber int
	PageSize   int
	TotalCount int
	PageCount  int
}

// State is the complete application state of the console core. It is owned
// by a Store and must only be read through Store.Snapshot copies.
type State struct {
	Periods []Period
	Details map[string]*Details

	Filters    Filters
	Sorting    Sorting
	Pagination Pagination

	Selected  map[string]bool
	SelectAll bool
	Highlight map[string]bool

	IsProcessing bool
	Loading      bool
	LoadError    string
}

// newState builds the initial state: first page, default sorting, the current
// work week as the date filter, no status restriction.
func newState(pageSize int, now time.Time) State {
	return State{
		Details: make(map[string]*Details),
		Filters: Filters{
			StartDate:       WeekStart(now),
			PaymentStatuses: make(map[Status]bool),
		},
		Sorting: Sorting{Criteria: SortByUserHandle, Order: SortAsc},
		Pagination: Pagination{
			PageNumber: 1,
			PageSize:   pageSize,
		},
		Selected:  make(map[string]bool),
		Highlight: make(map[string]bool),
	}
}

// WeekStart returns the Monday of t's week, truncated to midnight UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// PeriodByID finds a row in the current page.
func (s *State) PeriodByID(id string) *Period {
	for i := range s.Periods {
		if s.Periods[i].ID == id {
			return &s.Periods[i]
		}
	}
	return nil
}

// SelectedIDs returns the selected period ids in insertion-independent,
// deterministic order: ids present on the current page first (page order),
// then the remainder sorted lexicographically.
func (s *State) SelectedIDs() []string {
	out := make([]string, 0, len(s.Selected))
	seen := make(map[string]bool, len(s.Selected))
	for i := range s.Periods {
		id := s.Periods[i].ID
		if s.Selected[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	rest := make([]string, 0, len(s.Selected))
	for id, on := range s.Selected {
		if on && !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// snapshot returns a deep copy safe for concurrent reads.
func (s *State) snapshot() State {
	out := *s
	out.Periods = append([]Period(nil), s.Periods...)
	out.Details = make(map[string]*Details, len(s.Details))
	for id, d := range s.Details {
		cp := *d
		cp.BillingAccounts = append([]AccountOption(nil), d.BillingAccounts...)
		cp.Periods = append([]Period(nil), d.Periods...)
		out.Details[id] = &cp
	}
	out.Filters = s.Filters.clone()
	out.Selected = make(map[string]bool, len(s.Selected))
	for id, on := range s.Selected {
		out.Selected[id] = on
	}
	out.Highlight = make(map[string]bool, len(s.Highlight))
	for id, failed := range s.Highlight {
		out.Highlight[id] = failed
	}
	return out
}
