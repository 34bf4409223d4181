// Package workperiods implements the synchronization and batch-payment core
// of the admin console: paginated collection loading with cancellation-safe
// refetching, per-row detail loading, debounced working-day edits, and batch
// payment reconciliation. All state lives in a single Store; the UI observes
// it through snapshots and events.
package workperiods

import "strings"

// DateFormatAPI is the wire format for dates in query parameters.
const DateFormatAPI = "2006-01-02"

// BookingStatusPlaced restricts every collection query; only placed bookings
// carry payable periods.
const BookingStatusPlaced = "placed"

// JobNameNone is the sentinel job name for bookings without an associated job.
const JobNameNone = "<Job is not assigned>"

// Status is a payment status as the console presents it. The wire uses a
// different vocabulary; see APIValue and StatusFromAPI.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
	StatusUndefined  Status = "undefined"
)

// statusLabels are the human-readable forms shown in the table.
var statusLabels = map[Status]string{
	StatusPending:    "Pending",
	StatusInProgress: "In Progress",
	StatusPaid:       "Paid",
	StatusCancelled:  "Cancelled",
	StatusUndefined:  "NA",
}

// statusToAPI translates console statuses to the payment service vocabulary.
// StatusUndefined has no wire form and is absent on purpose.
var statusToAPI = map[Status]string{
	StatusPending:    "pending",
	StatusInProgress: "partially-completed",
	StatusPaid:       "completed",
	StatusCancelled:  "cancelled",
}

var apiToStatus = func() map[string]Status {
	m := make(map[string]Status, len(statusToAPI))
	for status, api := range statusToAPI {
		m[api] = status
	}
	return m
}()

// Label returns the display label, "NA" for anything unknown.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[StatusUndefined]
}

// APIValue returns the wire form of the status. ok is false for statuses that
// cannot be transmitted (undefined or unknown).
func (s Status) APIValue() (string, bool) {
	v, ok := statusToAPI[s]
	return v, ok
}

// StatusFromAPI decodes a wire payment status. Unknown or missing values map
// to StatusUndefined.
func StatusFromAPI(v string) Status {
	if s, ok := apiToStatus[strings.ToLower(strings.TrimSpace(v))]; ok {
		return s
	}
	return StatusUndefined
}

// Statuses lists every filterable status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusPaid, StatusCancelled}
}

// ParseStatus resolves user input (status name or display label) to a status.
func ParseStatus(input string) (Status, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	for status, label := range statusLabels {
		if status == StatusUndefined {
			continue
		}
		if needle == string(status) || needle == strings.ToLower(label) {
			return status, true
		}
	}
	return StatusUndefined, false
}

// SortBy is a sortable column of the periods table.
type SortBy string

const (
	SortByUserHandle    SortBy = "userHandle"
	SortByStartDate     SortBy = "startDate"
	SortByEndDate       SortBy = "endDate"
	SortByWeeklyRate    SortBy = "weeklyRate"
	SortByPaymentStatus SortBy = "paymentStatus"
	SortByWorkingDays   SortBy = "workingDays"
)

// SortOrder is the sort direction as transmitted on the wire.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// sortByAPIField maps sort criteria to the API field names accepted by the
// bookings list endpoint.
var sortByAPIField = map[SortBy]string{
	SortByUserHandle:    "workPeriods.userHandle",
	SortByStartDate:     "startDate",
	SortByEndDate:       "endDate",
	SortByWeeklyRate:    "memberRate",
	SortByPaymentStatus: "workPeriods.paymentStatus",
	SortByWorkingDays:   "workPeriods.daysWorked",
}

// APISortField resolves a sort criteria to its API field. Unknown criteria
// fall back to the documented default, user handle.
func APISortField(b SortBy) string {
	if field, ok := sortByAPIField[b]; ok {
		return field
	}
	return sortByAPIField[SortByUserHandle]
}

// SortCycle lists the criteria in the order the UI cycles through them.
func SortCycle() []SortBy {
	return []SortBy{
		SortByUserHandle,
		SortByStartDate,
		SortByEndDate,
		SortByWeeklyRate,
		SortByPaymentStatus,
		SortByWorkingDays,
	}
}

// requiredFields are the booking/period fields the console needs for display,
// filtering and sorting; transmitted as the fields projection of every
// collection query.
var requiredFields = []string{
	"id",
	"jobId",
	"projectId",
	"billingAccountId",
	"startDate",
	"endDate",
	"memberRate",
	"status",
	"workPeriods.id",
	"workPeriods.projectId",
	"workPeriods.userHandle",
	"workPeriods.startDate",
	"workPeriods.endDate",
	"workPeriods.paymentStatus",
	"workPeriods.daysWorked",
	"workPeriods.daysPaid",
	"workPeriods.paymentTotal",
	"workPeriods.payments",
}

// FieldsQuery is the comma-joined fields projection.
var FieldsQuery = strings.Join(requiredFields, ",")
