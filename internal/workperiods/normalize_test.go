package workperiods

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookingdesk/payperiod/internal/api"
)

func TestNormalizePeriodItems(t *testing.T) {
	t.Parallel()

	bookings := []api.ResourceBooking{
		{
			ID:               "rb-1",
			ProjectID:        77,
			JobID:            "job-1",
			BillingAccountID: 500,
			MemberRate:       1200,
			WorkPeriods: []api.WorkPeriod{
				{ID: "wp-1", UserHandle: "alice", StartDate: "2026-08-24", EndDate: "2026-08-30", DaysWorked: 3, PaymentStatus: "pending"},
				{ID: "wp-2", UserHandle: "alice", StartDate: "2026-08-31", EndDate: "2026-09-06", DaysWorked: 5, PaymentStatus: "completed"},
			},
		},
		{
			ID:        "rb-2",
			ProjectID: 78,
			WorkPeriods: []api.WorkPeriod{
				{ID: "wp-3", UserHandle: "bob", PaymentStatus: "partially-completed"},
			},
		},
	}

	rows := NormalizePeriodItems(bookings)
	require.Len(t, rows, 3)

	assert.Equal(t, "rb-1", rows[0].RBID)
	assert.Equal(t, "job-1", rows[0].JobID)
	assert.Equal(t, int64(500), rows[0].BillingAccountID)
	assert.Equal(t, 1200.0, rows[0].WeeklyRate)
	assert.Equal(t, StatusPending, rows[0].PaymentStatus)
	assert.Equal(t, StatusPaid, rows[1].PaymentStatus)
	assert.Equal(t, StatusInProgress, rows[2].PaymentStatus)

	// Normalizing the same input again yields identical rows.
	again := NormalizePeriodItems(bookings)
	assert.Equal(t, rows, again)
}

func TestNormalizePeriodItemsUnknownStatus(t *testing.T) {
	t.Parallel()

	rows := NormalizePeriodItems([]api.ResourceBooking{
		{ID: "rb-1", WorkPeriods: []api.WorkPeriod{{ID: "wp-1", PaymentStatus: "exploded"}}},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, StatusUndefined, rows[0].PaymentStatus)
	assert.Equal(t, "NA", rows[0].PaymentStatus.Label())
}

func TestNormalizeDetailsPeriodItems(t *testing.T) {
	t.Parallel()

	rows := NormalizeDetailsPeriodItems([]api.WorkPeriod{
		{ID: "wp-1", ResourceBookingID: "rb-1", MemberRate: 900, DaysWorked: 4, PaymentStatus: "completed"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "rb-1", rows[0].RBID)
	assert.Equal(t, 900.0, rows[0].WeeklyRate)
	assert.Equal(t, StatusPaid, rows[0].PaymentStatus)
}

func TestNormalizeDetailsPeriodItemsFailedPayment(t *testing.T) {
	t.Parallel()

	rows := NormalizeDetailsPeriodItems([]api.WorkPeriod{
		{ID: "wp-1", Payments: []api.Payment{
			{ID: "pay-1", Status: "completed"},
			{ID: "pay-2", Status: "failed"},
		}},
	})
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].LastError, "pay-2")
}

func TestNormalizeBillingAccounts(t *testing.T) {
	t.Parallel()

	accounts := []api.BillingAccount{
		{ID: 100, Name: "Main"},
		{ID: 200, Name: "Backup"},
	}

	options, found := NormalizeBillingAccounts(accounts, 200)
	require.Len(t, options, 2)
	assert.True(t, found)
	assert.Equal(t, "Main (100)", options[0].Label)
	assert.Equal(t, int64(200), options[1].Value)

	_, found = NormalizeBillingAccounts(accounts, 999)
	assert.False(t, found)
}

func TestExtractJobName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Backend Engineer", ExtractJobName(api.Job{ID: "j1", Title: "Backend Engineer"}))
	assert.Equal(t, JobNameNone, ExtractJobName(api.Job{ID: "j1"}))
}

func TestStatusVocabulary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusPaid, StatusFromAPI("completed"))
	assert.Equal(t, StatusInProgress, StatusFromAPI("partially-completed"))
	assert.Equal(t, StatusUndefined, StatusFromAPI(""))
	assert.Equal(t, StatusUndefined, StatusFromAPI("whatever"))

	v, ok := StatusPaid.APIValue()
	require.True(t, ok)
	assert.Equal(t, "completed", v)

	_, ok = StatusUndefined.APIValue()
	assert.False(t, ok)

	status, ok := ParseStatus("In Progress")
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, status)
}

func TestAPISortFieldFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "workPeriods.userHandle", APISortField(SortBy("bogus")))
	assert.Equal(t, "workPeriods.daysWorked", APISortField(SortByWorkingDays))
}

func TestWeekStart(t *testing.T) {
	t.Parallel()

	// 2026-08-30 is a Sunday; its week starts Monday the 24th.
	sunday := mustDate(t, "2026-08-30")
	assert.Equal(t, "2026-08-24", WeekStart(sunday).Format(DateFormatAPI))

	monday := mustDate(t, "2026-08-24")
	assert.Equal(t, "2026-08-24", WeekStart(monday).Format(DateFormatAPI))
}
