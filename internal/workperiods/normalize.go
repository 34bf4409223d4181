package workperiods

import (
	"fmt"

	"github.com/bookingdesk/payperiod/internal/api"
)

// NormalizePeriodItems maps raw booking records to console rows, one row per
// (booking, work period) pair. Pure function; the same input always yields
// the same rows.
func NormalizePeriodItems(bookings []api.ResourceBooking) []Period {
	var out []Period
	for _, b := range bookings {
		for _, wp := range b.WorkPeriods {
			out = append(out, normalizePeriod(wp, b))
		}
	}
	return out
}

// NormalizeDetailsPeriodItems maps one booking's period history to rows. The
// work-periods endpoint reports the booking's rate per period; the booking
// reference comes from the periods themselves.
func NormalizeDetailsPeriodItems(periods []api.WorkPeriod) []Period {
	out := make([]Period, 0, len(periods))
	for _, wp := range periods {
		p := normalizePeriod(wp, api.ResourceBooking{ID: wp.ResourceBookingID})
		p.WeeklyRate = wp.MemberRate
		out = append(out, p)
	}
	return out
}

func normalizePeriod(wp api.WorkPeriod, b api.ResourceBooking) Period {
	projectID := wp.ProjectID
	if projectID == 0 {
		projectID = b.ProjectID
	}
	return Period{
		ID:               wp.ID,
		RBID:             b.ID,
		JobID:            b.JobID,
		ProjectID:        projectID,
		BillingAccountID: b.BillingAccountID,
		UserHandle:       wp.UserHandle,
		StartDate:        wp.StartDate,
		EndDate:          wp.EndDate,
		WeeklyRate:       b.MemberRate,
		DaysWorked:       wp.DaysWorked,
		DaysPaid:         wp.DaysPaid,
		PaymentStatus:    StatusFromAPI(wp.PaymentStatus),
		PaymentTotal:     wp.PaymentTotal,
		Payments:         wp.Payments,
		LastError:        lastPaymentError(wp.Payments),
	}
}

// lastPaymentError surfaces the most recent failed payment, if any.
func lastPaymentError(payments []api.Payment) string {
	for i := len(payments) - 1; i >= 0; i-- {
		if payments[i].Status == "failed" {
			return fmt.Sprintf("payment %s failed", payments[i].ID)
		}
	}
	return ""
}

// NormalizeBillingAccounts maps raw accounts to selectable options and
// reports whether selectedID is among them. When it is not, callers keep
// their current selection untouched; no default is chosen here.
func NormalizeBillingAccounts(accounts []api.BillingAccount, selectedID int64) ([]AccountOption, bool) {
	options := make([]AccountOption, 0, len(accounts))
	found := false
	for _, a := range accounts {
		options = append(options, AccountOption{
			Label: fmt.Sprintf("%s (%d)", a.Name, a.ID),
			Value: a.ID,
		})
		if a.ID == selectedID {
			found = true
		}
	}
	return options, found
}

// ExtractJobName returns the job's display name, falling back to the no-job
// sentinel for untitled jobs.
func ExtractJobName(job api.Job) string {
	if job.Title == "" {
		return JobNameNone
	}
	return job.Title
}
