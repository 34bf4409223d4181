package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ResourceBooking is an assignment of a member to a project for a date range.
// The list endpoint nests the booking's work periods when they are requested
// through the fields projection.
type ResourceBooking struct {
	ID               string       `json:"id"`
	ProjectID        int64        `json:"projectId"`
	JobID            string       `json:"jobId,omitempty"`
	BillingAccountID int64        `json:"billingAccountId,omitempty"`
	StartDate        string       `json:"startDate"`
	EndDate          string       `json:"endDate"`
	MemberRate       float64      `json:"memberRate"`
	Status           string       `json:"status"`
	WorkPeriods      []WorkPeriod `json:"workPeriods,omitempty"`
}

// WorkPeriod is one weekly span of a resource booking eligible for payment.
type WorkPeriod struct {
	ID                string    `json:"id"`
	ResourceBookingID string    `json:"resourceBookingId,omitempty"`
	ProjectID         int64     `json:"projectId,omitempty"`
	UserHandle        string    `json:"userHandle"`
	StartDate         string    `json:"startDate"`
	EndDate           string    `json:"endDate"`
	PaymentStatus     string    `json:"paymentStatus,omitempty"`
	DaysWorked        int       `json:"daysWorked"`
	DaysPaid          int       `json:"daysPaid"`
	PaymentTotal      float64   `json:"paymentTotal"`
	MemberRate        float64   `json:"memberRate,omitempty"`
	Payments          []Payment `json:"payments,omitempty"`
}

// Payment is one scheduled or settled payment attached to a work period.
type Payment struct {
	ID           string  `json:"id"`
	WorkPeriodID string  `json:"workPeriodId,omitempty"`
	ChallengeID  string  `json:"challengeId,omitempty"`
	Amount       float64 `json:"amount"`
	Days         int     `json:"days"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// Job is the job posting a resource booking was made against.
type Job struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BillingAccount is one billing account available on a project.
type BillingAccount struct {
	ID   int64  `json:"tcBillingAccountId"`
	Name string `json:"name"`
}

// BookingsQuery carries every parameter of the resource-bookings list call.
// Zero-valued optional fields are omitted from the request.
type BookingsQuery struct {
	Fields          string
	Page            int
	PerPage         int
	SortBy          string
	SortOrder       string
	Status          string
	UserHandle      string
	StartDate       string // YYYY-MM-DD
	PaymentStatuses []string
}

// BookingsPage is one page of the bookings collection together with the
// pagination metadata the server reports in response headers.
type BookingsPage struct {
	Bookings  []ResourceBooking
	Page      int
	PerPage   int
	Total     int
	PageCount int
}

// PaymentRequest asks for a payment to be scheduled for one work period.
type PaymentRequest struct {
	WorkPeriodID string `json:"workPeriodId"`
}

// PaymentResult is the per-item outcome of an itemized payment submission.
// Error is nil on success.
type PaymentResult struct {
	WorkPeriodID string        `json:"workPeriodId"`
	Amount       float64       `json:"amount,omitempty"`
	Error        *PaymentError `json:"error,omitempty"`
}

// Failed reports whether the item carries an embedded error marker.
func (r PaymentResult) Failed() bool { return r.Error != nil }

// PaymentError is the embedded error marker of a failed payment item.
type PaymentError struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

func (e *PaymentError) Error() string { return e.Message }

// PaymentsAllFilter is the filter predicate of the pay-all-matching call. The
// field names mirror the query parameters of the bookings list endpoint.
type PaymentsAllFilter struct {
	Status          string   `json:"status"`
	UserHandle      string   `json:"workPeriods.userHandle,omitempty"`
	StartDate       string   `json:"workPeriods.startDate,omitempty"`
	PaymentStatuses []string `json:"workPeriods.paymentStatus,omitempty"`
}

// PaymentsAllResult is the aggregate outcome of a pay-all-matching call.
type PaymentsAllResult struct {
	TotalSuccess FlexInt `json:"totalSuccess"`
	TotalError   FlexInt `json:"totalError"`
}

// FlexInt decodes from either a JSON number or a numeric string. The payments
// service has been observed returning both for the aggregate counters.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("flexible int %q: %w", s, err)
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the plain integer value.
func (f FlexInt) Int() int { return int(f) }
