package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	headerTotal      = "X-Total"
	headerPage       = "X-Page"
	headerTotalPages = "X-Total-Pages"
)

// Client wraps interactions with the booking platform API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient constructs a new client. The token is attached as a bearer
// credential on every request; pass the zero value to send unauthenticated
// requests (useful against local mocks).
func NewClient(baseURL, token string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// StatusError is returned for responses with a 4xx/5xx status code.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsCanceled reports whether err is the result of a deliberately cancelled
// request. Timeouts are not cancellations; they surface as ordinary errors.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// FetchResourceBookings lists resource bookings together with their nested
// work periods. Pagination metadata is read from the response headers.
func (c *Client) FetchResourceBookings(ctx context.Context, q BookingsQuery) (BookingsPage, error) {
	params := url.Values{}
	if q.Fields != "" {
		params.Set("fields", q.Fields)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("perPage", strconv.Itoa(q.PerPage))
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sortOrder", q.SortOrder)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.UserHandle != "" {
		params.Set("workPeriods.userHandle", q.UserHandle)
	}
	if q.StartDate != "" {
		params.Set("workPeriods.startDate", q.StartDate)
	}
	for _, status := range q.PaymentStatuses {
		params.Add("workPeriods.paymentStatus", status)
	}

	var bookings []ResourceBooking
	header, err := c.do(ctx, http.MethodGet, "/resourceBookings", params, nil, &bookings)
	if err != nil {
		return BookingsPage{}, err
	}
	page := BookingsPage{
		Bookings:  bookings,
		Page:      headerInt(header, headerPage, q.Page),
		PerPage:   q.PerPage,
		Total:     headerInt(header, headerTotal, len(bookings)),
		PageCount: headerInt(header, headerTotalPages, 1),
	}
	return page, nil
}

// FetchJob retrieves a single job posting.
func (c *Client) FetchJob(ctx context.Context, jobID string) (Job, error) {
	var job Job
	_, err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, nil, &job)
	return job, err
}

// FetchBillingAccounts lists the billing accounts of a project.
func (c *Client) FetchBillingAccounts(ctx context.Context, projectID int64) ([]BillingAccount, error) {
	var accounts []BillingAccount
	path := fmt.Sprintf("/projects/%d/billingAccounts", projectID)
	_, err := c.do(ctx, http.MethodGet, path, nil, nil, &accounts)
	return accounts, err
}

// FetchWorkPeriods lists the full period history of one resource booking,
// oldest first.
func (c *Client) FetchWorkPeriods(ctx context.Context, resourceBookingID string) ([]WorkPeriod, error) {
	params := url.Values{}
	params.Set("resourceBookingId", resourceBookingID)
	params.Set("sortBy", "startDate")
	params.Set("sortOrder", "asc")
	// A booking spans at most a few dozen weeks; one page is enough.
	params.Set("perPage", "100")

	var periods []WorkPeriod
	_, err := c.do(ctx, http.MethodGet, "/work-periods", params, nil, &periods)
	return periods, err
}

// PatchWorkingDays updates the worked-day count of one work period.
func (c *Client) PatchWorkingDays(ctx context.Context, periodID string, days int) error {
	body := map[string]int{"daysWorked": days}
	_, err := c.do(ctx, http.MethodPatch, "/work-periods/"+url.PathEscape(periodID), nil, body, nil)
	return err
}

// PatchBillingAccount updates the billing account of one resource booking.
func (c *Client) PatchBillingAccount(ctx context.Context, resourceBookingID string, accountID int64) error {
	body := map[string]int64{"billingAccountId": accountID}
	_, err := c.do(ctx, http.MethodPatch, "/resourceBookings/"+url.PathEscape(resourceBookingID), nil, body, nil)
	return err
}

// PostPayments schedules payments for an explicit list of work periods and
// returns one result per submitted item.
func (c *Client) PostPayments(ctx context.Context, items []PaymentRequest) ([]PaymentResult, error) {
	var results []PaymentResult
	_, err := c.do(ctx, http.MethodPost, "/work-period-payments", nil, items, &results)
	return results, err
}

// PostPaymentsAll schedules payments for every work period matching the
// filter predicate and returns aggregate success/failure counters.
func (c *Client) PostPaymentsAll(ctx context.Context, filter PaymentsAllFilter) (PaymentsAllResult, error) {
	var result PaymentsAllResult
	_, err := c.do(ctx, http.MethodPost, "/work-period-payments/query", nil, filter, &result)
	return result, err
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) (http.Header, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if !IsCanceled(err) {
			c.log.Debug("request failed", "method", method, "path", path, "error", err)
		}
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil, c.statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.Header, nil
}

func (c *Client) statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
			se.Message = payload.Message
		}
	}
	c.log.Debug("request rejected", "status", resp.StatusCode, "message", se.Message)
	return se
}

func headerInt(h http.Header, name string, fallback int) int {
	v := h.Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
