package fleetdesk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Login exchanges credentials for a token and starts using it.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res LoginResult
	if err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// ListHistory returns one page of activity records.
func (c *Client) ListHistory(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	endpoint := "/v1/history"
	if len(v) > 0 {
		endpoint += "?" + v.Encode()
	}

	var page HistoryPage
	if err := c.doWithRetry(ctx, historyAttempts, http.MethodGet, endpoint, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// LatestHistory returns the newest activity records.
func (c *Client) LatestHistory(ctx context.Context) ([]ActivityRecord, error) {
	var records []ActivityRecord
	if err := c.doWithRetry(ctx, historyAttempts, http.MethodGet, "/v1/history/latest", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetHistory returns one activity record.
func (c *Client) GetHistory(ctx context.Context, id string) (*ActivityRecord, error) {
	var rec ActivityRecord
	if err := c.doWithRetry(ctx, historyAttempts, http.MethodGet, "/v1/history/"+pathEscape(id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// HistoryDetails returns the rendered sub-table of one record.
func (c *Client) HistoryDetails(ctx context.Context, id string) (*SubTable, error) {
	var table SubTable
	if err := c.doWithRetry(ctx, historyAttempts, http.MethodGet, "/v1/history/"+pathEscape(id)+"/details", &table); err != nil {
		return nil, err
	}
	return &table, nil
}

// QuoteStore returns the caller's committed quote items and wizard state.
func (c *Client) QuoteStore(ctx context.Context) (*StoreView, error) {
	var view StoreView
	if err := c.doRequest(ctx, http.MethodGet, "/v1/quote/store", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SubmitQuote submits the caller's quote store. It is not retried: a
// response lost after the server stored the quote would submit it twice.
func (c *Client) SubmitQuote(ctx context.Context) (*QuoteRequest, error) {
	var q QuoteRequest
	if err := c.doRequest(ctx, http.MethodPost, "/v1/quotes", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuotes returns the caller's submitted quotes.
func (c *Client) ListQuotes(ctx context.Context, page, size int) ([]QuoteRequest, error) {
	endpoint := "/v1/quotes?page=" + strconv.Itoa(page) + "&size=" + strconv.Itoa(size)
	var quotes []QuoteRequest
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// CancelQuote cancels a quote that has not been dispatched yet.
func (c *Client) CancelQuote(ctx context.Context, id int) (*QuoteRequest, error) {
	var q QuoteRequest
	if err := c.doRequest(ctx, http.MethodPost, "/v1/quotes/"+strconv.Itoa(id)+"/cancel", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
