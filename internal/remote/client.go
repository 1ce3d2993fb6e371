// Package remote talks to the order authority over HTTP. The authority is
// reachable only intermittently; every call has a bounded timeout and callers
// treat any error as "try again later".
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/pkg/errors"
)

// Client defines the calls the kiosk makes against the remote authority
type Client interface {
	FetchOrders(ctx context.Context) ([]OrderPayload, error)
	ReportAction(ctx context.Context, orderID uint, action model.Action, actionTime time.Time) error
	FetchDoorRequests(ctx context.Context) ([]DoorRequest, error)
	MarkRequestExecuted(ctx context.Context, requestID uint) error
}

// httpClient implements Client against the authority's HTTP API
type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new remote authority client
func NewClient(cfg config.RemoteConfig) Client {
	return &httpClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *httpClient) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	params.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}
	return resp, nil
}

// FetchOrders retrieves the full order list from the authority
func (c *httpClient) FetchOrders(ctx context.Context) ([]OrderPayload, error) {
	resp, err := c.get(ctx, "orders.php", url.Values{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var orders []OrderPayload
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, errors.Wrap(err, "malformed orders payload")
	}
	return orders, nil
}

// ReportAction notifies the authority that a door action was performed.
// actionTime is when the doors opened, which may be well before this call if
// the report is replayed from the outbox.
func (c *httpClient) ReportAction(ctx context.Context, orderID uint, action model.Action, actionTime time.Time) error {
	params := url.Values{}
	params.Set("order_id", strconv.FormatUint(uint64(orderID), 10))
	params.Set("action", string(action))
	if !actionTime.IsZero() {
		params.Set("action_time", actionTime.Format("2006-01-02 15:04:05"))
	}
	resp, err := c.get(ctx, "update_order_pickup.php", params)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// FetchDoorRequests retrieves pending remote door-open requests
func (c *httpClient) FetchDoorRequests(ctx context.Context) ([]DoorRequest, error) {
	resp, err := c.get(ctx, "get_door_requests.php", url.Values{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var requests []DoorRequest
	if err := json.NewDecoder(resp.Body).Decode(&requests); err != nil {
		return nil, errors.Wrap(err, "malformed door requests payload")
	}
	return requests, nil
}

// MarkRequestExecuted confirms a remote door-open request was carried out
func (c *httpClient) MarkRequestExecuted(ctx context.Context, requestID uint) error {
	form := url.Values{}
	form.Set("api_key", c.apiKey)
	form.Set("request_id", strconv.FormatUint(uint64(requestID), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"mark_request_executed.php", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "mark_request_executed request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mark_request_executed returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}
