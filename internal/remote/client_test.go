package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.RemoteConfig{
		BaseURL: srv.URL,
		APIKey:  "secret-key",
		Timeout: 2 * time.Second,
	})
}

func TestFetchOrdersDecodesLooseFieldTypes(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders.php", r.URL.Path)
		require.Equal(t, "secret-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`[
			{
				"order_id": "7",
				"customer_name": "Kari Nordmann",
				"order_total": 450,
				"pickup_code": " AB12 ",
				"pickup_time": "Not Picked Up",
				"items": [
					{"product_name": "Brake pads", "door": 3},
					{"product_name": ["Chain", "Lube"], "door": "5"}
				]
			}
		]`))
	})

	orders, err := client.FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	require.EqualValues(t, 7, orders[0].OrderID)
	require.EqualValues(t, "450", orders[0].OrderTotal)

	order, doors := orders[0].ToModel()
	require.Equal(t, "AB12", order.PickupCode)
	require.Nil(t, order.PickupTime)
	require.Nil(t, order.OpeningCode)
	require.Len(t, doors, 2)
	require.Equal(t, "3", doors[0].Door)
	require.Equal(t, "Chain,Lube", doors[1].ProductName)
}

func TestFetchOrdersRejectsNon200(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.FetchOrders(context.Background())
	require.Error(t, err)
}

func TestFetchOrdersRejectsMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.FetchOrders(context.Background())
	require.Error(t, err)
}

func TestReportActionSendsActionTime(t *testing.T) {
	var query map[string]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/update_order_pickup.php", r.URL.Path)
		query = map[string]string{
			"api_key":     r.URL.Query().Get("api_key"),
			"order_id":    r.URL.Query().Get("order_id"),
			"action":      r.URL.Query().Get("action"),
			"action_time": r.URL.Query().Get("action_time"),
		}
		w.Write([]byte(`{"status": "ok"}`))
	})

	when := time.Date(2025, 3, 2, 14, 5, 30, 0, time.Local)
	require.NoError(t, client.ReportAction(context.Background(), 7, model.ActionPickup, when))

	require.Equal(t, "secret-key", query["api_key"])
	require.Equal(t, "7", query["order_id"])
	require.Equal(t, "pickup", query["action"])
	require.Equal(t, "2025-03-02 14:05:30", query["action_time"])
}

func TestFetchDoorRequests(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_door_requests.php", r.URL.Path)
		w.Write([]byte(`[{"id": "12", "door_number": 4}]`))
	})

	requests, err := client.FetchDoorRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.EqualValues(t, 12, requests[0].ID)
	require.EqualValues(t, "4", requests[0].Door)
}

func TestMarkRequestExecutedPostsForm(t *testing.T) {
	var form map[string]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/mark_request_executed.php", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"api_key":    r.PostFormValue("api_key"),
			"request_id": r.PostFormValue("request_id"),
		}
		w.Write([]byte(`{"status": "ok"}`))
	})

	require.NoError(t, client.MarkRequestExecuted(context.Background(), 12))
	require.Equal(t, "secret-key", form["api_key"])
	require.Equal(t, "12", form["request_id"])
}

func TestMarkRequestExecutedSurfacesErrorBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`unknown request`))
	})

	err := client.MarkRequestExecuted(context.Background(), 12)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown request")
}
