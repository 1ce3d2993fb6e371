package remote

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/model"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/timeutil"
)

// FlexString decodes a JSON value that may arrive as a string, a number,
// null, or a list of strings. The authority assembles its payloads from
// loosely typed store metadata, so field types are not stable; lists are
// flattened to a comma-separated string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var parts []FlexString
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		joined := make([]string, 0, len(parts))
		for _, p := range parts {
			joined = append(joined, string(p))
		}
		*f = FlexString(strings.Join(joined, ","))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// FlexUint decodes a JSON number that may be quoted or float-typed
type FlexUint uint

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexUint) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		*f = FlexUint(v)
		return nil
	}
	// PHP's encoder is free to emit ids as floats
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return errors.Errorf("not a valid id: %q", s)
	}
	*f = FlexUint(v)
	return nil
}

// ItemPayload is one fulfillment line of a remote order
type ItemPayload struct {
	ProductName FlexString `json:"product_name"`
	Door        FlexString `json:"door"`
}

// OrderPayload is one order record as delivered by GET /orders
type OrderPayload struct {
	OrderID      FlexUint      `json:"order_id"`
	CustomerName FlexString    `json:"customer_name"`
	OrderDate    FlexString    `json:"order_date"`
	OrderTotal   FlexString    `json:"order_total"`
	PickupCode   FlexString    `json:"pickup_code"`
	PickupTime   FlexString    `json:"pickup_time"`
	OpeningCode  FlexString    `json:"opening_code"`
	StartTime    FlexString    `json:"start_time"`
	EndTime      FlexString    `json:"end_time"`
	Items        []ItemPayload `json:"items"`
}

// ToModel converts the wire record to the typed local model. Placeholder
// strings and unparsable timestamps become nil, never sentinels.
func (p OrderPayload) ToModel() (*model.Order, []model.OrderDoor) {
	order := &model.Order{
		ID:           uint(p.OrderID),
		CustomerName: string(p.CustomerName),
		OrderDate:    string(p.OrderDate),
		OrderTotal:   string(p.OrderTotal),
		PickupCode:   sanitizeCode(string(p.PickupCode)),
		PickupTime:   timeutil.ParseOptional(string(p.PickupTime)),
		OpeningCode:  optionalCode(string(p.OpeningCode)),
		OpeningStart: timeutil.ParseOptional(string(p.StartTime)),
		OpeningEnd:   timeutil.ParseOptional(string(p.EndTime)),
	}

	doors := make([]model.OrderDoor, 0, len(p.Items))
	for _, item := range p.Items {
		doors = append(doors, model.OrderDoor{
			OrderID:     order.ID,
			ProductName: string(item.ProductName),
			Door:        strings.TrimSpace(string(item.Door)),
		})
	}
	return order, doors
}

// sanitizeCode maps the authority's "Not Assigned" style placeholders to an
// empty string. An empty code can never match: the resolver rejects empty
// input before the lookup.
func sanitizeCode(s string) string {
	if timeutil.IsAbsent(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

func optionalCode(s string) *string {
	if timeutil.IsAbsent(s) {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	return &trimmed
}

// DoorRequest is a remotely requested door opening
type DoorRequest struct {
	ID   FlexUint   `json:"id"`
	Door FlexString `json:"door_number"`
}
