package domain

import (
	"encoding/json"
	"fmt"
)

// Order is one queued song request. It is a closed sum over two
// variants: a ResolvedOrder carries the chosen song and chart, an
// AmbiguousOrder carries the candidate list still waiting for the
// requester to pick one. A variant never exposes the other variant's
// fields.
type Order interface {
	// ID returns the order id, stable across the ambiguous to resolved
	// transition.
	ID() string
	// Ambiguous reports whether the order still needs disambiguation.
	Ambiguous() bool

	sealed()
}

// ResolvedOrder is a request bound to exactly one song and chart.
type ResolvedOrder struct {
	OrderID string
	Song    *Song
	Chart   *Chart
}

func (o *ResolvedOrder) ID() string      { return o.OrderID }
func (o *ResolvedOrder) Ambiguous() bool { return false }
func (o *ResolvedOrder) sealed()         {}

func (o *ResolvedOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OrderID     string `json:"orderId"`
		IsAmbiguous bool   `json:"isAmbiguous"`
		Song        *Song  `json:"song"`
		Chart       *Chart `json:"chart"`
	}{o.OrderID, false, o.Song, o.Chart})
}

// AmbiguousOrder is a request whose song name matched several catalog
// entries. Candidates keep the matcher's order; the requested
// difficulty is applied once a candidate is confirmed.
type AmbiguousOrder struct {
	OrderID    string
	Candidates []*Song
	Difficulty Difficulty
}

func (o *AmbiguousOrder) ID() string      { return o.OrderID }
func (o *AmbiguousOrder) Ambiguous() bool { return true }
func (o *AmbiguousOrder) sealed()         {}

func (o *AmbiguousOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OrderID     string     `json:"orderId"`
		IsAmbiguous bool       `json:"isAmbiguous"`
		Candidates  []*Song    `json:"candidates"`
		Difficulty  Difficulty `json:"difficulty"`
	}{o.OrderID, true, o.Candidates, o.Difficulty})
}

// UnmarshalOrder decodes a single order from its wire shape, picking
// the variant from the isAmbiguous discriminator.
func UnmarshalOrder(data []byte) (Order, error) {
	var probe struct {
		IsAmbiguous bool `json:"isAmbiguous"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}

	if probe.IsAmbiguous {
		var o struct {
			OrderID    string     `json:"orderId"`
			Candidates []*Song    `json:"candidates"`
			Difficulty Difficulty `json:"difficulty"`
		}
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("decoding ambiguous order: %w", err)
		}
		return &AmbiguousOrder{OrderID: o.OrderID, Candidates: o.Candidates, Difficulty: o.Difficulty}, nil
	}

	var o struct {
		OrderID string `json:"orderId"`
		Song    *Song  `json:"song"`
		Chart   *Chart `json:"chart"`
	}
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}
	return &ResolvedOrder{OrderID: o.OrderID, Song: o.Song, Chart: o.Chart}, nil
}

// UnmarshalOrders decodes a JSON array of orders.
func UnmarshalOrders(data []byte) ([]Order, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding order list: %w", err)
	}

	orders := make([]Order, 0, len(raw))
	for _, entry := range raw {
		order, err := UnmarshalOrder(entry)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}
