package superbid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OfferID accepts the id as a JSON number or string.
type OfferID string

func (id *OfferID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OfferID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("offer id: %w", err)
	}
	*id = OfferID(n.String())
	return nil
}

// Valid reports whether the id can address an offer page. Empty and zero ids cannot.
func (id OfferID) Valid() bool {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return false
	}
	if d, err := decimal.NewFromString(s); err == nil && d.IsZero() {
		return false
	}
	return true
}

func (id OfferID) String() string {
	return string(id)
}

// Count is an optional counter. Numbers, numeric strings and integral floats
// decode; null or anything else leaves it absent.
type Count struct {
	Value int
	Valid bool
}

func CountOf(v int) Count {
	return Count{Value: v, Valid: true}
}

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	*c = Count{Value: int(d.IntPart()), Valid: true}
	return nil
}

func (c Count) OrZero() int {
	if !c.Valid {
		return 0
	}
	return c.Value
}

type OffersResponse struct {
	Total  Count             `json:"total"`
	Offers []json.RawMessage `json:"offers"`
}

// Offer carries only the fields the monitor consumes. Every field may be absent.
type Offer struct {
	ID           OfferID      `json:"id"`
	TotalBids    Count        `json:"totalBids"`
	TotalBidders Count        `json:"totalBidders"`
	OfferDetail  *OfferDetail `json:"offerDetail"`
}

type OfferDetail struct {
	CurrentMinBid   *decimal.Decimal `json:"currentMinBid"`
	InitialBidValue *decimal.Decimal `json:"initialBidValue"`
}

// parseOffers decodes the envelope strictly and each offer on its own, so one
// malformed entry only drops itself. skipped counts the dropped entries.
func parseOffers(body []byte) (offers []Offer, skipped int, err error) {
	var resp OffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("decode offers: %w", err)
	}
	offers = make([]Offer, 0, len(resp.Offers))
	for _, raw := range resp.Offers {
		var offer Offer
		if err := json.Unmarshal(raw, &offer); err != nil {
			skipped++
			continue
		}
		offers = append(offers, offer)
	}
	return offers, skipped, nil
}
