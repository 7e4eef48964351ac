package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidRecord is one matched offer: reference metadata plus the live bid figures
// captured at transform time.
type BidRecord struct {
	Category     string
	Source       string
	ExternalID   string
	LotNumber    *string
	TotalBids    int
	TotalBidders int
	CurrentValue *decimal.Decimal
	CapturedAt   time.Time
}

// HistoryKey identifies a history row: captured_at only counts to the second.
type HistoryKey struct {
	Category   string
	Source     string
	ExternalID string
	CapturedAt int64
}

func (r BidRecord) HistoryKey() HistoryKey {
	return HistoryKey{
		Category:   r.Category,
		Source:     r.Source,
		ExternalID: r.ExternalID,
		CapturedAt: r.CapturedAt.Unix(),
	}
}

// BidHistory is a row of the append-style history table.
type BidHistory struct {
	Category     string           `gorm:"type:text;not null;uniqueIndex:uq_auction_bid_history_key,priority:1;comment:base table category"`
	Source       string           `gorm:"type:text;not null;uniqueIndex:uq_auction_bid_history_key,priority:2;comment:provenance tag"`
	ExternalID   string           `gorm:"column:external_id;type:text;not null;uniqueIndex:uq_auction_bid_history_key,priority:3;comment:marketplace offer id"`
	LotNumber    *string          `gorm:"type:text;comment:lot number"`
	TotalBids    int              `gorm:"not null;comment:bid count"`
	TotalBidders int              `gorm:"not null;comment:bidder count"`
	CurrentValue *decimal.Decimal `gorm:"type:numeric(20,2);comment:current minimum bid"`
	CapturedAt   time.Time        `gorm:"type:timestamptz;not null;uniqueIndex:uq_auction_bid_history_key,priority:4;comment:capture time, whole seconds"`
}

func (BidHistory) TableName() string {
	return "auction_bid_history"
}

// NewBidHistory projects a record onto a history row with captured_at cut to
// the second, so the stored value is the conflict key itself.
func NewBidHistory(r BidRecord) BidHistory {
	return BidHistory{
		Category:     r.Category,
		Source:       r.Source,
		ExternalID:   r.ExternalID,
		LotNumber:    r.LotNumber,
		TotalBids:    r.TotalBids,
		TotalBidders: r.TotalBidders,
		CurrentValue: r.CurrentValue,
		CapturedAt:   r.CapturedAt.UTC().Truncate(time.Second),
	}
}
