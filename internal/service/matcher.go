package service

import (
	"time"

	"github.com/shopspring/decimal"

	"bidmonitor/internal/client/superbid"
	"bidmonitor/internal/models"
)

type Matcher struct {
	SiteURL string
	Clock   func() time.Time
}

func (m *Matcher) now() time.Time {
	if m != nil && m.Clock != nil {
		return m.Clock().UTC()
	}
	return time.Now().UTC()
}

// Match joins an offer to a known listing by canonical URL and returns the
// record to persist. Offers without a usable id or without a listing are
// skipped.
func (m *Matcher) Match(offer superbid.Offer, index ReferenceIndex) (models.BidRecord, bool) {
	if !offer.ID.Valid() {
		return models.BidRecord{}, false
	}
	siteURL := superbid.DefaultSiteURL
	if m != nil && m.SiteURL != "" {
		siteURL = m.SiteURL
	}
	ref, ok := index[superbid.OfferURL(siteURL, offer.ID)]
	if !ok {
		return models.BidRecord{}, false
	}
	return models.BidRecord{
		Category:     ref.Category,
		Source:       ref.Source,
		ExternalID:   ref.ExternalID,
		LotNumber:    ref.LotNumber,
		TotalBids:    offer.TotalBids.OrZero(),
		TotalBidders: offer.TotalBidders.OrZero(),
		CurrentValue: currentValue(offer.OfferDetail),
		CapturedAt:   m.now(),
	}, true
}

// currentValue prefers a non-zero current minimum bid and falls back to the
// opening value, which may itself be absent.
func currentValue(detail *superbid.OfferDetail) *decimal.Decimal {
	if detail == nil {
		return nil
	}
	if v := detail.CurrentMinBid; v != nil && !v.IsZero() {
		out := *v
		return &out
	}
	if v := detail.InitialBidValue; v != nil {
		out := *v
		return &out
	}
	return nil
}
