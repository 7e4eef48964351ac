package service

import (
	"context"

	"go.uber.org/zap"

	"bidmonitor/internal/client/superbid"
	"bidmonitor/internal/models"
)

type OfferSource interface {
	GetOffers(ctx context.Context, category string, pageSize int) ([]superbid.Offer, error)
}

type FetchResult struct {
	Category models.Category
	Offers   []superbid.Offer
	Err      error
}

// OfferFetcher reads the first page of offers per category. Faults are
// contained to the category they happened in.
type OfferFetcher struct {
	Client   OfferSource
	PageSize int
	Logger   *zap.Logger
}

func (f *OfferFetcher) Fetch(ctx context.Context, category models.Category) FetchResult {
	res := FetchResult{Category: category}
	if f == nil || f.Client == nil {
		return res
	}
	offers, err := f.Client.GetOffers(ctx, category.String(), f.PageSize)
	if err != nil {
		logger(f.Logger).Warn("offer fetch failed",
			zap.String("category", category.String()),
			zap.Error(err),
		)
		res.Err = err
		return res
	}
	res.Offers = offers
	return res
}
