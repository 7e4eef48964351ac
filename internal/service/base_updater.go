package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bidmonitor/internal/models"
	"bidmonitor/internal/repository"
)

type UpdateOutcome struct {
	Record       models.BidRecord
	RowsAffected int64
	Err          error
}

type CategoryUpdate struct {
	Category string
	Updated  int
	Failed   int
}

type UpdateReport struct {
	Updated    int
	Failed     int
	ByCategory []CategoryUpdate
	Outcomes   []UpdateOutcome
}

// BaseUpdater writes live bid figures back into the per-category base tables,
// one point update per record. A failed record never stops the others.
type BaseUpdater struct {
	Store  repository.BaseTableRepository
	Router repository.TableRouter
	Logger *zap.Logger
}

func (u *BaseUpdater) Update(ctx context.Context, records []models.BidRecord) UpdateReport {
	var report UpdateReport
	if len(records) == 0 {
		return report
	}
	if u == nil {
		u = &BaseUpdater{}
	}
	log := logger(u.Logger)

	order := make([]string, 0)
	groups := make(map[string][]models.BidRecord)
	for _, rec := range records {
		if _, ok := groups[rec.Category]; !ok {
			order = append(order, rec.Category)
		}
		groups[rec.Category] = append(groups[rec.Category], rec)
	}

	for _, category := range order {
		group := groups[category]
		tally := CategoryUpdate{Category: category}

		table, routeErr := u.Router.Resolve(category)
		for _, rec := range group {
			outcome := UpdateOutcome{Record: rec}
			switch {
			case routeErr != nil:
				outcome.Err = routeErr
			case u.Store == nil:
				outcome.Err = errors.New("base table store is nil")
			default:
				outcome.RowsAffected, outcome.Err = u.Store.UpdateBidFields(ctx, table, rec)
			}
			if outcome.Err != nil {
				tally.Failed++
				log.Warn("base table update failed",
					zap.String("category", category),
					zap.String("external_id", rec.ExternalID),
					zap.Error(outcome.Err),
				)
			} else {
				tally.Updated++
			}
			report.Outcomes = append(report.Outcomes, outcome)
		}

		report.Updated += tally.Updated
		report.Failed += tally.Failed
		report.ByCategory = append(report.ByCategory, tally)
		if tally.Updated > 0 || tally.Failed > 0 {
			log.Info("base table updated",
				zap.String("category", category),
				zap.Int("updated", tally.Updated),
				zap.Int("failed", tally.Failed),
			)
		}
	}
	return report
}
