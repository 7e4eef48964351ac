package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bidmonitor/internal/models"
	"bidmonitor/internal/repository"
)

type HistoryAppender struct {
	Store  repository.HistoryRepository
	Logger *zap.Logger
}

// Append upserts one history row per key and returns the row count the store
// reports. On failure nothing counts as saved.
func (a *HistoryAppender) Append(ctx context.Context, records []models.BidRecord) (int64, error) {
	rows := dedupHistory(records)
	if len(rows) == 0 {
		return 0, nil
	}
	if a == nil || a.Store == nil {
		return 0, errors.New("history store is nil")
	}
	written, err := a.Store.UpsertHistory(ctx, rows)
	if err != nil {
		logger(a.Logger).Warn("history upsert failed",
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		return 0, err
	}
	if written != int64(len(rows)) {
		logger(a.Logger).Warn("history upsert wrote fewer rows than sent",
			zap.Int("rows", len(rows)),
			zap.Int64("written", written),
		)
	}
	return written, nil
}

// dedupHistory keeps the last record per key, in the order keys first appear.
func dedupHistory(records []models.BidRecord) []models.BidHistory {
	if len(records) == 0 {
		return nil
	}
	pos := make(map[models.HistoryKey]int, len(records))
	rows := make([]models.BidHistory, 0, len(records))
	for _, rec := range records {
		key := rec.HistoryKey()
		if i, ok := pos[key]; ok {
			rows[i] = models.NewBidHistory(rec)
			continue
		}
		pos[key] = len(rows)
		rows = append(rows, models.NewBidHistory(rec))
	}
	return rows
}
