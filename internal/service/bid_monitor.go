package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"bidmonitor/internal/metrics"
	"bidmonitor/internal/models"
	"bidmonitor/internal/repository"
)

type CategoryStats struct {
	Category   string `json:"category"`
	Offers     int    `json:"offers"`
	Matched    int    `json:"matched"`
	FetchError bool   `json:"fetch_error"`
}

type RunSummary struct {
	RunID          uuid.UUID       `json:"run_id"`
	Status         string          `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	ReferenceItems int             `json:"reference_items"`
	Offers         int             `json:"offers"`
	Matched        int             `json:"matched"`
	Updated        int             `json:"updated"`
	UpdateFailed   int             `json:"update_failed"`
	HistorySaved   int64           `json:"history_saved"`
	HistoryError   string          `json:"history_error,omitempty"`
	LowMatch       bool            `json:"low_match"`
	Categories     []CategoryStats `json:"categories"`
}

// MatchRate is matched records over reference items, 0 with no reference items.
func (s RunSummary) MatchRate() float64 {
	if s.ReferenceItems == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.ReferenceItems)
}

// lowMatch reports fewer than one match per ten reference items.
func lowMatch(matched, referenceItems int) bool {
	return referenceItems > 0 && matched*10 < referenceItems
}

// BidMonitor runs one reconciliation pass: load the reference set, fetch and
// match offers per category, update base tables, then append history.
type BidMonitor struct {
	Loader     *ReferenceLoader
	Fetcher    *OfferFetcher
	Matcher    *Matcher
	Updater    *BaseUpdater
	Appender   *HistoryAppender
	Runs       repository.RunRepository
	Tracker    *RunTracker
	Categories []models.Category
	Source     string
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Clock      func() time.Time
}

func (m *BidMonitor) now() time.Time {
	if m.Clock != nil {
		return m.Clock().UTC()
	}
	return time.Now().UTC()
}

// Run returns an error when the reference set could not be loaded or ctx was
// cancelled before the writes started. Fetch, update and history faults are
// reported in the summary instead.
func (m *BidMonitor) Run(ctx context.Context) (RunSummary, error) {
	if m == nil || m.Loader == nil {
		return RunSummary{}, errors.New("bid monitor is not configured")
	}
	log := logger(m.Logger)
	summary := RunSummary{
		RunID:     uuid.New(),
		StartedAt: m.now(),
	}

	index, err := m.Loader.LoadReference(ctx)
	if err != nil {
		summary.Status = models.RunStatusFailed
		m.finish(ctx, &summary, err)
		return summary, err
	}
	summary.ReferenceItems = len(index)
	if len(index) == 0 {
		log.Info("no reference items, nothing to monitor", zap.String("source", m.Source))
		summary.Status = models.RunStatusEmpty
		m.finish(ctx, &summary, nil)
		return summary, nil
	}

	var records []models.BidRecord
	for _, category := range m.Categories {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled during fetch", zap.Error(err))
			break
		}
		res := m.Fetcher.Fetch(ctx, category)
		stats := CategoryStats{
			Category:   category.String(),
			Offers:     len(res.Offers),
			FetchError: res.Err != nil,
		}
		for _, offer := range res.Offers {
			rec, ok := m.Matcher.Match(offer, index)
			if !ok {
				continue
			}
			records = append(records, rec)
			stats.Matched++
		}
		m.Metrics.ObserveFetch(stats.Category, stats.Offers, stats.FetchError)
		if stats.Matched > 0 {
			log.Info("category matched",
				zap.String("category", stats.Category),
				zap.Int("offers", stats.Offers),
				zap.Int("matched", stats.Matched),
			)
		}
		summary.Offers += stats.Offers
		summary.Matched += stats.Matched
		summary.Categories = append(summary.Categories, stats)
	}
	m.Metrics.ObserveMatches(summary.Matched)
	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("run interrupted before writes: %w", err)
		summary.Status = models.RunStatusFailed
		m.finish(ctx, &summary, err)
		return summary, err
	}

	report := m.Updater.Update(ctx, records)
	summary.Updated = report.Updated
	summary.UpdateFailed = report.Failed
	m.Metrics.ObserveUpdates(report.Updated, report.Failed)

	saved, err := m.Appender.Append(ctx, records)
	if err != nil {
		summary.HistoryError = err.Error()
		log.Error("history append failed", zap.Error(err))
	}
	summary.HistorySaved = saved
	m.Metrics.ObserveHistorySaved(saved)

	summary.LowMatch = lowMatch(summary.Matched, summary.ReferenceItems)
	if summary.LowMatch {
		log.Warn("low match rate, check the reference set or the marketplace API",
			zap.Int("matched", summary.Matched),
			zap.Int("reference_items", summary.ReferenceItems),
			zap.Float64("match_rate", summary.MatchRate()),
		)
	}

	summary.Status = models.RunStatusOK
	m.finish(ctx, &summary, nil)
	return summary, nil
}

func (m *BidMonitor) finish(ctx context.Context, summary *RunSummary, runErr error) {
	summary.FinishedAt = m.now()
	log := logger(m.Logger)

	fields := []zap.Field{
		zap.String("run_id", summary.RunID.String()),
		zap.String("status", summary.Status),
		zap.Int("reference_items", summary.ReferenceItems),
		zap.Int("offers", summary.Offers),
		zap.Int("matched", summary.Matched),
		zap.Int("updated", summary.Updated),
		zap.Int("update_failed", summary.UpdateFailed),
		zap.Int64("history_saved", summary.HistorySaved),
		zap.Float64("match_rate", summary.MatchRate()),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	}
	if runErr != nil {
		log.Error("bid monitor run failed", append(fields, zap.Error(runErr))...)
	} else {
		log.Info("bid monitor run finished", fields...)
	}

	var rate *float64
	if summary.ReferenceItems > 0 {
		r := summary.MatchRate()
		rate = &r
	}
	m.Metrics.ObserveRun(summary.Status, summary.StartedAt, summary.FinishedAt, rate)
	m.Tracker.Record(*summary)

	m.writeRun(context.WithoutCancel(ctx), summary, runErr)
}

func (m *BidMonitor) writeRun(ctx context.Context, summary *RunSummary, runErr error) {
	if m.Runs == nil {
		return
	}
	run := &models.MonitorRun{
		ID:         summary.RunID,
		Source:     m.Source,
		Status:     summary.Status,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		StatsJSON:  statsJSON(summary),
	}
	if runErr != nil {
		msg := runErr.Error()
		run.LastError = &msg
	}
	if err := m.Runs.InsertRun(ctx, run); err != nil {
		logger(m.Logger).Warn("run log write failed", zap.Error(err))
	}
}

func statsJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
