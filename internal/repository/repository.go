package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bidmonitor/internal/models"
)

var ErrUnknownCategory = errors.New("category has no allow-listed base table")

type ListReferenceParams struct {
	Source string
	Limit  int
	Offset int
}

// ReferenceRepository reads the unified view of active listings.
type ReferenceRepository interface {
	ListReferencePage(ctx context.Context, params ListReferenceParams) ([]models.ReferenceItem, error)
}

// BaseTableRepository updates the live bid columns of one listing in a
// per-category base table. table must come from a TableRouter.
type BaseTableRepository interface {
	UpdateBidFields(ctx context.Context, table string, record models.BidRecord) (int64, error)
}

type HistoryRepository interface {
	UpsertHistory(ctx context.Context, rows []models.BidHistory) (int64, error)
}

type RunRepository interface {
	InsertRun(ctx context.Context, run *models.MonitorRun) error
}

// TableRouter maps a category to its base table. Only known categories are
// routable; the table defaults to the category slug.
type TableRouter struct {
	tables map[models.Category]string
}

func NewTableRouter(overrides map[string]string) (TableRouter, error) {
	tables := make(map[models.Category]string, len(models.AllCategories))
	for _, cat := range models.AllCategories {
		tables[cat] = cat.String()
	}
	for raw, table := range overrides {
		cat, ok := models.ParseCategory(raw)
		if !ok {
			return TableRouter{}, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
		}
		table = strings.TrimSpace(table)
		if table == "" {
			return TableRouter{}, fmt.Errorf("empty base table for category %q", raw)
		}
		tables[cat] = table
	}
	return TableRouter{tables: tables}, nil
}

func (r TableRouter) Resolve(category string) (string, error) {
	cat, ok := models.ParseCategory(category)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	table, ok := r.tables[cat]
	if !ok || table == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return table, nil
}
