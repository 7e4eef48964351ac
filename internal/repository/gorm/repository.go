package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bidmonitor/internal/models"
	"bidmonitor/internal/repository"
)

// Tables names the relations the store works against. Every name is
// qualified with Schema when it is set.
type Tables struct {
	Schema        string
	ReferenceView string
	HistoryTable  string
	RunTable      string
}

// ErrNoDB is returned by reads on a store without a connection.
var ErrNoDB = errors.New("store has no database connection")

type Store struct {
	db     *gorm.DB
	tables Tables
}

func New(db *gorm.DB, tables Tables) *Store {
	if strings.TrimSpace(tables.ReferenceView) == "" {
		tables.ReferenceView = "vw_auctions_unified"
	}
	if strings.TrimSpace(tables.HistoryTable) == "" {
		tables.HistoryTable = models.BidHistory{}.TableName()
	}
	if strings.TrimSpace(tables.RunTable) == "" {
		tables.RunTable = models.MonitorRun{}.TableName()
	}
	return &Store{db: db, tables: tables}
}

func (s *Store) qualify(name string) string {
	schema := strings.TrimSpace(s.tables.Schema)
	if schema == "" {
		return name
	}
	return schema + "." + name
}

func (s *Store) ListReferencePage(ctx context.Context, params repository.ListReferenceParams) ([]models.ReferenceItem, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoDB
	}
	limit := normalizeLimit(params.Limit, 1000)
	offset := normalizeOffset(params.Offset)
	var items []models.ReferenceItem
	if err := s.db.WithContext(ctx).
		Table(s.qualify(s.tables.ReferenceView)).
		Select("link", "category", "source", "external_id", "lot_number").
		Where("source = ?", params.Source).
		Where("is_active = ?", true).
		Order("link asc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateBidFields(ctx context.Context, table string, record models.BidRecord) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var value any
	if record.CurrentValue != nil {
		value = *record.CurrentValue
	}
	res := s.db.WithContext(ctx).
		Table(s.qualify(table)).
		Where("source = ?", record.Source).
		Where("external_id = ?", record.ExternalID).
		Updates(map[string]any{
			"total_bids":      record.TotalBids,
			"total_bidders":   record.TotalBidders,
			"value":           value,
			"last_scraped_at": record.CapturedAt,
		})
	return res.RowsAffected, res.Error
}

// UpsertHistory writes all rows in one statement. Rows must already be unique
// on the conflict key; Postgres rejects a statement that touches a row twice.
func (s *Store) UpsertHistory(ctx context.Context, rows []models.BidHistory) (int64, error) {
	if s == nil || s.db == nil || len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Table(s.qualify(s.tables.HistoryTable)).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "category"},
				{Name: "source"},
				{Name: "external_id"},
				{Name: "captured_at"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"lot_number",
				"total_bids",
				"total_bidders",
				"current_value",
			}),
		}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (s *Store) InsertRun(ctx context.Context, run *models.MonitorRun) error {
	if s == nil || s.db == nil || run == nil {
		return nil
	}
	return s.db.WithContext(ctx).Table(s.qualify(s.tables.RunTable)).Create(run).Error
}

func normalizeLimit(limit int, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
