package service

import (
	"context"
	"errors"
	"sort"

	"bidmonitor/internal/client/superbid"
	"bidmonitor/internal/models"
	"bidmonitor/internal/repository"
)

// viewRow is a row of the unified view, including the columns the store filters on.
type viewRow struct {
	models.ReferenceItem
	Active bool
}

// stubStore is a test-only in-memory store covering every repository the
// monitor depends on.
type stubStore struct {
	view       []viewRow
	pageErrAt  int
	pageErr    error
	pageCalls  []repository.ListReferenceParams
	baseTables map[string]map[string]models.BidRecord
	updateErr  map[string]error
	updates    []string
	history    map[models.HistoryKey]models.BidHistory
	historyErr error
	reported   *int64
	batches    [][]models.BidHistory
	runs       []models.MonitorRun
}

func newStubStore(rows ...viewRow) *stubStore {
	return &stubStore{
		view:       rows,
		pageErrAt:  -1,
		baseTables: map[string]map[string]models.BidRecord{},
		history:    map[models.HistoryKey]models.BidHistory{},
	}
}

func (s *stubStore) ListReferencePage(ctx context.Context, params repository.ListReferenceParams) ([]models.ReferenceItem, error) {
	page := len(s.pageCalls)
	s.pageCalls = append(s.pageCalls, params)
	if page == s.pageErrAt {
		return nil, s.pageErr
	}
	var filtered []models.ReferenceItem
	for _, row := range s.view {
		if row.Source == params.Source && row.Active {
			filtered = append(filtered, row.ReferenceItem)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Link < filtered[j].Link })
	if params.Offset >= len(filtered) {
		return nil, nil
	}
	end := params.Offset + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[params.Offset:end], nil
}

// seedBase registers a listing in a base table so updates have a row to hit.
func (s *stubStore) seedBase(table string, rec models.BidRecord) {
	if s.baseTables[table] == nil {
		s.baseTables[table] = map[string]models.BidRecord{}
	}
	s.baseTables[table][rec.Source+"/"+rec.ExternalID] = rec
}

func (s *stubStore) UpdateBidFields(ctx context.Context, table string, record models.BidRecord) (int64, error) {
	s.updates = append(s.updates, table+":"+record.ExternalID)
	if err := s.updateErr[record.ExternalID]; err != nil {
		return 0, err
	}
	rows := s.baseTables[table]
	key := record.Source + "/" + record.ExternalID
	if _, ok := rows[key]; !ok {
		return 0, nil
	}
	rows[key] = record
	return 1, nil
}

func (s *stubStore) UpsertHistory(ctx context.Context, rows []models.BidHistory) (int64, error) {
	if s.historyErr != nil {
		return 0, s.historyErr
	}
	seen := map[models.HistoryKey]bool{}
	for _, row := range rows {
		key := models.HistoryKey{Category: row.Category, Source: row.Source, ExternalID: row.ExternalID, CapturedAt: row.CapturedAt.Unix()}
		if seen[key] {
			return 0, errors.New("ON CONFLICT DO UPDATE command cannot affect row a second time")
		}
		seen[key] = true
		s.history[key] = row
	}
	s.batches = append(s.batches, rows)
	if s.reported != nil {
		return *s.reported, nil
	}
	return int64(len(rows)), nil
}

func (s *stubStore) InsertRun(ctx context.Context, run *models.MonitorRun) error {
	s.runs = append(s.runs, *run)
	return nil
}

type stubOffers struct {
	byCategory map[string][]superbid.Offer
	errs       map[string]error
	calls      []string
	onCall     func(category string)
}

func (s *stubOffers) GetOffers(ctx context.Context, category string, pageSize int) ([]superbid.Offer, error) {
	s.calls = append(s.calls, category)
	if s.onCall != nil {
		s.onCall(category)
	}
	if err := s.errs[category]; err != nil {
		return nil, err
	}
	return s.byCategory[category], nil
}

func strPtr(v string) *string { return &v }
