package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bidmonitor/internal/models"
	"bidmonitor/internal/repository"
)

// ReferenceIndex maps a canonical listing URL to the listing it identifies.
type ReferenceIndex map[string]models.ReferenceItem

type ReferenceLoader struct {
	Store    repository.ReferenceRepository
	Source   string
	PageSize int
	Logger   *zap.Logger
}

// LoadReference pages through the active listings of Source. Any page error
// fails the whole load; a partial index is never returned.
func (l *ReferenceLoader) LoadReference(ctx context.Context) (ReferenceIndex, error) {
	if l == nil || l.Store == nil {
		return nil, errors.New("reference store is nil")
	}
	pageSize := l.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	index := make(ReferenceIndex)
	offset := 0
	for page := 0; ; page++ {
		items, err := l.Store.ListReferencePage(ctx, repository.ListReferenceParams{
			Source: l.Source,
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("load reference page %d: %w", page, err)
		}
		for _, item := range items {
			link := strings.TrimSpace(item.Link)
			if link == "" {
				continue
			}
			index[link] = item
		}
		if len(items) < pageSize {
			break
		}
		offset += len(items)
	}
	logger(l.Logger).Info("reference loaded",
		zap.String("source", l.Source),
		zap.Int("items", len(index)),
	)
	return index, nil
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
