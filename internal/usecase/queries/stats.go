package queries

import (
	"context"

	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/errs"
)

var ErrStatsNotComputed = errs.New("member stats not computed yet")

type StatsReadStore interface {
	FindLatest(ctx context.Context) (*MemberStatsView, error)
}

type StatsQueries interface {
	GetLatest(ctx context.Context) (*MemberStatsView, error)
}

type statsQueriesImpl struct {
	readStore StatsReadStore
}

func NewStatsQueries(readStore StatsReadStore) StatsQueries {
	return &statsQueriesImpl{readStore: readStore}
}

func (q *statsQueriesImpl) GetLatest(ctx context.Context) (*MemberStatsView, error) {
	view, err := q.readStore.FindLatest(ctx)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrStatsNotComputed
		}
		return nil, err
	}
	return view, nil
}
