package queries

import (
	"context"
	"time"

	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrMemberNotFound = errs.New("member not found")
	ErrInvalidCursor  = errs.New("invalid cursor")
)

type MemberFilters struct {
	Tier *string
}

type MemberReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MemberView, error)
	FindByEmail(ctx context.Context, email string) (*MemberView, error)
	FindFirstPage(ctx context.Context, limit int32, tier *string) ([]*MemberListItem, error)
	FindKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32, tier *string) ([]*MemberListItem, error)
}

type MemberQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*MemberView, error)
	GetByEmail(ctx context.Context, email string) (*MemberView, error)
	List(ctx context.Context, filters MemberFilters, cursor *Cursor, limit int) ([]*MemberListItem, *Cursor, error)
}

type memberQueriesImpl struct {
	readStore MemberReadStore
}

func NewMemberQueries(readStore MemberReadStore) MemberQueries {
	return &memberQueriesImpl{readStore: readStore}
}

func (q *memberQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*MemberView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *memberQueriesImpl) GetByEmail(ctx context.Context, email string) (*MemberView, error) {
	view, err := q.readStore.FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *memberQueriesImpl) List(ctx context.Context, filters MemberFilters, cursor *Cursor, limit int) ([]*MemberListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	var rows []*MemberListItem
	var err error
	if cursor == nil || cursor.After == "" {
		rows, err = q.readStore.FindFirstPage(ctx, int32(limit+1), filters.Tier)
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.readStore.FindKeyset(ctx, lastCreatedAt, lastID, int32(limit+1), filters.Tier)
	}
	if err != nil {
		return nil, nil, err
	}
	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}
