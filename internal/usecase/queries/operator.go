package queries

import (
	"context"

	"github.com/google/uuid"

	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/errs"
)

var (
	ErrOperatorNotFound = errs.New("operator not found")
	ErrOperatorInactive = errs.New("operator inactive")
)

type OperatorQueries interface {
	GetCurrentOperator(ctx context.Context, operatorID uuid.UUID) (*AuthorizedOperatorView, error)
}

type OperatorReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AuthorizedOperatorView, error)
	FindByEmail(ctx context.Context, email string) (*AuthorizedOperatorView, string, error)
}

type operatorQueriesImpl struct {
	readStore OperatorReadStore
}

func NewOperatorQueries(readStore OperatorReadStore) OperatorQueries {
	return &operatorQueriesImpl{
		readStore: readStore,
	}
}

func (q *operatorQueriesImpl) GetCurrentOperator(ctx context.Context, operatorID uuid.UUID) (*AuthorizedOperatorView, error) {
	op, err := q.readStore.FindByID(ctx, operatorID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}

	if !op.IsActive {
		return nil, ErrOperatorInactive
	}

	return op, nil
}
