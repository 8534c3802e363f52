package readstore

import (
	"context"
	"time"

	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/pgconv"
	"journal-backend/internal/usecase/shared"
)

type PromptReadStore struct {
	db db.DBTX
}

func NewPromptReadStore(dbtx db.DBTX) *PromptReadStore {
	return &PromptReadStore{db: dbtx}
}

func (r *PromptReadStore) FindForDate(ctx context.Context, date time.Time) (*shared.PromptSnapshot, error) {
	const query = `
		SELECT id, question, scheduled_date
		FROM prompts
		WHERE scheduled_date = $1::date`

	var snap shared.PromptSnapshot
	err := r.db.QueryRow(ctx, query, date).Scan(&snap.ID, &snap.Question, &snap.SendDate)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no prompt for date", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find prompt for date", err)
	}
	return &snap, nil
}
