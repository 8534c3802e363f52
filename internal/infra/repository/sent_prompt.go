package repository

import (
	"context"

	"journal-backend/internal/domain/prompt"
	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
)

type SentPromptRepository struct{}

func NewSentPromptRepository() *SentPromptRepository {
	return &SentPromptRepository{}
}

// Upsert inserts the (member, prompt, date) send record; a conflicting row
// only bumps last_sent_at. The xmax trick distinguishes a fresh insert from
// a conflict update without a second round trip.
func (r *SentPromptRepository) Upsert(ctx context.Context, tx db.DBTX, rec *prompt.SentPrompt) (bool, error) {
	const query = `
		INSERT INTO sent_prompts (member_id, prompt_id, sent_date, medium, first_sent_at, last_sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id, prompt_id, sent_date)
		DO UPDATE SET last_sent_at = EXCLUDED.last_sent_at
		RETURNING (xmax = 0) AS inserted`

	var inserted bool
	err := tx.QueryRow(ctx, query,
		rec.MemberID, rec.PromptID, rec.SentDate, string(rec.Medium), rec.FirstSentAt, rec.LastSentAt,
	).Scan(&inserted)
	if err != nil {
		return false, infra.WrapRepoErr("failed to upsert sent prompt", err)
	}
	return inserted, nil
}
