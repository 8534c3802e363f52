package repository

import (
	"context"
	"time"

	"journal-backend/internal/domain/prompt"
	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PromptRepository struct{}

func NewPromptRepository() *PromptRepository {
	return &PromptRepository{}
}

func (r *PromptRepository) Create(ctx context.Context, tx db.DBTX, p *prompt.ReflectionPrompt) (uuid.UUID, error) {
	const query = `
		INSERT INTO prompts (id, question, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query,
		p.ID(), p.Question(), p.ScheduledDate(), p.CreatedAt(), p.UpdatedAt(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create prompt", err)
	}
	return id, nil
}

func (r *PromptRepository) Reschedule(ctx context.Context, tx db.DBTX, promptID uuid.UUID, scheduledDate *time.Time) error {
	const query = `UPDATE prompts SET scheduled_date = $2, updated_at = now() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, promptID, scheduledDate)
	if err != nil {
		return infra.WrapRepoErr("failed to reschedule prompt", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("prompt not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}
