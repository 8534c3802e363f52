package commands

import (
	"context"
	"time"

	"journal-backend/internal/domain/prompt"
	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/pkg/errs"
	"journal-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrDuplicatePromptDate = errs.New("a prompt is already scheduled for this date")

type CreatePromptRequest struct {
	Question      string
	ScheduledDate *time.Time
}

type CreatePromptResult struct {
	PromptID uuid.UUID
}

type PromptCommands interface {
	Create(ctx context.Context, req CreatePromptRequest) (*CreatePromptResult, error)
	Reschedule(ctx context.Context, promptID uuid.UUID, scheduledDate *time.Time) error
}

type promptCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewPromptCommands(uow shared.UnitOfWork, clk clock.Clock) PromptCommands {
	return &promptCommandsImpl{uow: uow, clock: clk}
}

func (uc *promptCommandsImpl) Create(ctx context.Context, req CreatePromptRequest) (*CreatePromptResult, error) {
	p, err := prompt.NewReflectionPrompt(req.Question, req.ScheduledDate, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, derr := tx.Prompts().Create(ctx, tx.DB(), p)
		if derr != nil {
			if infra.IsKind(derr, infra.KindDuplicateKey) {
				return ErrDuplicatePromptDate
			}
			return derr
		}
		createdID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreatePromptResult{PromptID: createdID}, nil
}

func (uc *promptCommandsImpl) Reschedule(ctx context.Context, promptID uuid.UUID, scheduledDate *time.Time) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		err := tx.Prompts().Reschedule(ctx, tx.DB(), promptID, scheduledDate)
		if err != nil && infra.IsKind(err, infra.KindDuplicateKey) {
			return ErrDuplicatePromptDate
		}
		return err
	})
}
