package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/domain/prompt"
	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/pkg/errs"
	"journal-backend/internal/usecase/shared"
)

var ErrNoPromptToday = errs.New("no prompt scheduled for today")

// Pusher delivers a prompt notification to a single device token.
type Pusher interface {
	SendPrompt(ctx context.Context, fcmToken string, question string) error
}

// DailyPromptRunner pushes today's reflection prompt to every member with a
// registered device token. The sent_prompts upsert makes redelivery safe:
// a member who already received today's prompt is skipped, not re-pushed.
type DailyPromptRunner struct {
	engine *Engine[MemberScanRow]
	scans  MemberScanStore
	uow    shared.UnitOfWork
	pusher Pusher
	clock  clock.Clock

	mu           sync.Mutex
	cachedPrompt *shared.PromptSnapshot
	cachedDate   time.Time
}

func NewDailyPromptRunner(scans MemberScanStore, uow shared.UnitOfWork, pusher Pusher, clk clock.Clock) *DailyPromptRunner {
	r := &DailyPromptRunner{scans: scans, uow: uow, pusher: pusher, clock: clk}
	r.engine = NewEngine[MemberScanRow](r)
	return r
}

func (r *DailyPromptRunner) Kind() job.Kind {
	return job.KindDailyPrompt
}

func (r *DailyPromptRunner) Run(ctx context.Context, envelope job.Envelope) (job.PageResult, error) {
	// Resolve the prompt once per page, before fanning out.
	if _, err := r.todaysPrompt(ctx); err != nil {
		return job.PageResult{}, err
	}
	return r.engine.RunPage(ctx, r.Kind(), envelope.Cursor)
}

func (r *DailyPromptRunner) FetchPage(ctx context.Context, cursor job.Cursor) ([]MemberScanRow, error) {
	return r.scans.PushTargetPage(ctx, cursor)
}

func (r *DailyPromptRunner) ItemKey(row MemberScanRow) job.PageKey {
	return scanKey(row)
}

func (r *DailyPromptRunner) HandleItem(ctx context.Context, row MemberScanRow) (Outcome, error) {
	p, err := r.todaysPrompt(ctx)
	if err != nil {
		return OutcomeSkipped, err
	}

	var token *string
	firstSend := false
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		m, err := tx.Members().FindByID(ctx, tx.DB(), row.MemberID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		if m.Deleted() || m.FCMToken() == nil {
			return nil
		}

		now := r.clock.Now()
		inserted, err := tx.SentPrompts().Upsert(ctx, tx.DB(), &prompt.SentPrompt{
			MemberID:    m.ID(),
			PromptID:    p.ID,
			SentDate:    dateOf(now),
			Medium:      prompt.MediumPush,
			FirstSentAt: now,
			LastSentAt:  now,
		})
		if err != nil {
			return err
		}
		if inserted {
			token = m.FCMToken()
			firstSend = true
		}
		return nil
	})
	if err != nil {
		return OutcomeSkipped, err
	}
	if !firstSend {
		return OutcomeSkipped, nil
	}

	// Push outside the transaction; a push failure leaves the sent row in
	// place so the next redelivery does not double-send to everyone else.
	if err := r.pusher.SendPrompt(ctx, *token, p.Question); err != nil {
		slog.Warn("prompt push failed", "member_id", row.MemberID, "error", err.Error())
		return OutcomeProcessed, err
	}
	return OutcomeProcessed, nil
}

func (r *DailyPromptRunner) todaysPrompt(ctx context.Context) (*shared.PromptSnapshot, error) {
	today := dateOf(r.clock.Now())

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cachedPrompt != nil && r.cachedDate.Equal(today) {
		return r.cachedPrompt, nil
	}

	p, err := r.uow.CommandReads().PromptForDate(ctx, today)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrNoPromptToday
		}
		return nil, err
	}
	r.cachedPrompt = p
	r.cachedDate = today
	return p, nil
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
