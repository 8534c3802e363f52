package jobs

import (
	"context"
	"fmt"
	"sync"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/pkg/errs"
)

var ErrPageFetch = errs.New("page fetch failed")

// Outcome classifies a single item's handling within a page.
type Outcome int

const (
	OutcomeProcessed Outcome = iota
	OutcomeSkipped
)

// Pager supplies the per-kind pieces of a chained batch job: how to fetch
// one page after a cursor, how to handle one item, and which key an item
// contributes to the next cursor.
type Pager[T any] interface {
	FetchPage(ctx context.Context, cursor job.Cursor) ([]T, error)
	HandleItem(ctx context.Context, item T) (Outcome, error)
	ItemKey(item T) job.PageKey
}

// Engine executes exactly one page of a job chain. Continuation across pages
// happens through the queue: the caller enqueues a new envelope whenever the
// returned result carries a next cursor.
type Engine[T any] struct {
	pager Pager[T]
}

func NewEngine[T any](pager Pager[T]) *Engine[T] {
	return &Engine[T]{pager: pager}
}

type itemOutcome struct {
	outcome Outcome
	err     error
}

// RunPage fetches one page and fans the items out concurrently. Item errors
// are isolated and aggregated; a fetch error fails the whole page so queue
// redelivery can retry it.
func (e *Engine[T]) RunPage(ctx context.Context, kind job.Kind, cursor job.Cursor) (job.PageResult, error) {
	run := job.NewRun()
	if err := run.Transition(job.StatePageInFlight); err != nil {
		return job.PageResult{}, err
	}

	items, err := e.pager.FetchPage(ctx, cursor)
	if err != nil {
		_ = run.Transition(job.StateFailed)
		return job.PageResult{}, errs.Join(ErrPageFetch, err)
	}

	result := job.PageResult{Kind: kind, BatchNumber: cursor.BatchNumber}
	if len(items) == 0 {
		_ = run.Transition(job.StateCompleted)
		return result, nil
	}

	outcomes := make([]itemOutcome, len(items))
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = e.handleOne(ctx, items[i])
		}(i)
	}
	wg.Wait()

	lastHandled := -1
	for i, oc := range outcomes {
		switch {
		case oc.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, job.ItemError{
				MemberID: e.pager.ItemKey(items[i]).MemberID,
				Message:  oc.err.Error(),
			})
		case oc.outcome == OutcomeSkipped:
			result.Skipped++
			lastHandled = i
		default:
			result.Succeeded++
			lastHandled = i
		}
	}

	// The chain continues only off a full page with at least one handled
	// item; the next cursor resumes after the last handled key, never after
	// a failed one.
	if lastHandled >= 0 && len(items) == cursor.BatchSize {
		next := cursor.Next(e.pager.ItemKey(items[lastHandled]))
		result.NextCursor = &next
	}

	_ = run.Transition(job.StateCompleted)
	return result, nil
}

func (e *Engine[T]) handleOne(ctx context.Context, item T) (oc itemOutcome) {
	defer func() {
		if r := recover(); r != nil {
			oc = itemOutcome{err: fmt.Errorf("panic while handling item: %v", r)}
		}
	}()
	outcome, err := e.pager.HandleItem(ctx, item)
	return itemOutcome{outcome: outcome, err: err}
}
