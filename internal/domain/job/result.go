package job

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemError records a single member's failure inside a page. Item failures
// are terminal for that pass; only the aggregate is reported.
type ItemError struct {
	MemberID uuid.UUID `json:"member_id"`
	Message  string    `json:"message"`
}

func (e ItemError) String() string {
	return fmt.Sprintf("%s: %s", e.MemberID, e.Message)
}

// PageResult aggregates the outcome of one page of a batch job.
// Succeeded+Skipped+Failed always equals the number of fetched items.
// NextCursor is nil when the chain terminates: nothing was fetched, or
// nothing in the page succeeded.
type PageResult struct {
	Kind        Kind        `json:"kind"`
	BatchNumber int         `json:"batch_number"`
	Succeeded   int         `json:"succeeded"`
	Skipped     int         `json:"skipped"`
	Failed      int         `json:"failed"`
	Errors      []ItemError `json:"errors,omitempty"`
	NextCursor  *Cursor     `json:"next_cursor,omitempty"`
}

func (r PageResult) Total() int {
	return r.Succeeded + r.Skipped + r.Failed
}

func (r PageResult) HasNext() bool {
	return r.NextCursor != nil
}
