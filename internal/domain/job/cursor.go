package job

import (
	"time"

	"github.com/google/uuid"
)

// PageKey is the keyset position of a paged member scan. Scans order by a
// monotonic timestamp column with the member ID as tiebreaker, so the pair
// identifies an exact resume point.
type PageKey struct {
	EndsAt   time.Time `json:"ends_at"`
	MemberID uuid.UUID `json:"member_id"`
}

// Cursor is the continuation token threaded between successive pages of a
// batch job. It only ever lives inside a queued message; it is never
// persisted on its own. A nil LastKey means "start from the beginning".
type Cursor struct {
	BatchNumber int      `json:"batch_number"`
	BatchSize   int      `json:"batch_size"`
	LastKey     *PageKey `json:"last_key,omitempty"`
}

// FirstCursor opens a new chain at page zero.
func FirstCursor(batchSize int) Cursor {
	return Cursor{BatchNumber: 0, BatchSize: batchSize}
}

// Next derives the cursor for the following page from the key of the last
// successfully handled item of this page.
func (c Cursor) Next(lastKey PageKey) Cursor {
	return Cursor{
		BatchNumber: c.BatchNumber + 1,
		BatchSize:   c.BatchSize,
		LastKey:     &lastKey,
	}
}

func (c Cursor) Validate() error {
	if c.BatchNumber < 0 {
		return ErrInvalidCursor
	}
	if c.BatchSize <= 0 {
		return ErrInvalidCursor
	}
	return nil
}
