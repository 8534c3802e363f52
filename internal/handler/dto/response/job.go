package response

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/queries"
)

type StartJobResponse struct {
	QueueEntryID uuid.UUID `json:"queue_entry_id"`
	Kind         string    `json:"kind"`
	BatchSize    int       `json:"batch_size"`
}

func FromStartJobResult(r *commands.StartJobResult) *StartJobResponse {
	return &StartJobResponse{
		QueueEntryID: r.QueueEntryID,
		Kind:         string(r.Kind),
		BatchSize:    r.BatchSize,
	}
}

type QueueEntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	RunAt     time.Time       `json:"run_at"`
	Attempts  int32           `json:"attempts"`
	Status    string          `json:"status"`
	LastError *string         `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func FromQueueEntry(v *queries.QueueEntryView) *QueueEntryResponse {
	return &QueueEntryResponse{
		ID:        v.ID,
		Kind:      v.Kind,
		Payload:   json.RawMessage(v.Payload),
		RunAt:     v.RunAt,
		Attempts:  v.Attempts,
		Status:    v.Status,
		LastError: v.LastError,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func FromQueueEntryList(items []*queries.QueueEntryView) []*QueueEntryResponse {
	res := make([]*QueueEntryResponse, len(items))
	for i, it := range items {
		res[i] = FromQueueEntry(it)
	}
	return res
}
