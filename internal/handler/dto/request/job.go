package request

import (
	"journal-backend/internal/pkg/patch"
)

type StartJobRequest struct {
	Kind      string `json:"kind" binding:"required"`
	BatchSize *int   `json:"batch_size" binding:"omitempty,min=1,max=1000"`
}

// BatchSizeOrZero leaves sizing to the command layer default when absent.
func (r *StartJobRequest) BatchSizeOrZero() int {
	return patch.Coalesce(r.BatchSize, 0)
}
