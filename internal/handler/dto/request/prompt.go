package request

import (
	"strings"
	"time"

	"journal-backend/internal/usecase/commands"
)

type CreatePromptRequest struct {
	Question      string     `json:"question" binding:"required,max=1000"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

func (r *CreatePromptRequest) ToCommand() commands.CreatePromptRequest {
	return commands.CreatePromptRequest{
		Question:      strings.TrimSpace(r.Question),
		ScheduledDate: r.ScheduledDate,
	}
}

type ReschedulePromptRequest struct {
	ScheduledDate *time.Time `json:"scheduled_date"`
}
