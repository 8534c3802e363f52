package hooks

import (
	"errors"
	"net/http"
	"time"

	"journal-backend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CMSHandler ingests reflection prompts published from the content CMS.
type CMSHandler struct {
	prompts commands.PromptCommands
}

func NewCMSHandler(prompts commands.PromptCommands) *CMSHandler {
	return &CMSHandler{prompts: prompts}
}

type cmsWebhookPayload struct {
	Event string `json:"event" binding:"required"`
	Entry struct {
		ID            *uuid.UUID `json:"id,omitempty"`
		Question      string     `json:"question"`
		ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	} `json:"entry" binding:"required"`
}

// @Summary CMS content webhook
// @Description Receive prompt publish/reschedule events from the CMS
// @Tags hooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /hooks/cms [post]
func (h *CMSHandler) Event(c *gin.Context) {
	var payload cmsWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	switch payload.Event {
	case "content.published":
		result, err := h.prompts.Create(c.Request.Context(), commands.CreatePromptRequest{
			Question:      payload.Entry.Question,
			ScheduledDate: payload.Entry.ScheduledDate,
		})
		if err != nil {
			if errors.Is(err, commands.ErrDuplicatePromptDate) {
				c.JSON(http.StatusConflict, gin.H{"error": "A prompt is already scheduled for this date"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "prompt_id": result.PromptID})
	case "content.rescheduled":
		if payload.Entry.ID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing entry id"})
			return
		}
		if err := h.prompts.Reschedule(c.Request.Context(), *payload.Entry.ID, payload.Entry.ScheduledDate); err != nil {
			if errors.Is(err, commands.ErrDuplicatePromptDate) {
				c.JSON(http.StatusConflict, gin.H{"error": "A prompt is already scheduled for this date"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	default:
		// Unknown events acknowledge cleanly so the CMS does not retry.
		c.JSON(http.StatusOK, gin.H{"success": true, "ignored": payload.Event})
	}
}
