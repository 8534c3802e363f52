package hooks

import (
	"errors"
	"net/http"
	"time"

	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// RevenueHandler ingests subscription-platform events keyed by member email.
// The shared-key check happens in middleware before the handler runs.
type RevenueHandler struct {
	members commands.MemberCommands
	q       queries.MemberQueries
}

func NewRevenueHandler(members commands.MemberCommands, q queries.MemberQueries) *RevenueHandler {
	return &RevenueHandler{members: members, q: q}
}

type revenueEventPayload struct {
	Type         string     `json:"type" binding:"required"`
	Email        string     `json:"email" binding:"required,email"`
	Tier         *string    `json:"tier,omitempty"`
	AccessEndsAt *time.Time `json:"access_ends_at,omitempty"`
	Reason       *string    `json:"reason,omitempty"`
}

// @Summary Subscription platform webhook
// @Description Apply tier changes and cancellations reported by the subscription platform
// @Tags hooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /hooks/revenue [post]
func (h *RevenueHandler) Event(c *gin.Context) {
	var payload revenueEventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	view, err := h.q.GetByEmail(c.Request.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, queries.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	switch payload.Type {
	case "tier.changed":
		if payload.Tier == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tier"})
			return
		}
		err = h.members.Update(c.Request.Context(), view.ID, commands.UpdateMemberRequest{Tier: payload.Tier})
	case "subscription.cancelled":
		if payload.AccessEndsAt == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing access_ends_at"})
			return
		}
		err = h.members.Cancel(c.Request.Context(), view.ID, commands.CancelMemberRequest{
			AccessEndsAt: *payload.AccessEndsAt,
			Reason:       payload.Reason,
		})
	default:
		// Unknown events acknowledge cleanly so the platform does not retry.
		c.JSON(http.StatusOK, gin.H{"success": true, "ignored": payload.Type})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
