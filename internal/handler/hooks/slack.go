package hooks

import (
	"fmt"
	"net/http"
	"strings"

	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// SlackHandler serves slash commands posted by the operator workspace.
// Signature verification happens in middleware before the handler runs.
type SlackHandler struct {
	jobs  commands.JobCommands
	stats queries.StatsQueries
}

func NewSlackHandler(jobs commands.JobCommands, stats queries.StatsQueries) *SlackHandler {
	return &SlackHandler{jobs: jobs, stats: stats}
}

type slackCommandForm struct {
	Command  string `form:"command"`
	Text     string `form:"text"`
	UserName string `form:"user_name"`
}

// @Summary Slack slash command
// @Description Handle /journal slash commands from the operator workspace
// @Tags hooks
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /hooks/slack [post]
func (h *SlackHandler) Command(c *gin.Context) {
	var form slackCommandForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	fields := strings.Fields(form.Text)
	if len(fields) == 0 {
		respondEphemeral(c, helpText)
		return
	}

	switch fields[0] {
	case "stats":
		h.respondStats(c)
	case "run":
		if len(fields) < 2 {
			respondEphemeral(c, "Usage: run <job kind>")
			return
		}
		h.respondRun(c, fields[1])
	default:
		respondEphemeral(c, helpText)
	}
}

const helpText = "Commands: `stats` show latest member stats, `run <kind>` start a job chain"

func (h *SlackHandler) respondStats(c *gin.Context) {
	view, err := h.stats.GetLatest(c.Request.Context())
	if err != nil {
		respondEphemeral(c, "No stats snapshot available yet")
		return
	}
	respondEphemeral(c, fmt.Sprintf(
		"Members: %d total, %d active trials, %d expired trials, %d basic, %d plus, %d premium, %d canceled (computed %s)",
		view.TotalMembers, view.ActiveTrials, view.ExpiredTrials,
		view.BasicMembers, view.PlusMembers, view.PremiumMembers,
		view.CanceledMembers, view.ComputedAt.Format("2006-01-02 15:04 MST"),
	))
}

func (h *SlackHandler) respondRun(c *gin.Context, kind string) {
	result, err := h.jobs.StartChain(c.Request.Context(), kind, 0)
	if err != nil {
		respondEphemeral(c, fmt.Sprintf("Failed to start %q: %s", kind, err.Error()))
		return
	}
	respondEphemeral(c, fmt.Sprintf("Started %s (queue entry %s, batch size %d)",
		result.Kind, result.QueueEntryID, result.BatchSize))
}

func respondEphemeral(c *gin.Context, text string) {
	c.JSON(http.StatusOK, gin.H{
		"response_type": "ephemeral",
		"text":          text,
	})
}
