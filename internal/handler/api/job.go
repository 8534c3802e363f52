package api

import (
	"errors"
	"net/http"
	"strconv"

	"journal-backend/internal/domain/job"
	reqdto "journal-backend/internal/handler/dto/request"
	resdto "journal-backend/internal/handler/dto/response"
	"journal-backend/internal/handler/httperr"
	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type JobHandler struct {
	cmds  commands.JobCommands
	q     queries.JobQueueQueries
	stats queries.StatsQueries
}

func NewJobHandler(cmds commands.JobCommands, q queries.JobQueueQueries, stats queries.StatsQueries) *JobHandler {
	return &JobHandler{cmds: cmds, q: q, stats: stats}
}

// @Summary Start job chain
// @Description Enqueue the first page of a batch job chain
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.StartJobRequest true "Start job request"
// @Success 202 {object} resdto.StartJobResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /jobs [post]
func (h *JobHandler) Start(c *gin.Context) {
	var req reqdto.StartJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.StartChain(c.Request.Context(), req.Kind, req.BatchSizeOrZero())
	if err != nil {
		if errors.Is(err, job.ErrUnknownKind) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Unknown job kind", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to start job", nil)
		return
	}
	c.JSON(http.StatusAccepted, resdto.FromStartJobResult(result))
}

// @Summary Get queue entry
// @Description Inspect a single job queue entry
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Queue entry ID"
// @Success 200 {object} resdto.QueueEntryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	entry, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromQueueEntry(entry))
}

// @Summary List queue entries
// @Description List recent job queue entries with optional status/kind filters
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (queued/running/succeeded/failed)"
// @Param kind query string false "Job kind filter"
// @Param limit query int false "Max items (default 20)"
// @Success 200 {array} resdto.QueueEntryResponse
// @Failure 500 {object} map[string]string
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	var statusPtr, kindPtr *string
	if v := c.Query("status"); v != "" {
		statusPtr = &v
	}
	if v := c.Query("kind"); v != "" {
		kindPtr = &v
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = iv
		}
	}
	entries, err := h.q.ListRecent(c.Request.Context(), queries.JobQueueFilters{Status: statusPtr, Kind: kindPtr}, limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": resdto.FromQueueEntryList(entries)})
}

// @Summary Member stats
// @Description Latest member stats snapshot written by the stats job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.MemberStatsResponse
// @Failure 404 {object} map[string]string
// @Router /jobs/stats [get]
func (h *JobHandler) Stats(c *gin.Context) {
	view, err := h.stats.GetLatest(c.Request.Context())
	if err != nil {
		if errors.Is(err, queries.ErrStatsNotComputed) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Stats not computed yet", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMemberStats(view))
}
