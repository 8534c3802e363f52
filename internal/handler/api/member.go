package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	reqdto "journal-backend/internal/handler/dto/request"
	resdto "journal-backend/internal/handler/dto/response"
	"journal-backend/internal/handler/httperr"
	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MemberHandler struct {
	cmds commands.MemberCommands
	q    queries.MemberQueries
}

func NewMemberHandler(cmds commands.MemberCommands, q queries.MemberQueries) *MemberHandler {
	return &MemberHandler{cmds: cmds, q: q}
}

// @Summary Register member
// @Description Register a new member, optionally starting a trial
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RegisterMemberRequest true "Register member request"
// @Success 201 {object} resdto.MemberResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /members [post]
func (h *MemberHandler) Register(c *gin.Context) {
	var req reqdto.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.Register(c.Request.Context(), req.ToCommand())
	if err != nil {
		if errors.Is(err, commands.ErrDuplicateMember) {
			httperr.AbortWithError(c, http.StatusConflict, err, "Member already exists", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Register member failed", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), result.MemberID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load member", nil)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromMemberView(view))
}

// @Summary Get member
// @Description Get a member by ID
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} resdto.MemberResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMemberView(view))
}

// @Summary Update member
// @Description Update display name, tier, or push token
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param request body reqdto.UpdateMemberRequest true "Update member request"
// @Success 200 {object} resdto.MemberResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /members/{id} [patch]
func (h *MemberHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.UpdateMemberRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	if err = h.cmds.Update(c.Request.Context(), id, req.ToCommand()); err != nil {
		abortMemberWriteError(c, err, "Update failed")
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load member", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMemberView(view))
}

// @Summary Activate trial
// @Description Activate a member's trial into a paid tier
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param request body reqdto.ActivateTrialRequest true "Activate trial request"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /members/{id}/activate-trial [post]
func (h *MemberHandler) ActivateTrial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.ActivateTrialRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	if err = h.cmds.ActivateTrial(c.Request.Context(), id, req.TierOrDefault()); err != nil {
		abortMemberWriteError(c, err, "Activate trial failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Cancel member
// @Description Record a cancellation with an access-ends-at date
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param request body reqdto.CancelMemberRequest true "Cancel member request"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /members/{id}/cancel [post]
func (h *MemberHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.CancelMemberRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	if err = h.cmds.Cancel(c.Request.Context(), id, req.ToCommand()); err != nil {
		abortMemberWriteError(c, err, "Cancel failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete member
// @Description Soft-delete a member (admin only)
// @Tags members
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	if err := h.cmds.SoftDelete(c.Request.Context(), id); err != nil {
		abortMemberWriteError(c, err, "Delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List members
// @Description List members with optional tier filter and keyset pagination
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param tier query string false "Tier filter (basic/plus/premium)"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {array} resdto.MemberListItemResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	var tierPtr *string
	if v := c.Query("tier"); v != "" {
		tierPtr = &v
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}
	items, next, err := h.q.List(c.Request.Context(), queries.MemberFilters{Tier: tierPtr}, cursor, limit)
	if err != nil {
		if errors.Is(err, queries.ErrInvalidCursor) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
			return
		}
		slog.Error("list members failed", "error", err)
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	resp := gin.H{"members": resdto.FromMemberList(items)}
	if next != nil {
		resp["next_cursor"] = next.After
	}
	c.JSON(http.StatusOK, resp)
}

func abortMemberWriteError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, commands.ErrMemberNotFoundWrite):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Member not found", nil)
	case errors.Is(err, commands.ErrMemberDeleted):
		httperr.AbortWithError(c, http.StatusGone, err, "Member has been deleted", nil)
	default:
		httperr.AbortWithError(c, http.StatusBadRequest, err, msg, nil)
	}
}
