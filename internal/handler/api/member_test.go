//go:build unit

package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"journal-backend/internal/domain/operator"
	"journal-backend/internal/handler/api"
	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/queries"
	"journal-backend/tests/common/builder"
	"journal-backend/tests/common/httptest"
	"journal-backend/tests/common/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type fakeMemberCommands struct {
	registerResult *commands.RegisterMemberResult
	registerErr    error
	updateErr      error
	activateErr    error
	cancelErr      error
	deleteErr      error

	lastRegister commands.RegisterMemberRequest
	lastUpdate   commands.UpdateMemberRequest
	lastTier     string
}

func (f *fakeMemberCommands) Register(_ context.Context, req commands.RegisterMemberRequest) (*commands.RegisterMemberResult, error) {
	f.lastRegister = req
	return f.registerResult, f.registerErr
}

func (f *fakeMemberCommands) Update(_ context.Context, _ uuid.UUID, req commands.UpdateMemberRequest) error {
	f.lastUpdate = req
	return f.updateErr
}

func (f *fakeMemberCommands) ActivateTrial(_ context.Context, _ uuid.UUID, tier string) error {
	f.lastTier = tier
	return f.activateErr
}

func (f *fakeMemberCommands) Cancel(_ context.Context, _ uuid.UUID, _ commands.CancelMemberRequest) error {
	return f.cancelErr
}

func (f *fakeMemberCommands) SoftDelete(_ context.Context, _ uuid.UUID) error {
	return f.deleteErr
}

func (f *fakeMemberCommands) RecordReply(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakeMemberQueries struct {
	view    *queries.MemberView
	viewErr error

	listItems []*queries.MemberListItem
	listNext  *queries.Cursor
	listErr   error
}

func (f *fakeMemberQueries) GetByID(_ context.Context, _ uuid.UUID) (*queries.MemberView, error) {
	return f.view, f.viewErr
}

func (f *fakeMemberQueries) GetByEmail(_ context.Context, _ string) (*queries.MemberView, error) {
	return f.view, f.viewErr
}

func (f *fakeMemberQueries) List(_ context.Context, _ queries.MemberFilters, _ *queries.Cursor, _ int) ([]*queries.MemberListItem, *queries.Cursor, error) {
	return f.listItems, f.listNext, f.listErr
}

type MemberHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	cmds   *fakeMemberCommands
	q      *fakeMemberQueries
}

func (s *MemberHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.cmds = &fakeMemberCommands{}
	s.q = &fakeMemberQueries{}
	handler := api.NewMemberHandler(s.cmds, s.q)

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", uuid.New())
		c.Set("user_role", operator.RoleOperator)
		c.Next()
	}

	s.router.POST("/members", authMiddleware, handler.Register)
	s.router.GET("/members", authMiddleware, handler.List)
	s.router.GET("/members/:id", authMiddleware, handler.Get)
	s.router.PATCH("/members/:id", authMiddleware, handler.Update)
	s.router.POST("/members/:id/activate-trial", authMiddleware, handler.ActivateTrial)
	s.router.POST("/members/:id/cancel", authMiddleware, handler.Cancel)
	s.router.DELETE("/members/:id", authMiddleware, handler.Delete)
}

func TestMemberHandlerSuite(t *testing.T) {
	suite.Run(t, new(MemberHandlerTestSuite))
}

type testCaseMember struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

func (s *MemberHandlerTestSuite) TestRegister() {
	url := "/members"

	reqBody := builder.NewMemberBuilder().BuildDTO()
	returnView := builder.NewMemberBuilder().BuildView()

	validation := []testCaseMember{
		{name: "missing field: email (required)", mutate: testutil.Field("email", nil), expectCode: http.StatusBadRequest},
		{name: "invalid email format", mutate: testutil.Field("email", "not-an-email"), expectCode: http.StatusBadRequest},
		{name: "missing field: display_name (required)", mutate: testutil.Field("display_name", nil), expectCode: http.StatusBadRequest},
		{name: "display_name length invalid (101 chars)", mutate: testutil.Field("display_name", strings.Repeat("a", 101)), expectCode: http.StatusBadRequest},
		{name: "trial_days boundary OK (0)", mutate: testutil.Field("trial_days", 0), expectCode: http.StatusCreated},
		{name: "trial_days boundary OK (365)", mutate: testutil.Field("trial_days", 365), expectCode: http.StatusCreated},
		{name: "trial_days boundary invalid (366)", mutate: testutil.Field("trial_days", 366), expectCode: http.StatusBadRequest},
	}

	s.Run("success: returns 201 Created for valid request", func() {
		s.cmds.registerResult = &commands.RegisterMemberResult{MemberID: returnView.ID}
		s.q.view = returnView

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(returnView.Email, body["email"])
		s.Equal(returnView.Tier, body["tier"])
	})

	s.Run("success: omitted trial_days falls back to the default", func() {
		s.cmds.registerResult = &commands.RegisterMemberResult{MemberID: returnView.ID}
		s.q.view = returnView

		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("trial_days", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
		s.Equal(14, s.cmds.lastRegister.TrialDays)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		s.cmds.registerResult = &commands.RegisterMemberResult{MemberID: returnView.ID}
		s.q.view = returnView

		for _, tc := range validation {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				if tc.expectCode == http.StatusCreated {
					httptest.AssertSuccessResponse(s.T(), rec, tc.expectCode, nil)
				} else {
					httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
				}
			})
		}
	})

	s.Run("error: 409 Conflict on duplicate email", func() {
		s.cmds.registerResult = nil
		s.cmds.registerErr = commands.ErrDuplicateMember

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Member already exists")
		s.cmds.registerErr = nil
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

func (s *MemberHandlerTestSuite) TestGet() {
	returnView := builder.NewMemberBuilder().BuildView()

	s.Run("success: returns 200 OK with the member", func() {
		s.q.view = returnView
		s.q.viewErr = nil

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/members/"+returnView.ID.String(), nil, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(returnView.ID.String(), body["id"])
	})

	s.Run("error: 404 Not Found for unknown member", func() {
		s.q.view = nil
		s.q.viewErr = queries.ErrMemberNotFound

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/members/"+uuid.NewString(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})

	s.Run("error: 400 Bad Request for malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/members/not-a-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *MemberHandlerTestSuite) TestUpdate() {
	returnView := builder.NewMemberBuilder().BuildView()
	url := "/members/" + returnView.ID.String()

	s.Run("success: returns 200 OK with the refreshed view", func() {
		s.q.view = returnView
		name := "Renamed"
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"display_name": name}, "bearer-token")

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.Require().NotNil(s.cmds.lastUpdate.DisplayName)
		s.Equal(name, *s.cmds.lastUpdate.DisplayName)
	})

	s.Run("error: 400 Bad Request on invalid tier", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"tier": "platinum"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{name: "member not found", commandsError: commands.ErrMemberNotFoundWrite, expectedStatus: http.StatusNotFound},
			{name: "member deleted", commandsError: commands.ErrMemberDeleted, expectedStatus: http.StatusGone},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.cmds.updateErr = tc.commandsError
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"tier": "plus"}, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
				s.cmds.updateErr = nil
			})
		}
	})
}

func (s *MemberHandlerTestSuite) TestActivateTrial() {
	id := uuid.New()
	url := "/members/" + id.String() + "/activate-trial"

	s.Run("success: returns 204 and defaults the tier to plus", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal("plus", s.cmds.lastTier)
	})

	s.Run("success: explicit tier is passed through", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"tier": "premium"}, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal("premium", s.cmds.lastTier)
	})

	s.Run("error: 400 Bad Request on invalid tier", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"tier": "basic"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *MemberHandlerTestSuite) TestDelete() {
	id := uuid.New()

	s.Run("success: returns 204 No Content", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/members/"+id.String(), nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 410 Gone when already deleted", func() {
		s.cmds.deleteErr = commands.ErrMemberDeleted
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/members/"+id.String(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusGone, "")
		s.cmds.deleteErr = nil
	})
}

func (s *MemberHandlerTestSuite) TestList() {
	s.Run("success: returns members and next cursor", func() {
		item := &queries.MemberListItem{ID: uuid.New(), Email: "a@example.com", Tier: "basic"}
		s.q.listItems = []*queries.MemberListItem{item}
		s.q.listNext = &queries.Cursor{After: "opaque-cursor"}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/members?limit=1", nil, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("opaque-cursor", body["next_cursor"])
		s.Len(body["members"], 1)
	})

	s.Run("success: omits next_cursor on the last page", func() {
		s.q.listItems = nil
		s.q.listNext = nil

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/members", nil, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		_, hasCursor := body["next_cursor"]
		s.False(hasCursor)
	})

	s.Run("error: 400 Bad Request on invalid cursor", func() {
		s.q.listErr = queries.ErrInvalidCursor
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/members?after=bad", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
		s.q.listErr = nil
	})
}
