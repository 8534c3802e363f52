//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"

	"journal-backend/internal/domain/operator"
	"journal-backend/internal/handler/api"
	"journal-backend/internal/pkg/errs"
	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/queries"
	"journal-backend/tests/common/builder"
	"journal-backend/tests/common/httptest"
	"journal-backend/tests/common/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type fakeAuthCommands struct {
	loginResult *commands.LoginResult
	loginErr    error
	refreshPair *commands.TokenPair
	refreshErr  error

	lastCredentials operator.Credentials
	lastRefresh     string
}

func (f *fakeAuthCommands) Login(_ context.Context, credentials operator.Credentials) (*commands.LoginResult, error) {
	f.lastCredentials = credentials
	return f.loginResult, f.loginErr
}

func (f *fakeAuthCommands) RefreshToken(_ context.Context, refreshToken string) (*commands.TokenPair, error) {
	f.lastRefresh = refreshToken
	return f.refreshPair, f.refreshErr
}

type fakeOperatorQueries struct {
	op    *queries.AuthorizedOperatorView
	opErr error
}

func (f *fakeOperatorQueries) GetCurrentOperator(_ context.Context, _ uuid.UUID) (*queries.AuthorizedOperatorView, error) {
	return f.op, f.opErr
}

type AuthHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	cmds   *fakeAuthCommands
	q      *fakeOperatorQueries
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.cmds = &fakeAuthCommands{}
	s.q = &fakeOperatorQueries{}
	handler := api.NewAuthHandler(s.cmds, s.q)

	s.router.POST("/auth/login", handler.Login)
	s.router.POST("/auth/refresh", handler.Refresh)
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) TestLogin() {
	url := "/auth/login"

	reqBody := builder.NewAuthBuilder().BuildDTO()
	opID := uuid.New()

	s.Run("success: passes domain credentials to the command layer", func() {
		s.cmds.loginResult = &commands.LoginResult{
			OperatorID: opID,
			TokenPair:  &commands.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		}
		s.q.op = &queries.AuthorizedOperatorView{ID: opID, Email: reqBody.Email, Role: "admin", IsActive: true}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("access", body["access_token"])
		s.Equal(reqBody.Email, s.cmds.lastCredentials.Email().Value())
	})

	s.Run("error: 400 Bad Request on malformed body", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("email", "not-an-email"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	statusCases := []struct {
		name       string
		loginErr   error
		expectCode int
	}{
		{name: "invalid credentials returns 401", loginErr: commands.ErrInvalidCredentials, expectCode: http.StatusUnauthorized},
		{name: "unknown operator returns 401", loginErr: commands.ErrOperatorNotFound, expectCode: http.StatusUnauthorized},
		{name: "inactive operator returns 403", loginErr: commands.ErrOperatorInactive, expectCode: http.StatusForbidden},
		{name: "unexpected failure returns 500", loginErr: errs.New("connection reset"), expectCode: http.StatusInternalServerError},
	}

	s.Run("error: command failures map to the right status", func() {
		for _, tc := range statusCases {
			s.Run(tc.name, func() {
				s.cmds.loginResult = nil
				s.cmds.loginErr = tc.loginErr

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
			})
		}
	})
}

func (s *AuthHandlerTestSuite) TestRefresh() {
	url := "/auth/refresh"

	s.Run("success: returns a new token pair", func() {
		s.cmds.refreshPair = &commands.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"refresh_token": "old-refresh"}, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("new-access", body["access_token"])
		s.Equal("old-refresh", s.cmds.lastRefresh)
	})

	s.Run("error: 401 Unauthorized on rejected token", func() {
		s.cmds.refreshPair = nil
		s.cmds.refreshErr = commands.ErrTokenValidation

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"refresh_token": "stale"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})
}
