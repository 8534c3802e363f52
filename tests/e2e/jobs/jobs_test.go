//go:build e2e

package jobs_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"journal-backend/internal/domain/operator"
	"journal-backend/internal/handler/dto/request"
	"journal-backend/tests/common/authtest"
	"journal-backend/tests/common/dbtest"
	helper "journal-backend/tests/common/httptest"
	"journal-backend/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	jobsURL     = "/api/jobs"
	jobStatsURL = "/api/jobs/stats"

	// ワーカーのポーリング間隔(100ms)に対して十分な待ち時間
	jobWaitTimeout  = 15 * time.Second
	jobWaitInterval = 200 * time.Millisecond
)

type startJobResponse struct {
	QueueEntryID uuid.UUID `json:"queue_entry_id"`
	Kind         string    `json:"kind"`
	BatchSize    int       `json:"batch_size"`
}

type queueEntryResponse struct {
	ID     uuid.UUID `json:"id"`
	Kind   string    `json:"kind"`
	Status string    `json:"status"`
}

type queueListResponse struct {
	Entries []queueEntryResponse `json:"entries"`
}

type memberStatsResponse struct {
	TotalMembers  int64 `json:"total_members"`
	ActiveTrials  int64 `json:"active_trials"`
	ExpiredTrials int64 `json:"expired_trials"`
	BasicMembers  int64 `json:"basic_members"`
	PlusMembers   int64 `json:"plus_members"`
}

type jobsSuite struct {
	e2e.SharedSuite
	adminToken    string
	operatorToken string
}

func TestJobsSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(jobsSuite))
}

func (s *jobsSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	s.adminToken = authtest.CreateAndLogin(s.T(), s.DB, s.Router, "jobs-admin@example.com", string(operator.RoleAdmin))
	s.operatorToken = authtest.CreateAndLogin(s.T(), s.DB, s.Router, "jobs-op@example.com", string(operator.RoleOperator))
}

func (s *jobsSuite) startChain(kind string, batchSize int) startJobResponse {
	t := s.T()
	reqBody := request.StartJobRequest{Kind: kind}
	if batchSize > 0 {
		reqBody.BatchSize = &batchSize
	}

	w := helper.PerformRequest(t, s.Router, http.MethodPost, jobsURL, reqBody, s.adminToken)
	require.Equal(t, http.StatusAccepted, w.Code, "ジョブ開始に失敗: %s", w.Body.String())

	var res startJobResponse
	require.NoError(t, helper.DecodeResponseBody(t, w.Body, &res))
	require.Equal(t, kind, res.Kind)
	return res
}

// 指定kindのチェーンが完了する(queued/runningが残らない)まで待つ
func (s *jobsSuite) waitForChain(kind string) {
	t := s.T()
	require.Eventually(t, func() bool {
		var pending int
		err := s.DB.QueryRow(t.Context(),
			"SELECT count(*) FROM job_queue WHERE kind = $1 AND status IN ('queued', 'running')", kind).Scan(&pending)
		return err == nil && pending == 0
	}, jobWaitTimeout, jobWaitInterval, "チェーンが完了しなかった")
}

func (s *jobsSuite) TestTrialExpireChain() {
	s.Run("バッチサイズを超える対象はチェーンで処理されること", func() {
		t := s.T()

		// 期限切れトライアルの会員を3名作成 (batch_size=2 なので2ページに分かれる)
		expired := time.Now().Add(-48 * time.Hour)
		for i := range 3 {
			dbtest.CreateTestMember(t, s.DB, fmt.Sprintf("expired%d@example.com", i), "plus", &expired)
		}
		// 期限内の会員は対象外
		active := time.Now().Add(7 * 24 * time.Hour)
		keepID := dbtest.CreateTestMember(t, s.DB, "still-on-trial@example.com", "plus", &active)

		s.startChain("trial.expire", 2)
		s.waitForChain("trial.expire")

		// 3名全員がbasicへ降格していること
		var downgraded int
		err := s.DB.QueryRow(t.Context(),
			"SELECT count(*) FROM members WHERE tier = 'basic' AND email LIKE 'expired%'").Scan(&downgraded)
		require.NoError(t, err)
		require.Equal(t, 3, downgraded, "期限切れトライアルが全員降格していること")

		// 期限内の会員は降格しないこと
		var keepTier string
		err = s.DB.QueryRow(t.Context(), "SELECT tier FROM members WHERE id = $1", keepID).Scan(&keepTier)
		require.NoError(t, err)
		require.Equal(t, "plus", keepTier)

		// 1ページ目が満杯だったので継続エントリが積まれ、計2エントリになる
		var entries int
		err = s.DB.QueryRow(t.Context(),
			"SELECT count(*) FROM job_queue WHERE kind = 'trial.expire' AND status = 'succeeded'").Scan(&entries)
		require.NoError(t, err)
		require.Equal(t, 2, entries, "チェーンが2ページで完了すること")
	})

	s.Run("対象なしでも1エントリで正常完了すること", func() {
		t := s.T()

		s.startChain("trial.expire", 10)
		s.waitForChain("trial.expire")

		var entries int
		err := s.DB.QueryRow(t.Context(),
			"SELECT count(*) FROM job_queue WHERE kind = 'trial.expire' AND status = 'succeeded'").Scan(&entries)
		require.NoError(t, err)
		require.Equal(t, 1, entries)
	})
}

func (s *jobsSuite) TestCancelSweepChain() {
	s.Run("アクセス期限切れの解約会員が降格すること", func() {
		t := s.T()

		id := dbtest.CreateTestMember(t, s.DB, "lapsed@example.com", "premium", nil)
		_, err := s.DB.Exec(t.Context(),
			"UPDATE members SET cancel_requested_at = now() - interval '40 days', access_ends_at = now() - interval '1 day' WHERE id = $1", id)
		require.NoError(t, err)

		s.startChain("subscription.cancel", 10)
		s.waitForChain("subscription.cancel")

		var tier string
		err = s.DB.QueryRow(t.Context(), "SELECT tier FROM members WHERE id = $1", id).Scan(&tier)
		require.NoError(t, err)
		require.Equal(t, "basic", tier, "アクセス期限後は降格すること")
	})
}

func (s *jobsSuite) TestMemberStats() {
	s.Run("統計スナップショットが計算されAPIで取得できること", func() {
		t := s.T()

		expired := time.Now().Add(-48 * time.Hour)
		active := time.Now().Add(7 * 24 * time.Hour)
		dbtest.CreateTestMember(t, s.DB, "stat-basic@example.com", "basic", nil)
		dbtest.CreateTestMember(t, s.DB, "stat-active@example.com", "plus", &active)
		dbtest.CreateTestMember(t, s.DB, "stat-expired@example.com", "plus", &expired)

		s.startChain("member.stats", 0)
		s.waitForChain("member.stats")

		w := helper.PerformRequest(t, s.Router, http.MethodGet, jobStatsURL, nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var res memberStatsResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &res))
		require.Equal(t, int64(3), res.TotalMembers)
		require.Equal(t, int64(1), res.ActiveTrials)
		require.Equal(t, int64(1), res.ExpiredTrials)
		require.Equal(t, int64(1), res.BasicMembers)
		require.Equal(t, int64(2), res.PlusMembers)
	})

	s.Run("スナップショットが無い場合は404になること", func() {
		t := s.T()

		w := helper.PerformRequest(t, s.Router, http.MethodGet, jobStatsURL, nil, s.adminToken)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func (s *jobsSuite) TestStartValidation() {
	s.Run("不明なジョブ種別は400になること", func() {
		t := s.T()

		reqBody := request.StartJobRequest{Kind: "no.such.kind"}
		w := helper.PerformRequest(t, s.Router, http.MethodPost, jobsURL, reqBody, s.adminToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	s.Run("管理者以外は403になること", func() {
		t := s.T()

		reqBody := request.StartJobRequest{Kind: "trial.expire"}
		w := helper.PerformRequest(t, s.Router, http.MethodPost, jobsURL, reqBody, s.operatorToken)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func (s *jobsSuite) TestQueueInspection() {
	s.Run("キューエントリを一覧・個別参照できること", func() {
		t := s.T()

		started := s.startChain("trial.expire", 10)
		s.waitForChain("trial.expire")

		w := helper.PerformRequest(t, s.Router, http.MethodGet, jobsURL+"?kind=trial.expire", nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var list queueListResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &list))
		require.NotEmpty(t, list.Entries)

		w = helper.PerformRequest(t, s.Router, http.MethodGet, jobsURL+"/"+started.QueueEntryID.String(), nil, s.adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var entry queueEntryResponse
		require.NoError(t, helper.DecodeResponseBody(t, w.Body, &entry))
		require.Equal(t, started.QueueEntryID, entry.ID)
		require.Equal(t, "succeeded", entry.Status)
	})
}
