//go:build e2e

package jobs_test

import (
	"context"
	"testing"
	"time"

	"journal-backend/internal/infra/repository"
	"journal-backend/tests/e2e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// キューのSQLを直接検証するスイート。稼働中のワーカーと競合しないよう、
// 各テストは単一トランザクション内で行を作成し、最後にロールバックする。
type queueRepoSuite struct {
	e2e.SharedSuite
	repo *repository.JobQueueRepository
}

func (s *queueRepoSuite) SetupSuite() {
	s.SetupSharedSuite(s.T())
	s.repo = repository.NewJobQueueRepository(int32(s.Config.Jobs.MaxAttempts))
}

func TestQueueRepositorySuite(t *testing.T) {
	suite.Run(t, new(queueRepoSuite))
}

func (s *queueRepoSuite) inTx(fn func(tx pgx.Tx)) {
	ctx := context.Background()
	tx, err := s.DB.Begin(ctx)
	require.NoError(s.T(), err)
	defer func() { _ = tx.Rollback(ctx) }()
	fn(tx)
}

func (s *queueRepoSuite) insertEntry(tx pgx.Tx, id uuid.UUID, runAt time.Time, attempts int32) {
	_, err := tx.Exec(context.Background(),
		`INSERT INTO job_queue (id, kind, payload, run_at, attempts, status)
		 VALUES ($1, 'trial.expire', '{}', $2, $3, 'queued')`,
		id, runAt, attempts)
	require.NoError(s.T(), err)
}

func (s *queueRepoSuite) TestClaimNext() {
	s.Run("同じrun_atのエントリはID順にクレームされる", func() {
		s.inTx(func(tx pgx.Tx) {
			ctx := context.Background()
			runAt := time.Now().Add(-time.Minute)

			ids := []uuid.UUID{
				uuid.MustParse("00000000-0000-0000-0000-000000000001"),
				uuid.MustParse("00000000-0000-0000-0000-000000000002"),
				uuid.MustParse("00000000-0000-0000-0000-000000000003"),
			}
			// ID順が挿入順と一致しないことを確かめるため逆順に挿入する
			for i := len(ids) - 1; i >= 0; i-- {
				s.insertEntry(tx, ids[i], runAt, 0)
			}

			for _, want := range ids {
				claimed, err := s.repo.ClaimNext(ctx, tx, time.Now())
				s.Require().NoError(err)
				s.Require().NotNil(claimed)
				s.Equal(want, claimed.ID)
			}
		})
	})

	s.Run("run_atが未来のエントリはクレームされない", func() {
		s.inTx(func(tx pgx.Tx) {
			s.insertEntry(tx, uuid.New(), time.Now().Add(time.Hour), 0)

			claimed, err := s.repo.ClaimNext(context.Background(), tx, time.Now())
			s.Require().NoError(err)
			s.Nil(claimed)
		})
	})
}

func (s *queueRepoSuite) TestMarkFailed() {
	s.Run("再キュー時はrun_atがretryAtまで繰り延べられる", func() {
		s.inTx(func(tx pgx.Tx) {
			ctx := context.Background()
			id := uuid.New()
			s.insertEntry(tx, id, time.Now().Add(-time.Minute), 1)

			retryAt := time.Now().Add(30 * time.Second)
			err := s.repo.MarkFailed(ctx, tx, id, "page fetch failed", false, retryAt)
			s.Require().NoError(err)

			var status string
			var runAt time.Time
			err = tx.QueryRow(ctx, `SELECT status, run_at FROM job_queue WHERE id = $1`, id).Scan(&status, &runAt)
			s.Require().NoError(err)
			s.Equal("queued", status)
			s.WithinDuration(retryAt, runAt, time.Second)
		})
	})

	s.Run("試行回数を使い切ったエントリは失敗で確定する", func() {
		s.inTx(func(tx pgx.Tx) {
			ctx := context.Background()
			id := uuid.New()
			s.insertEntry(tx, id, time.Now().Add(-time.Minute), int32(s.Config.Jobs.MaxAttempts))

			err := s.repo.MarkFailed(ctx, tx, id, "page fetch failed", false, time.Now().Add(30*time.Second))
			s.Require().NoError(err)

			var status string
			err = tx.QueryRow(ctx, `SELECT status FROM job_queue WHERE id = $1`, id).Scan(&status)
			s.Require().NoError(err)
			s.Equal("failed", status)
		})
	})

	s.Run("terminal指定は残り試行に関わらず失敗で確定する", func() {
		s.inTx(func(tx pgx.Tx) {
			ctx := context.Background()
			id := uuid.New()
			s.insertEntry(tx, id, time.Now().Add(-time.Minute), 0)

			err := s.repo.MarkFailed(ctx, tx, id, "malformed payload", true, time.Now())
			s.Require().NoError(err)

			var status string
			err = tx.QueryRow(ctx, `SELECT status FROM job_queue WHERE id = $1`, id).Scan(&status)
			s.Require().NoError(err)
			s.Equal("failed", status)
		})
	})
}
