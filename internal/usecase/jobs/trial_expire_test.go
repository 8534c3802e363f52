//go:build unit

package jobs_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/domain/member"
	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/usecase/jobs"
	"journal-backend/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanStore struct {
	rows []jobs.MemberScanRow
}

func (f *fakeScanStore) TrialExpirablePage(_ context.Context, cursor job.Cursor, _ time.Time) ([]jobs.MemberScanRow, error) {
	return pageAfter(f.rows, cursor), nil
}

func (f *fakeScanStore) AccessExpirablePage(_ context.Context, cursor job.Cursor, _ time.Time) ([]jobs.MemberScanRow, error) {
	return pageAfter(f.rows, cursor), nil
}

func (f *fakeScanStore) PushTargetPage(_ context.Context, cursor job.Cursor) ([]jobs.MemberScanRow, error) {
	return pageAfter(f.rows, cursor), nil
}

// pageAfter mimics the keyset scan: rows strictly after the cursor's last
// key, ordered by (sort key, member id), at most BatchSize of them.
func pageAfter(rows []jobs.MemberScanRow, cursor job.Cursor) []jobs.MemberScanRow {
	sorted := make([]jobs.MemberScanRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].SortKey.Equal(sorted[j].SortKey) {
			return sorted[i].SortKey.Before(sorted[j].SortKey)
		}
		return sorted[i].MemberID.String() < sorted[j].MemberID.String()
	})

	var out []jobs.MemberScanRow
	for _, row := range sorted {
		if cursor.LastKey != nil {
			last := *cursor.LastKey
			afterKey := row.SortKey.After(last.EndsAt) ||
				(row.SortKey.Equal(last.EndsAt) && row.MemberID.String() > last.MemberID.String())
			if !afterKey {
				continue
			}
		}
		out = append(out, row)
		if len(out) == cursor.BatchSize {
			break
		}
	}
	return out
}

// fakeMemberRepo keeps members in memory and records updates.
type fakeMemberRepo struct {
	members map[uuid.UUID]*member.Member
	updated []uuid.UUID
}

func (f *fakeMemberRepo) Create(_ context.Context, _ db.DBTX, m *member.Member) (uuid.UUID, error) {
	f.members[m.ID()] = m
	return m.ID(), nil
}

func (f *fakeMemberRepo) Update(_ context.Context, _ db.DBTX, m *member.Member) error {
	f.members[m.ID()] = m
	f.updated = append(f.updated, m.ID())
	return nil
}

func (f *fakeMemberRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*member.Member, error) {
	return f.find(id)
}

func (f *fakeMemberRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*member.Member, error) {
	return f.find(id)
}

func (f *fakeMemberRepo) find(id uuid.UUID) (*member.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, infra.WrapRepoErr("member not found", nil, infra.KindNotFound)
	}
	return m, nil
}

type fakeTx struct {
	members *fakeMemberRepo
}

func (f *fakeTx) Members() shared.MemberRepository         { return f.members }
func (f *fakeTx) Prompts() shared.PromptRepository         { return nil }
func (f *fakeTx) SentPrompts() shared.SentPromptRepository { return nil }
func (f *fakeTx) JobQueue() shared.JobQueueRepository      { return nil }
func (f *fakeTx) Operators() shared.OperatorRepository     { return nil }
func (f *fakeTx) MemberStats() shared.MemberStatsRepository {
	return nil
}
func (f *fakeTx) Reads() shared.CommandReads { return nil }
func (f *fakeTx) DB() db.DBTX                { return nil }

type fakeUoW struct {
	tx *fakeTx
}

func (f *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, f.tx)
}

func (f *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (f *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (f *fakeUoW) CommandReads() shared.CommandReads { return nil }

func expiredTrialMember(t *testing.T, now time.Time) *member.Member {
	t.Helper()
	email, err := member.NewEmail(uuid.NewString() + "@example.com")
	require.NoError(t, err)
	trial, err := member.NewTrial(now.AddDate(0, 0, -20), now.AddDate(0, 0, -6))
	require.NoError(t, err)
	return member.NewMember(email, "sweep target", trial, now.AddDate(0, 0, -20))
}

func TestTrialExpireRunner_DowngradesExpiredTrials(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	repo := &fakeMemberRepo{members: map[uuid.UUID]*member.Member{}}
	uow := &fakeUoW{tx: &fakeTx{members: repo}}
	scans := &fakeScanStore{}

	for range 3 {
		m := expiredTrialMember(t, now)
		repo.members[m.ID()] = m
		scans.rows = append(scans.rows, jobs.MemberScanRow{MemberID: m.ID(), SortKey: m.Trial().EndsAt})
	}

	runner := jobs.NewTrialExpireRunner(scans, uow, clk)
	result, err := runner.Run(context.Background(), mustEnvelope(t, job.KindTrialExpire, job.FirstCursor(10)))
	require.NoError(t, err)

	// A short page means the chain terminates here.
	want := job.PageResult{Kind: job.KindTrialExpire, BatchNumber: 0, Succeeded: 3}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("page result mismatch (-want +got):\n%s", diff)
	}
	for _, m := range repo.members {
		assert.Equal(t, member.TierBasic, m.Tier())
	}
}

func TestTrialExpireRunner_RechecksEligibilityUnderLock(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	repo := &fakeMemberRepo{members: map[uuid.UUID]*member.Member{}}
	uow := &fakeUoW{tx: &fakeTx{members: repo}}
	scans := &fakeScanStore{}

	// Activated between scan and handling: no longer eligible.
	activated := expiredTrialMember(t, now)
	require.NoError(t, activated.ActivateTrial(member.TierPremium, now.AddDate(0, 0, -7)))
	repo.members[activated.ID()] = activated
	scans.rows = append(scans.rows, jobs.MemberScanRow{MemberID: activated.ID(), SortKey: now.AddDate(0, 0, -6)})

	eligible := expiredTrialMember(t, now)
	repo.members[eligible.ID()] = eligible
	scans.rows = append(scans.rows, jobs.MemberScanRow{MemberID: eligible.ID(), SortKey: eligible.Trial().EndsAt})

	runner := jobs.NewTrialExpireRunner(scans, uow, clk)
	result, err := runner.Run(context.Background(), mustEnvelope(t, job.KindTrialExpire, job.FirstCursor(10)))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, member.TierPremium, repo.members[activated.ID()].Tier(), "activated member keeps the paid tier")
	assert.Equal(t, member.TierBasic, repo.members[eligible.ID()].Tier())
}

func TestTrialExpireRunner_VanishedMemberIsSkipped(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	repo := &fakeMemberRepo{members: map[uuid.UUID]*member.Member{}}
	uow := &fakeUoW{tx: &fakeTx{members: repo}}

	// The scan row refers to a member the repo no longer has.
	scans := &fakeScanStore{rows: []jobs.MemberScanRow{
		{MemberID: uuid.New(), SortKey: now.AddDate(0, 0, -1)},
	}}

	runner := jobs.NewTrialExpireRunner(scans, uow, clk)
	result, err := runner.Run(context.Background(), mustEnvelope(t, job.KindTrialExpire, job.FirstCursor(10)))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, repo.updated)
}

func TestTrialExpireRunner_FullPageCarriesNextCursor(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	repo := &fakeMemberRepo{members: map[uuid.UUID]*member.Member{}}
	uow := &fakeUoW{tx: &fakeTx{members: repo}}
	scans := &fakeScanStore{}

	for range 3 {
		m := expiredTrialMember(t, now)
		repo.members[m.ID()] = m
		scans.rows = append(scans.rows, jobs.MemberScanRow{MemberID: m.ID(), SortKey: m.Trial().EndsAt})
	}

	runner := jobs.NewTrialExpireRunner(scans, uow, clk)

	first, err := runner.Run(context.Background(), mustEnvelope(t, job.KindTrialExpire, job.FirstCursor(2)))
	require.NoError(t, err)
	require.NotNil(t, first.NextCursor, "full page continues the chain")
	assert.Equal(t, 2, first.Succeeded)

	second, err := runner.Run(context.Background(), mustEnvelope(t, job.KindTrialExpire, *first.NextCursor))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Succeeded)
	assert.Nil(t, second.NextCursor)

	for _, m := range repo.members {
		assert.Equal(t, member.TierBasic, m.Tier())
	}
}

func mustEnvelope(t *testing.T, kind job.Kind, cursor job.Cursor) job.Envelope {
	t.Helper()
	envelope, err := job.NewEnvelope(kind, cursor)
	require.NoError(t, err)
	return envelope
}
