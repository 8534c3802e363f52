package readstore

import (
	"context"
	"time"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/pgconv"
	"journal-backend/internal/usecase/jobs"
	"journal-backend/internal/usecase/queries"
	"journal-backend/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
)

// MemberScanStore runs the keyset scans behind the sweep jobs. Every page is
// ordered by (sort column, id) ascending and resumes strictly after the
// cursor's last key, so a page boundary never repeats or skips a member.
type MemberScanStore struct {
	db db.DBTX
}

func NewMemberScanStore(dbtx db.DBTX) *MemberScanStore {
	return &MemberScanStore{db: dbtx}
}

func (r *MemberScanStore) TrialExpirablePage(ctx context.Context, cursor job.Cursor, now time.Time) ([]jobs.MemberScanRow, error) {
	const firstPage = `
		SELECT id, trial_ends_at FROM members
		WHERE deleted_at IS NULL
		  AND tier <> 'basic'
		  AND trial_activated_at IS NULL
		  AND trial_ends_at IS NOT NULL AND trial_ends_at < $1
		ORDER BY trial_ends_at, id
		LIMIT $2`
	const keysetPage = `
		SELECT id, trial_ends_at FROM members
		WHERE deleted_at IS NULL
		  AND tier <> 'basic'
		  AND trial_activated_at IS NULL
		  AND trial_ends_at IS NOT NULL AND trial_ends_at < $1
		  AND (trial_ends_at, id) > ($3, $4)
		ORDER BY trial_ends_at, id
		LIMIT $2`

	return r.scanPage(ctx, firstPage, keysetPage, cursor, now)
}

func (r *MemberScanStore) AccessExpirablePage(ctx context.Context, cursor job.Cursor, now time.Time) ([]jobs.MemberScanRow, error) {
	const firstPage = `
		SELECT id, access_ends_at FROM members
		WHERE deleted_at IS NULL
		  AND tier <> 'basic'
		  AND access_ends_at IS NOT NULL AND access_ends_at < $1
		ORDER BY access_ends_at, id
		LIMIT $2`
	const keysetPage = `
		SELECT id, access_ends_at FROM members
		WHERE deleted_at IS NULL
		  AND tier <> 'basic'
		  AND access_ends_at IS NOT NULL AND access_ends_at < $1
		  AND (access_ends_at, id) > ($3, $4)
		ORDER BY access_ends_at, id
		LIMIT $2`

	return r.scanPage(ctx, firstPage, keysetPage, cursor, now)
}

func (r *MemberScanStore) PushTargetPage(ctx context.Context, cursor job.Cursor) ([]jobs.MemberScanRow, error) {
	const firstPage = `
		SELECT id, created_at FROM members
		WHERE deleted_at IS NULL AND fcm_token IS NOT NULL
		ORDER BY created_at, id
		LIMIT $1`
	const keysetPage = `
		SELECT id, created_at FROM members
		WHERE deleted_at IS NULL AND fcm_token IS NOT NULL
		  AND (created_at, id) > ($2, $3)
		ORDER BY created_at, id
		LIMIT $1`

	var (
		rows pgx.Rows
		err  error
	)
	if cursor.LastKey == nil {
		rows, err = r.db.Query(ctx, firstPage, cursor.BatchSize)
	} else {
		rows, err = r.db.Query(ctx, keysetPage, cursor.BatchSize, cursor.LastKey.EndsAt, cursor.LastKey.MemberID)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan push target page", err)
	}
	return collectScanRows(rows)
}

func (r *MemberScanStore) scanPage(ctx context.Context, firstPage, keysetPage string, cursor job.Cursor, now time.Time) ([]jobs.MemberScanRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if cursor.LastKey == nil {
		rows, err = r.db.Query(ctx, firstPage, now, cursor.BatchSize)
	} else {
		rows, err = r.db.Query(ctx, keysetPage, now, cursor.BatchSize, cursor.LastKey.EndsAt, cursor.LastKey.MemberID)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan member page", err)
	}
	return collectScanRows(rows)
}

func collectScanRows(rows pgx.Rows) ([]jobs.MemberScanRow, error) {
	defer rows.Close()

	var result []jobs.MemberScanRow
	for rows.Next() {
		var row jobs.MemberScanRow
		if err := rows.Scan(&row.MemberID, &row.SortKey); err != nil {
			return nil, infra.WrapRepoErr("failed to scan member scan row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate member scan rows", err)
	}
	return result, nil
}

// StatsReadStore computes the full member aggregate in one pass and reads
// back the latest persisted snapshot.
type StatsReadStore struct {
	db db.DBTX
}

func NewStatsReadStore(dbtx db.DBTX) *StatsReadStore {
	return &StatsReadStore{db: dbtx}
}

func (r *StatsReadStore) ComputeSnapshot(ctx context.Context) (*shared.StatsSnapshot, error) {
	const query = `
		SELECT
			count(*) FILTER (WHERE deleted_at IS NULL),
			count(*) FILTER (WHERE deleted_at IS NULL
				AND trial_ends_at > now() AND trial_activated_at IS NULL),
			count(*) FILTER (WHERE deleted_at IS NULL
				AND trial_ends_at <= now() AND trial_activated_at IS NULL),
			count(*) FILTER (WHERE deleted_at IS NULL AND tier = 'basic'),
			count(*) FILTER (WHERE deleted_at IS NULL AND tier = 'plus'),
			count(*) FILTER (WHERE deleted_at IS NULL AND tier = 'premium'),
			count(*) FILTER (WHERE deleted_at IS NULL AND cancel_requested_at IS NOT NULL),
			count(*) FILTER (WHERE deleted_at IS NOT NULL)
		FROM members`

	var snap shared.StatsSnapshot
	err := r.db.QueryRow(ctx, query).Scan(
		&snap.TotalMembers, &snap.ActiveTrials, &snap.ExpiredTrials,
		&snap.BasicMembers, &snap.PlusMembers, &snap.PremiumMembers,
		&snap.CanceledMembers, &snap.DeletedMembers,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to compute member stats", err)
	}
	return &snap, nil
}

func (r *StatsReadStore) FindLatest(ctx context.Context) (*queries.MemberStatsView, error) {
	const query = `
		SELECT total_members, active_trials, expired_trials,
		       basic_members, plus_members, premium_members,
		       canceled_members, deleted_members, computed_at
		FROM member_stats
		ORDER BY id DESC
		LIMIT 1`

	var view queries.MemberStatsView
	err := r.db.QueryRow(ctx, query).Scan(
		&view.TotalMembers, &view.ActiveTrials, &view.ExpiredTrials,
		&view.BasicMembers, &view.PlusMembers, &view.PremiumMembers,
		&view.CanceledMembers, &view.DeletedMembers, &view.ComputedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no stats snapshot", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read latest stats snapshot", err)
	}
	return &view, nil
}
