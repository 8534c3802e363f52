package readstore

import (
	"context"
	"time"

	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/pgconv"
	"journal-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const memberViewColumns = `id, email, display_name, tier,
	trial_started_at, trial_ends_at, trial_activated_at,
	cancel_requested_at, access_ends_at,
	fcm_token IS NOT NULL AS has_fcm_token,
	last_reply_at, created_at, updated_at`

type MemberReadStore struct {
	db db.DBTX
}

func NewMemberReadStore(dbtx db.DBTX) *MemberReadStore {
	return &MemberReadStore{db: dbtx}
}

func (r *MemberReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.MemberView, error) {
	const query = `SELECT ` + memberViewColumns + `
		FROM members WHERE id = $1 AND deleted_at IS NULL`

	view, err := scanMemberView(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("member not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get member view by id", err)
	}
	return view, nil
}

func (r *MemberReadStore) FindByEmail(ctx context.Context, email string) (*queries.MemberView, error) {
	const query = `SELECT ` + memberViewColumns + `
		FROM members WHERE email = $1 AND deleted_at IS NULL`

	view, err := scanMemberView(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("member not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get member view by email", err)
	}
	return view, nil
}

func (r *MemberReadStore) FindFirstPage(ctx context.Context, limit int32, tier *string) ([]*queries.MemberListItem, error) {
	const query = `
		SELECT id, email, display_name, tier, trial_ends_at, created_at
		FROM members
		WHERE deleted_at IS NULL
		  AND ($2::text IS NULL OR tier = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit, tier)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get members first page", err)
	}
	return scanMemberListItems(rows)
}

func (r *MemberReadStore) FindKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32, tier *string) ([]*queries.MemberListItem, error) {
	const query = `
		SELECT id, email, display_name, tier, trial_ends_at, created_at
		FROM members
		WHERE deleted_at IS NULL
		  AND ($4::text IS NULL OR tier = $4)
		  AND (created_at, id) < ($1, $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, lastCreatedAt, lastID, limit, tier)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get members keyset page", err)
	}
	return scanMemberListItems(rows)
}

func scanMemberView(row pgx.Row) (*queries.MemberView, error) {
	var (
		view                                          queries.MemberView
		trialStartedAt, trialEndsAt, trialActivatedAt pgtype.Timestamptz
		cancelRequestedAt, accessEndsAt, lastReplyAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&view.ID, &view.Email, &view.DisplayName, &view.Tier,
		&trialStartedAt, &trialEndsAt, &trialActivatedAt,
		&cancelRequestedAt, &accessEndsAt,
		&view.HasFCMToken,
		&lastReplyAt, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	view.TrialStartedAt = pgconv.TimePtrFromPgtype(trialStartedAt)
	view.TrialEndsAt = pgconv.TimePtrFromPgtype(trialEndsAt)
	view.TrialActivatedAt = pgconv.TimePtrFromPgtype(trialActivatedAt)
	view.CancelledAt = pgconv.TimePtrFromPgtype(cancelRequestedAt)
	view.AccessEndsAt = pgconv.TimePtrFromPgtype(accessEndsAt)
	view.LastReplyAt = pgconv.TimePtrFromPgtype(lastReplyAt)
	return &view, nil
}

func scanMemberListItems(rows pgx.Rows) ([]*queries.MemberListItem, error) {
	defer rows.Close()

	var items []*queries.MemberListItem
	for rows.Next() {
		var (
			item        queries.MemberListItem
			trialEndsAt pgtype.Timestamptz
		)
		if err := rows.Scan(&item.ID, &item.Email, &item.DisplayName, &item.Tier, &trialEndsAt, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan member row", err)
		}
		item.TrialEndsAt = pgconv.TimePtrFromPgtype(trialEndsAt)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate member rows", err)
	}
	return items, nil
}
