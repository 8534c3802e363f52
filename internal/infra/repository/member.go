package repository

import (
	"context"

	"journal-backend/internal/domain/member"
	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const memberColumns = `id, email, display_name, tier,
	trial_started_at, trial_ends_at, trial_activated_at,
	cancel_requested_at, access_ends_at, cancel_reason,
	fcm_token, last_reply_at, created_at, updated_at, deleted_at`

type MemberRepository struct{}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{}
}

func (r *MemberRepository) Create(ctx context.Context, tx db.DBTX, m *member.Member) (uuid.UUID, error) {
	const query = `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query, memberArgs(m)...).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create member", err)
	}
	return id, nil
}

func (r *MemberRepository) Update(ctx context.Context, tx db.DBTX, m *member.Member) error {
	const query = `
		UPDATE members SET
			email = $2, display_name = $3, tier = $4,
			trial_started_at = $5, trial_ends_at = $6, trial_activated_at = $7,
			cancel_requested_at = $8, access_ends_at = $9, cancel_reason = $10,
			fcm_token = $11, last_reply_at = $12, created_at = $13,
			updated_at = $14, deleted_at = $15
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, memberArgs(m)...)
	if err != nil {
		return infra.WrapRepoErr("failed to update member", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("member not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *MemberRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*member.Member, error) {
	const query = `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.scanOne(ctx, tx, query, id)
}

// FindByIDForUpdate locks the row for the duration of the transaction.
func (r *MemberRepository) FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*member.Member, error) {
	const query = `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, tx, query, id)
}

func (r *MemberRepository) scanOne(ctx context.Context, tx db.DBTX, query string, id uuid.UUID) (*member.Member, error) {
	row := memberRow{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Email, &row.DisplayName, &row.Tier,
		&row.TrialStartedAt, &row.TrialEndsAt, &row.TrialActivatedAt,
		&row.CancelRequestedAt, &row.AccessEndsAt, &row.CancelReason,
		&row.FCMToken, &row.LastReplyAt, &row.CreatedAt, &row.UpdatedAt, &row.DeletedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("member not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find member", err)
	}
	return row.toDomain()
}

func memberArgs(m *member.Member) []any {
	var trialStartedAt, trialEndsAt, trialActivatedAt any
	if t := m.Trial(); t != nil {
		trialStartedAt = t.StartedAt
		trialEndsAt = t.EndsAt
		if t.ActivatedAt != nil {
			trialActivatedAt = *t.ActivatedAt
		}
	}
	var cancelRequestedAt, accessEndsAt, cancelReason any
	if c := m.Cancellation(); c != nil {
		cancelRequestedAt = c.RequestedAt
		accessEndsAt = c.AccessEndsAt
		if c.Reason != nil {
			cancelReason = *c.Reason
		}
	}
	return []any{
		m.ID(), m.Email().Value(), m.DisplayName(), m.Tier().String(),
		trialStartedAt, trialEndsAt, trialActivatedAt,
		cancelRequestedAt, accessEndsAt, cancelReason,
		m.FCMToken(), m.LastReplyAt(), m.CreatedAt(), m.UpdatedAt(), m.DeletedAt(),
	}
}
