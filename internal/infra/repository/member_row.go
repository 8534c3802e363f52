package repository

import (
	"journal-backend/internal/domain/member"
	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// memberRow is the raw members table shape shared by the write-side loads.
type memberRow struct {
	ID                uuid.UUID
	Email             string
	DisplayName       string
	Tier              string
	TrialStartedAt    pgtype.Timestamptz
	TrialEndsAt       pgtype.Timestamptz
	TrialActivatedAt  pgtype.Timestamptz
	CancelRequestedAt pgtype.Timestamptz
	AccessEndsAt      pgtype.Timestamptz
	CancelReason      pgtype.Text
	FCMToken          pgtype.Text
	LastReplyAt       pgtype.Timestamptz
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
	DeletedAt         pgtype.Timestamptz
}

func (row memberRow) toDomain() (*member.Member, error) {
	tier, err := member.NewTier(row.Tier)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt tier value", err)
	}

	var trial *member.Trial
	if row.TrialStartedAt.Valid && row.TrialEndsAt.Valid {
		trial = &member.Trial{
			StartedAt:   row.TrialStartedAt.Time,
			EndsAt:      row.TrialEndsAt.Time,
			ActivatedAt: pgconv.TimePtrFromPgtype(row.TrialActivatedAt),
		}
	}

	var cancellation *member.Cancellation
	if row.CancelRequestedAt.Valid && row.AccessEndsAt.Valid {
		cancellation = &member.Cancellation{
			RequestedAt:  row.CancelRequestedAt.Time,
			AccessEndsAt: row.AccessEndsAt.Time,
			Reason:       pgconv.StringPtrFromPgtype(row.CancelReason),
		}
	}

	return member.Reconstruct(
		row.ID,
		member.ReconstructEmail(row.Email),
		row.DisplayName,
		tier,
		trial,
		cancellation,
		pgconv.StringPtrFromPgtype(row.FCMToken),
		pgconv.TimePtrFromPgtype(row.LastReplyAt),
		row.CreatedAt.Time,
		row.UpdatedAt.Time,
		pgconv.TimePtrFromPgtype(row.DeletedAt),
	), nil
}
