package repository

import (
	"context"

	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/usecase/shared"
)

type MemberStatsRepository struct{}

func NewMemberStatsRepository() *MemberStatsRepository {
	return &MemberStatsRepository{}
}

func (r *MemberStatsRepository) InsertSnapshot(ctx context.Context, tx db.DBTX, snap *shared.StatsSnapshot) error {
	const query = `
		INSERT INTO member_stats (
			total_members, active_trials, expired_trials,
			basic_members, plus_members, premium_members,
			canceled_members, deleted_members, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		snap.TotalMembers, snap.ActiveTrials, snap.ExpiredTrials,
		snap.BasicMembers, snap.PlusMembers, snap.PremiumMembers,
		snap.CanceledMembers, snap.DeletedMembers, snap.ComputedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert member stats snapshot", err)
	}
	return nil
}
