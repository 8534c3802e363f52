package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"journal-backend/internal/usecase/queries"
)

type MemberResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name"`
	Tier             string     `json:"tier"`
	TrialStartedAt   *time.Time `json:"trial_started_at,omitempty"`
	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	TrialActivatedAt *time.Time `json:"trial_activated_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	AccessEndsAt     *time.Time `json:"access_ends_at,omitempty"`
	HasFCMToken      bool       `json:"has_fcm_token"`
	LastReplyAt      *time.Time `json:"last_reply_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func FromMemberView(v *queries.MemberView) *MemberResponse {
	var resp MemberResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

type MemberListItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Tier        string     `json:"tier"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func FromMemberList(items []*queries.MemberListItem) []*MemberListItemResponse {
	res := make([]*MemberListItemResponse, len(items))
	for i, it := range items {
		var item MemberListItemResponse
		_ = copier.Copy(&item, it)
		res[i] = &item
	}
	return res
}

type MemberStatsResponse struct {
	TotalMembers    int64     `json:"total_members"`
	ActiveTrials    int64     `json:"active_trials"`
	ExpiredTrials   int64     `json:"expired_trials"`
	BasicMembers    int64     `json:"basic_members"`
	PlusMembers     int64     `json:"plus_members"`
	PremiumMembers  int64     `json:"premium_members"`
	CanceledMembers int64     `json:"canceled_members"`
	DeletedMembers  int64     `json:"deleted_members"`
	ComputedAt      time.Time `json:"computed_at"`
}

func FromMemberStats(v *queries.MemberStatsView) *MemberStatsResponse {
	var resp MemberStatsResponse
	_ = copier.Copy(&resp, v)
	return &resp
}
