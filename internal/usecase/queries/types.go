package queries

import (
	"time"

	"github.com/google/uuid"
)

// Role constants mirrored from the operator domain for access checks
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// MemberView represents full read-optimized member data
type MemberView struct {
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

// MemberListItem is the compact shape for paged member listings
type MemberListItem struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Tier        string     `json:"tier"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MemberStatsView is the latest aggregate snapshot written by the stats job
type MemberStatsView struct {
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

// AuthorizedOperatorView represents read-optimized operator data with authorization info
type AuthorizedOperatorView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

// QueueEntryView represents a queued or finished job message
type QueueEntryView struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Payload   []byte     `json:"payload"`
	RunAt     time.Time  `json:"run_at"`
	Attempts  int32      `json:"attempts"`
	Status    string     `json:"status"`
	LastError *string    `json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
