package member

import (
	"time"

	"github.com/google/uuid"
)

// Trial is the time-boxed premium window granted on signup. ActivatedAt is
// set when the member converts to a paid subscription before the window ends.
type Trial struct {
	StartedAt   time.Time
	EndsAt      time.Time
	ActivatedAt *time.Time
}

func NewTrial(startedAt, endsAt time.Time) (*Trial, error) {
	if !endsAt.After(startedAt) {
		return nil, ErrInvalidTrialWindow
	}
	return &Trial{StartedAt: startedAt, EndsAt: endsAt}, nil
}

func (t *Trial) Activated() bool {
	return t != nil && t.ActivatedAt != nil
}

// ExpiredAt reports whether the trial window has closed without activation.
func (t *Trial) ExpiredAt(now time.Time) bool {
	return t != nil && t.ActivatedAt == nil && t.EndsAt.Before(now)
}

// Cancellation records a member's request to end a paid subscription.
// Access continues until AccessEndsAt.
type Cancellation struct {
	RequestedAt  time.Time
	AccessEndsAt time.Time
	Reason       *string
}

func NewCancellation(requestedAt, accessEndsAt time.Time, reason *string) (*Cancellation, error) {
	if accessEndsAt.Before(requestedAt) {
		return nil, ErrInvalidAccessEnd
	}
	return &Cancellation{RequestedAt: requestedAt, AccessEndsAt: accessEndsAt, Reason: reason}, nil
}

func (c *Cancellation) AccessEndedAt(now time.Time) bool {
	return c != nil && c.AccessEndsAt.Before(now)
}

type Member struct {
	id           uuid.UUID
	email        Email
	displayName  string
	tier         Tier
	trial        *Trial
	cancellation *Cancellation
	fcmToken     *string
	lastReplyAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewMember creates a fresh signup: basic tier plus an optional trial window.
func NewMember(email Email, displayName string, trial *Trial, now time.Time) *Member {
	tier := TierBasic
	if trial != nil {
		// Trial members hold premium access until the window closes.
		tier = TierPlus
	}
	return &Member{
		id:          uuid.New(),
		email:       email,
		displayName: displayName,
		tier:        tier,
		trial:       trial,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Reconstruct rebuilds a member from persisted state.
func Reconstruct(
	id uuid.UUID,
	email Email,
	displayName string,
	tier Tier,
	trial *Trial,
	cancellation *Cancellation,
	fcmToken *string,
	lastReplyAt *time.Time,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) *Member {
	return &Member{
		id:           id,
		email:        email,
		displayName:  displayName,
		tier:         tier,
		trial:        trial,
		cancellation: cancellation,
		fcmToken:     fcmToken,
		lastReplyAt:  lastReplyAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		deletedAt:    deletedAt,
	}
}

func (m *Member) ID() uuid.UUID               { return m.id }
func (m *Member) Email() Email                { return m.email }
func (m *Member) DisplayName() string         { return m.displayName }
func (m *Member) Tier() Tier                  { return m.tier }
func (m *Member) Trial() *Trial               { return m.trial }
func (m *Member) Cancellation() *Cancellation { return m.cancellation }
func (m *Member) FCMToken() *string           { return m.fcmToken }
func (m *Member) LastReplyAt() *time.Time     { return m.lastReplyAt }
func (m *Member) CreatedAt() time.Time        { return m.createdAt }
func (m *Member) UpdatedAt() time.Time        { return m.updatedAt }
func (m *Member) DeletedAt() *time.Time       { return m.deletedAt }

func (m *Member) Deleted() bool {
	return m.deletedAt != nil
}

// TrialExpirable reports whether the trial-expire sweep should downgrade
// this member: paid tier held only through a trial that has lapsed.
func (m *Member) TrialExpirable(now time.Time) bool {
	return !m.Deleted() && m.tier.IsPaid() && m.trial.ExpiredAt(now)
}

// AccessExpirable reports whether the cancellation sweep should downgrade
// this member: cancelled with a lapsed access window, still on a paid tier.
func (m *Member) AccessExpirable(now time.Time) bool {
	return !m.Deleted() && m.tier.IsPaid() && m.cancellation.AccessEndedAt(now)
}

// Downgrade drops the member to the basic tier.
func (m *Member) Downgrade(now time.Time) {
	m.tier = TierBasic
	m.updatedAt = now
}

// ActivateTrial converts a trialing member into a paying one.
func (m *Member) ActivateTrial(tier Tier, now time.Time) error {
	if m.trial == nil {
		return ErrNotOnTrial
	}
	activated := now
	m.trial.ActivatedAt = &activated
	m.tier = tier
	m.updatedAt = now
	return nil
}

// Cancel records a cancellation; access survives until accessEndsAt.
func (m *Member) Cancel(requestedAt, accessEndsAt time.Time, reason *string) error {
	cancellation, err := NewCancellation(requestedAt, accessEndsAt, reason)
	if err != nil {
		return err
	}
	m.cancellation = cancellation
	m.updatedAt = requestedAt
	return nil
}

func (m *Member) Rename(displayName string, now time.Time) {
	m.displayName = displayName
	m.updatedAt = now
}

func (m *Member) ChangeTier(tier Tier, now time.Time) {
	m.tier = tier
	m.updatedAt = now
}

func (m *Member) SetFCMToken(token *string, now time.Time) {
	m.fcmToken = token
	m.updatedAt = now
}

func (m *Member) RecordReply(now time.Time) {
	m.lastReplyAt = &now
	m.updatedAt = now
}

// SoftDelete hides the member from scans. Members are never hard-deleted.
func (m *Member) SoftDelete(now time.Time) {
	m.deletedAt = &now
	m.updatedAt = now
}
