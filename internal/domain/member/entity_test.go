//go:build unit

package member_test

import (
	"testing"
	"time"

	"journal-backend/internal/domain/member"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTrialingMember(t *testing.T, trialEndsAt time.Time) *member.Member {
	t.Helper()
	email, err := member.NewEmail("journaler@example.com")
	require.NoError(t, err)
	trial, err := member.NewTrial(now.AddDate(0, 0, -14), trialEndsAt)
	require.NoError(t, err)
	return member.NewMember(email, "Journaler", trial, now.AddDate(0, 0, -14))
}

func TestNewMember(t *testing.T) {
	t.Run("signup with trial starts on plus tier", func(t *testing.T) {
		m := newTrialingMember(t, now.AddDate(0, 0, 14))
		assert.NotEqual(t, uuid.Nil, m.ID())
		assert.Equal(t, member.TierPlus, m.Tier())
		assert.False(t, m.Deleted())
	})

	t.Run("signup without trial starts on basic tier", func(t *testing.T) {
		email, err := member.NewEmail("basic@example.com")
		require.NoError(t, err)
		m := member.NewMember(email, "Basic", nil, now)
		assert.Equal(t, member.TierBasic, m.Tier())
		assert.Nil(t, m.Trial())
	})
}

func TestEmailValidation(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain address", input: "a@b.co", want: "a@b.co"},
		{name: "normalizes case and whitespace", input: "  Journaler@Example.COM ", want: "journaler@example.com"},
		{name: "missing domain", input: "nobody@", wantErr: member.ErrInvalidEmail},
		{name: "empty", input: "", wantErr: member.ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			email, err := member.NewEmail(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, email.Value())
		})
	}
}

func TestTrialExpirable(t *testing.T) {
	t.Run("expired trial is expirable", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(-time.Hour))
		assert.True(t, m.TrialExpirable(now))
	})

	t.Run("live trial is not expirable", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(time.Hour))
		assert.False(t, m.TrialExpirable(now))
	})

	t.Run("activated trial is not expirable", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(-time.Hour))
		require.NoError(t, m.ActivateTrial(member.TierPremium, now.Add(-2*time.Hour)))
		assert.False(t, m.TrialExpirable(now))
		assert.Equal(t, member.TierPremium, m.Tier())
	})

	t.Run("already downgraded member is not expirable", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(-time.Hour))
		m.Downgrade(now)
		assert.Equal(t, member.TierBasic, m.Tier())
		assert.False(t, m.TrialExpirable(now))
	})

	t.Run("soft-deleted member is not expirable", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(-time.Hour))
		m.SoftDelete(now)
		assert.True(t, m.Deleted())
		assert.False(t, m.TrialExpirable(now))
	})
}

func TestAccessExpirable(t *testing.T) {
	t.Run("cancelled member past access window is expirable", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(time.Hour))
		require.NoError(t, m.ActivateTrial(member.TierPlus, now.AddDate(0, 0, -7)))
		require.NoError(t, m.Cancel(now.AddDate(0, 0, -3), now.Add(-time.Minute), nil))
		assert.True(t, m.AccessExpirable(now))
	})

	t.Run("cancelled member inside access window keeps access", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(time.Hour))
		require.NoError(t, m.ActivateTrial(member.TierPlus, now.AddDate(0, 0, -7)))
		require.NoError(t, m.Cancel(now.AddDate(0, 0, -3), now.AddDate(0, 0, 4), nil))
		assert.False(t, m.AccessExpirable(now))
	})

	t.Run("access end before cancellation request is rejected", func(t *testing.T) {
		m := newTrialingMember(t, now.Add(time.Hour))
		err := m.Cancel(now, now.Add(-time.Hour), nil)
		assert.ErrorIs(t, err, member.ErrInvalidAccessEnd)
	})
}

func TestTrialWindow(t *testing.T) {
	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := member.NewTrial(now, now.Add(-time.Hour))
		assert.ErrorIs(t, err, member.ErrInvalidTrialWindow)
	})

	t.Run("activating without a trial fails", func(t *testing.T) {
		email, err := member.NewEmail("basic@example.com")
		require.NoError(t, err)
		m := member.NewMember(email, "Basic", nil, now)
		assert.ErrorIs(t, m.ActivateTrial(member.TierPlus, now), member.ErrNotOnTrial)
	})
}
