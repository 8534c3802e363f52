//go:build unit || e2e

package builder

import (
	"time"

	"journal-backend/internal/domain/member"
	reqdto "journal-backend/internal/handler/dto/request"
	"journal-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type MemberBuilder struct {
	Email       string
	DisplayName string
	Tier        string
	TrialDays   int
	FCMToken    *string
	Now         time.Time
}

func NewMemberBuilder() *MemberBuilder {
	return &MemberBuilder{
		Email:       "member@example.com",
		DisplayName: "Test Member",
		Tier:        "basic",
		TrialDays:   14,
		Now:         time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *MemberBuilder) With(mutate func(*MemberBuilder)) *MemberBuilder {
	mutate(b)
	return b
}

func (b *MemberBuilder) BuildDomain() (*member.Member, error) {
	email, err := member.NewEmail(b.Email)
	if err != nil {
		return nil, err
	}

	var trial *member.Trial
	if b.TrialDays > 0 {
		trial, err = member.NewTrial(b.Now, b.Now.AddDate(0, 0, b.TrialDays))
		if err != nil {
			return nil, err
		}
	}

	m := member.NewMember(email, b.DisplayName, trial, b.Now)
	if b.FCMToken != nil {
		m.SetFCMToken(b.FCMToken, b.Now)
	}
	return m, nil
}

func (b *MemberBuilder) BuildDTO() reqdto.RegisterMemberRequest {
	trialDays := b.TrialDays
	return reqdto.RegisterMemberRequest{
		Email:       b.Email,
		DisplayName: b.DisplayName,
		TrialDays:   &trialDays,
		FCMToken:    b.FCMToken,
	}
}

func (b *MemberBuilder) BuildView() *queries.MemberView {
	var trialStartedAt, trialEndsAt *time.Time
	if b.TrialDays > 0 {
		started := b.Now
		ends := b.Now.AddDate(0, 0, b.TrialDays)
		trialStartedAt = &started
		trialEndsAt = &ends
	}
	return &queries.MemberView{
		ID:             uuid.New(),
		Email:          b.Email,
		DisplayName:    b.DisplayName,
		Tier:           b.Tier,
		TrialStartedAt: trialStartedAt,
		TrialEndsAt:    trialEndsAt,
		HasFCMToken:    b.FCMToken != nil,
		CreatedAt:      b.Now,
		UpdatedAt:      b.Now,
	}
}
