package commands

import (
	"context"
	"time"

	"journal-backend/internal/domain/member"
	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/pkg/errs"
	"journal-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrMemberNotFoundWrite = errs.New("member not found")
	ErrDuplicateMember     = errs.New("member with this email already exists")
	ErrMemberDeleted       = errs.New("member has been deleted")
)

type RegisterMemberRequest struct {
	Email       string
	DisplayName string
	TrialDays   int
	FCMToken    *string
}

type RegisterMemberResult struct {
	MemberID uuid.UUID
}

type UpdateMemberRequest struct {
	DisplayName *string
	Tier        *string
	FCMToken    *string
}

type CancelMemberRequest struct {
	AccessEndsAt time.Time
	Reason       *string
}

type MemberCommands interface {
	Register(ctx context.Context, req RegisterMemberRequest) (*RegisterMemberResult, error)
	Update(ctx context.Context, memberID uuid.UUID, req UpdateMemberRequest) error
	ActivateTrial(ctx context.Context, memberID uuid.UUID, tier string) error
	Cancel(ctx context.Context, memberID uuid.UUID, req CancelMemberRequest) error
	SoftDelete(ctx context.Context, memberID uuid.UUID) error
	RecordReply(ctx context.Context, memberID uuid.UUID) error
}

type memberCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewMemberCommands(uow shared.UnitOfWork, clk clock.Clock) MemberCommands {
	return &memberCommandsImpl{uow: uow, clock: clk}
}

func (uc *memberCommandsImpl) Register(ctx context.Context, req RegisterMemberRequest) (*RegisterMemberResult, error) {
	email, err := member.NewEmail(req.Email)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var trial *member.Trial
	if req.TrialDays > 0 {
		trial, err = member.NewTrial(now, now.AddDate(0, 0, req.TrialDays))
		if err != nil {
			return nil, err
		}
	}

	m := member.NewMember(email, req.DisplayName, trial, now)
	if req.FCMToken != nil {
		m.SetFCMToken(req.FCMToken, now)
	}

	var createdID uuid.UUID
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, derr := tx.Members().Create(ctx, tx.DB(), m)
		if derr != nil {
			if infra.IsKind(derr, infra.KindDuplicateKey) {
				return ErrDuplicateMember
			}
			return derr
		}
		createdID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &RegisterMemberResult{MemberID: createdID}, nil
}

func (uc *memberCommandsImpl) Update(ctx context.Context, memberID uuid.UUID, req UpdateMemberRequest) error {
	var tier member.Tier
	if req.Tier != nil {
		var err error
		tier, err = member.NewTier(*req.Tier)
		if err != nil {
			return err
		}
	}

	return uc.mutate(ctx, memberID, func(m *member.Member, now time.Time) error {
		if req.Tier != nil {
			m.ChangeTier(tier, now)
		}
		if req.FCMToken != nil {
			m.SetFCMToken(req.FCMToken, now)
		}
		if req.DisplayName != nil {
			m.Rename(*req.DisplayName, now)
		}
		return nil
	})
}

func (uc *memberCommandsImpl) ActivateTrial(ctx context.Context, memberID uuid.UUID, tierName string) error {
	tier, err := member.NewTier(tierName)
	if err != nil {
		return err
	}
	return uc.mutate(ctx, memberID, func(m *member.Member, now time.Time) error {
		return m.ActivateTrial(tier, now)
	})
}

func (uc *memberCommandsImpl) Cancel(ctx context.Context, memberID uuid.UUID, req CancelMemberRequest) error {
	return uc.mutate(ctx, memberID, func(m *member.Member, now time.Time) error {
		return m.Cancel(now, req.AccessEndsAt, req.Reason)
	})
}

func (uc *memberCommandsImpl) SoftDelete(ctx context.Context, memberID uuid.UUID) error {
	return uc.mutate(ctx, memberID, func(m *member.Member, now time.Time) error {
		m.SoftDelete(now)
		return nil
	})
}

func (uc *memberCommandsImpl) RecordReply(ctx context.Context, memberID uuid.UUID) error {
	return uc.mutate(ctx, memberID, func(m *member.Member, now time.Time) error {
		m.RecordReply(now)
		return nil
	})
}

// mutate loads the aggregate under a row lock, applies fn, and persists it.
func (uc *memberCommandsImpl) mutate(ctx context.Context, memberID uuid.UUID, fn func(m *member.Member, now time.Time) error) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		m, err := tx.Members().FindByIDForUpdate(ctx, tx.DB(), memberID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrMemberNotFoundWrite
			}
			return err
		}
		if m.Deleted() {
			return ErrMemberDeleted
		}
		if err := fn(m, uc.clock.Now()); err != nil {
			return err
		}
		return tx.Members().Update(ctx, tx.DB(), m)
	})
}
