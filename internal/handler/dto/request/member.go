package request

import (
	"strings"
	"time"

	"journal-backend/internal/pkg/patch"
	"journal-backend/internal/usecase/commands"
)

const defaultTrialDays = 14

type RegisterMemberRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	DisplayName string  `json:"display_name" binding:"required,max=100"`
	TrialDays   *int    `json:"trial_days" binding:"omitempty,min=0,max=365"`
	FCMToken    *string `json:"fcm_token,omitempty"`
}

func (r *RegisterMemberRequest) ToCommand() commands.RegisterMemberRequest {
	return commands.RegisterMemberRequest{
		Email:       strings.TrimSpace(r.Email),
		DisplayName: strings.TrimSpace(r.DisplayName),
		TrialDays:   patch.Coalesce(r.TrialDays, defaultTrialDays),
		FCMToken:    r.FCMToken,
	}
}

type UpdateMemberRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Tier        *string `json:"tier" binding:"omitempty,oneof=basic plus premium"`
	FCMToken    *string `json:"fcm_token,omitempty"`
}

func (r *UpdateMemberRequest) ToCommand() commands.UpdateMemberRequest {
	return commands.UpdateMemberRequest{
		DisplayName: r.DisplayName,
		Tier:        r.Tier,
		FCMToken:    r.FCMToken,
	}
}

type ActivateTrialRequest struct {
	Tier *string `json:"tier" binding:"omitempty,oneof=plus premium"`
}

// Tier defaults to plus when the caller does not name one.
func (r *ActivateTrialRequest) TierOrDefault() string {
	return patch.Coalesce(r.Tier, "plus")
}

type CancelMemberRequest struct {
	AccessEndsAt time.Time `json:"access_ends_at" binding:"required"`
	Reason       *string   `json:"reason" binding:"omitempty,max=500"`
}

func (r *CancelMemberRequest) ToCommand() commands.CancelMemberRequest {
	return commands.CancelMemberRequest{
		AccessEndsAt: r.AccessEndsAt,
		Reason:       r.Reason,
	}
}
