package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"journal-backend/internal/domain/operator"
	"journal-backend/internal/pkg/errs"
	"journal-backend/internal/pkg/jwt"
	"journal-backend/internal/pkg/password"
	"journal-backend/internal/usecase/queries"
	"journal-backend/internal/usecase/shared"
)

var (
	ErrOperatorNotFound     = errs.New("operator not found")
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrOperatorInactive     = errs.New("operator inactive")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type LoginResult struct {
	OperatorID uuid.UUID
	TokenPair  *TokenPair
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthCommands interface {
	Login(ctx context.Context, credentials operator.Credentials) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	readStore  queries.OperatorReadStore
	jwtService *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, readStore queries.OperatorReadStore, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		readStore:  readStore,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, credentials operator.Credentials) (*LoginResult, error) {
	opReadModel, err := a.validateOperator(ctx, credentials)
	if err != nil {
		return nil, err
	}

	role, err := operator.NewRole(opReadModel.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	accessToken, err := a.jwtService.GenerateAccessToken(opReadModel.ID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	refreshToken, err := a.jwtService.GenerateRefreshToken(opReadModel.ID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		updateErr := tx.Operators().UpdateLastLogin(ctx, tx.DB(), opReadModel.ID)
		if updateErr != nil {
			slog.Warn("failed to update last login", "operator_id", opReadModel.ID, "error", updateErr.Error())
			// Continue without failing - this is not critical
		}
		return nil
	})
	if err != nil {
		slog.Warn("transaction failed during login", "operator_id", opReadModel.ID, "error", err.Error())
		// Continue without failing - login was successful, only last_login update failed
	}

	tokenPair := &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	return &LoginResult{
		OperatorID: opReadModel.ID,
		TokenPair:  tokenPair,
	}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	role, err := operator.NewRole(claims.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	// Validate operator still exists and is active
	opReadModel, err := a.readStore.FindByID(ctx, claims.UserID)
	if err != nil || opReadModel == nil {
		return nil, ErrOperatorNotFound
	}

	if !opReadModel.IsActive {
		return nil, ErrOperatorInactive
	}

	accessToken, err := a.jwtService.GenerateAccessToken(claims.UserID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	newRefreshToken, err := a.jwtService.GenerateRefreshToken(claims.UserID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (a *authCommandsImpl) validateOperator(ctx context.Context, credentials operator.Credentials) (*queries.AuthorizedOperatorView, error) {
	opReadModel, hashedPassword, err := a.readStore.FindByEmail(ctx, credentials.Email().Value())
	if err != nil {
		// Return same error as password mismatch to prevent operator enumeration attacks
		return nil, ErrInvalidCredentials
	}

	if opReadModel == nil {
		return nil, ErrOperatorNotFound
	}

	if !opReadModel.IsActive {
		return nil, ErrOperatorInactive
	}

	err = password.ComparePassword(hashedPassword, credentials.Password().Value())
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return opReadModel, nil
}
