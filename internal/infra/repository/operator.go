package repository

import (
	"context"

	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"

	"github.com/google/uuid"
)

type OperatorRepository struct{}

func NewOperatorRepository() *OperatorRepository {
	return &OperatorRepository{}
}

func (r *OperatorRepository) UpdateLastLogin(ctx context.Context, tx db.DBTX, operatorID uuid.UUID) error {
	const query = `UPDATE operators SET last_login = now(), updated_at = now() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, operatorID); err != nil {
		return infra.WrapRepoErr("failed to update operator last login", err)
	}
	return nil
}

func (r *OperatorRepository) Create(ctx context.Context, tx db.DBTX, email, passwordHash, role string) (uuid.UUID, error) {
	const query = `
		INSERT INTO operators (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query, email, passwordHash, role).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create operator", err)
	}
	return id, nil
}
