package readstore

import (
	"context"

	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/pgconv"
	"journal-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type OperatorReadStore struct {
	db db.DBTX
}

func NewOperatorReadStore(dbtx db.DBTX) *OperatorReadStore {
	return &OperatorReadStore{db: dbtx}
}

func (r *OperatorReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedOperatorView, error) {
	const query = `SELECT id, email, role, is_active FROM operators WHERE id = $1`

	var view queries.AuthorizedOperatorView
	err := r.db.QueryRow(ctx, query, id).Scan(&view.ID, &view.Email, &view.Role, &view.IsActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("operator not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find operator by ID", err)
	}
	return &view, nil
}

func (r *OperatorReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedOperatorView, string, error) {
	const query = `SELECT id, email, role, is_active, password_hash FROM operators WHERE email = $1`

	var (
		view queries.AuthorizedOperatorView
		hash string
	)
	err := r.db.QueryRow(ctx, query, email).Scan(&view.ID, &view.Email, &view.Role, &view.IsActive, &hash)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("operator not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find operator by email", err)
	}
	return &view, hash, nil
}
