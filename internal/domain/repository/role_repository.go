package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"petshop/internal/common"
	"petshop/internal/domain/model"
)

type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*model.Role, error)
}

type pgRoleRepository struct {
	db *sql.DB
}

func NewPgRoleRepository(db *sql.DB) RoleRepository {
	return &pgRoleRepository{db: db}
}

func (r *pgRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	query := `SELECT name, permissions FROM roles WHERE name = $1`
	role := &model.Role{}
	var permsJSON []byte
	err := r.db.QueryRowContext(ctx, query, name).Scan(&role.Name, &permsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRoleRepository.FindByName: %w", err)
	}
	if err := json.Unmarshal(permsJSON, &role.Permissions); err != nil {
		return nil, fmt.Errorf("pgRoleRepository.FindByName: unmarshal permissions: %w", err)
	}
	return role, nil
}
