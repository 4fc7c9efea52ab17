package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"petshop/internal/domain/model"
)

// EditRepository is the append-only audit trail. Edits are never mutated or
// deleted, so there is intentionally no update or delete here.
type EditRepository interface {
	Append(ctx context.Context, edit *model.Edit) error
}

type pgEditRepository struct {
	db *sql.DB
}

func NewPgEditRepository(db *sql.DB) EditRepository {
	return &pgEditRepository{db: db}
}

func (r *pgEditRepository) Append(ctx context.Context, edit *model.Edit) error {
	updateJSON, err := json.Marshal(edit.Update)
	if err != nil {
		return fmt.Errorf("pgEditRepository.Append: marshal update: %w", err)
	}
	var actorJSON []byte
	if edit.Actor != nil {
		actorJSON, err = json.Marshal(edit.Actor)
		if err != nil {
			return fmt.Errorf("pgEditRepository.Append: marshal actor: %w", err)
		}
	}
	query := `INSERT INTO edits (id, timestamp, op, col, target_id, payload, actor)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query,
		edit.ID, edit.Timestamp, edit.Op, edit.Collection, edit.TargetID, updateJSON, actorJSON)
	if err != nil {
		return fmt.Errorf("pgEditRepository.Append: %w", err)
	}
	return nil
}
