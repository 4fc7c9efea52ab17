package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"petshop/internal/common"
	"petshop/internal/domain/model"
)

// UserUpdate carries the fields of one user mutation. Nil fields are left
// untouched; the stamps are set together with the rest of the update.
type UserUpdate struct {
	HashedPassword *string
	FullName       *string
	Role           []string
	LastUpdated    *time.Time
	LastUpdatedBy  *model.ActorSnapshot
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.HashedPassword == nil && u.FullName == nil && u.Role == nil
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, email, hashed_password, full_name, role, created_date, last_updated, last_updated_by`

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	roleJSON, err := json.Marshal(user.Role)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Create: marshal role: %w", err)
	}
	query := `INSERT INTO users (id, email, hashed_password, full_name, role, created_date)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.ExecContext(ctx, query,
		user.ID, strings.ToLower(user.Email), user.HashedPassword, user.FullName, roleJSON, user.CreatedDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(email)), "FindByEmail")
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgUserRepository) scanOne(row *sql.Row, op string) (*model.User, error) {
	user := &model.User{}
	var roleJSON []byte
	var lastUpdated sql.NullTime
	var actorJSON []byte
	err := row.Scan(
		&user.ID, &user.Email, &user.HashedPassword, &user.FullName,
		&roleJSON, &user.CreatedDate, &lastUpdated, &actorJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	if err := json.Unmarshal(roleJSON, &user.Role); err != nil {
		return nil, fmt.Errorf("pgUserRepository.%s: unmarshal role: %w", op, err)
	}
	if lastUpdated.Valid {
		user.LastUpdated = &lastUpdated.Time
	}
	if len(actorJSON) > 0 {
		actor := &model.ActorSnapshot{}
		if err := json.Unmarshal(actorJSON, actor); err != nil {
			return nil, fmt.Errorf("pgUserRepository.%s: unmarshal last_updated_by: %w", op, err)
		}
		user.LastUpdatedBy = actor
	}
	return user, nil
}

func (r *pgUserRepository) Update(ctx context.Context, id string, upd UserUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.HashedPassword != nil {
		add("hashed_password", *upd.HashedPassword)
	}
	if upd.FullName != nil {
		add("full_name", *upd.FullName)
	}
	if upd.Role != nil {
		roleJSON, err := json.Marshal(upd.Role)
		if err != nil {
			return fmt.Errorf("pgUserRepository.Update: marshal role: %w", err)
		}
		add("role", roleJSON)
	}
	if upd.LastUpdated != nil {
		add("last_updated", *upd.LastUpdated)
	}
	if upd.LastUpdatedBy != nil {
		actorJSON, err := json.Marshal(upd.LastUpdatedBy)
		if err != nil {
			return fmt.Errorf("pgUserRepository.Update: marshal last_updated_by: %w", err)
		}
		add("last_updated_by", actorJSON)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
