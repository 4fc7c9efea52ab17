package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"petshop/internal/common"
	"petshop/internal/domain/model"
)

// PetUpdate carries the fields of one pet mutation; nil fields keep their
// stored value.
type PetUpdate struct {
	Species     *string
	Name        *string
	Age         *int
	Gender      *string
	LastUpdated *time.Time
}

type PetRepository interface {
	Create(ctx context.Context, pet *model.Pet) error
	FindAll(ctx context.Context) ([]model.Pet, error)
	FindByID(ctx context.Context, id string) (*model.Pet, error)
	Update(ctx context.Context, id string, upd PetUpdate) error
	Delete(ctx context.Context, id string) error
}

type pgPetRepository struct {
	db *sql.DB
}

func NewPgPetRepository(db *sql.DB) PetRepository {
	return &pgPetRepository{db: db}
}

const petColumns = `id, species, name, age, gender, created_date, last_updated`

func (r *pgPetRepository) Create(ctx context.Context, pet *model.Pet) error {
	query := `INSERT INTO pets (id, species, name, age, gender, created_date)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		pet.ID, pet.Species, pet.Name, pet.Age, pet.Gender, pet.CreatedDate)
	if err != nil {
		return fmt.Errorf("pgPetRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPetRepository) FindAll(ctx context.Context) ([]model.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets ORDER BY created_date`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgPetRepository.FindAll: %w", err)
	}
	defer rows.Close()

	pets := []model.Pet{}
	for rows.Next() {
		var pet model.Pet
		var lastUpdated sql.NullTime
		if err := rows.Scan(&pet.ID, &pet.Species, &pet.Name, &pet.Age, &pet.Gender, &pet.CreatedDate, &lastUpdated); err != nil {
			return nil, fmt.Errorf("pgPetRepository.FindAll: %w", err)
		}
		if lastUpdated.Valid {
			pet.LastUpdated = &lastUpdated.Time
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPetRepository.FindAll: %w", err)
	}
	return pets, nil
}

func (r *pgPetRepository) FindByID(ctx context.Context, id string) (*model.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	pet := &model.Pet{}
	var lastUpdated sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pet.ID, &pet.Species, &pet.Name, &pet.Age, &pet.Gender, &pet.CreatedDate, &lastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPetRepository.FindByID: %w", err)
	}
	if lastUpdated.Valid {
		pet.LastUpdated = &lastUpdated.Time
	}
	return pet, nil
}

func (r *pgPetRepository) Update(ctx context.Context, id string, upd PetUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Species != nil {
		add("species", *upd.Species)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Age != nil {
		add("age", *upd.Age)
	}
	if upd.Gender != nil {
		add("gender", *upd.Gender)
	}
	if upd.LastUpdated != nil {
		add("last_updated", *upd.LastUpdated)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE pets SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgPetRepository.Update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgPetRepository.Update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgPetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgPetRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgPetRepository.Delete: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
