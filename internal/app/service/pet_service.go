package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"petshop/internal/common"
	"petshop/internal/domain/model"
	"petshop/internal/domain/repository"
)

type PetService struct {
	pets  repository.PetRepository
	edits repository.EditRepository
}

func NewPetService(pets repository.PetRepository, edits repository.EditRepository) *PetService {
	return &PetService{pets: pets, edits: edits}
}

type CreatePetRequest struct {
	Species string `json:"species"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
}

type UpdatePetRequest struct {
	Species *string `json:"species"`
	Name    *string `json:"name"`
	Age     *int    `json:"age"`
	Gender  *string `json:"gender"`
}

func (s *PetService) Create(ctx context.Context, actor *model.Identity, req CreatePetRequest) (*model.Pet, error) {
	if strings.TrimSpace(req.Species) == "" {
		return nil, common.BadRequestf("Species required.")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, common.BadRequestf("Name required.")
	}
	if req.Age <= 0 {
		return nil, common.BadRequestf("Age required.")
	}
	if strings.TrimSpace(req.Gender) == "" {
		return nil, common.BadRequestf("Gender required.")
	}

	pet := &model.Pet{
		ID:          uuid.NewString(),
		Species:     req.Species,
		Name:        req.Name,
		Age:         req.Age,
		Gender:      req.Gender,
		CreatedDate: time.Now(),
	}
	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}

	s.audit(ctx, actor, "insert", pet.ID, map[string]any{
		"species": pet.Species,
		"name":    pet.Name,
		"age":     pet.Age,
		"gender":  pet.Gender,
	})
	return pet, nil
}

func (s *PetService) List(ctx context.Context) ([]model.Pet, error) {
	pets, err := s.pets.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return pets, nil
}

func (s *PetService) Get(ctx context.Context, petID string) (*model.Pet, error) {
	pet, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("Pet not found.")
		}
		return nil, fmt.Errorf("failed to find pet: %w", err)
	}
	return pet, nil
}

func (s *PetService) Update(ctx context.Context, actor *model.Identity, petID string, req UpdatePetRequest) (*model.Pet, error) {
	if req.Age != nil && *req.Age < 0 {
		return nil, common.BadRequestf("Age must not be negative.")
	}

	now := time.Now()
	upd := repository.PetUpdate{
		Species:     req.Species,
		Name:        req.Name,
		Age:         req.Age,
		Gender:      req.Gender,
		LastUpdated: &now,
	}
	if err := s.pets.Update(ctx, petID, upd); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("Pet not found.")
		}
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}

	payload := map[string]any{"lastUpdated": now}
	if req.Species != nil {
		payload["species"] = *req.Species
	}
	if req.Name != nil {
		payload["name"] = *req.Name
	}
	if req.Age != nil {
		payload["age"] = *req.Age
	}
	if req.Gender != nil {
		payload["gender"] = *req.Gender
	}
	s.audit(ctx, actor, "update", petID, payload)

	return s.Get(ctx, petID)
}

func (s *PetService) Delete(ctx context.Context, actor *model.Identity, petID string) error {
	if err := s.pets.Delete(ctx, petID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NotFoundf("Pet not found.")
		}
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	s.audit(ctx, actor, "delete", petID, nil)
	return nil
}

// audit appends one edit record, best effort. Failures are logged and never
// surfaced to the caller.
func (s *PetService) audit(ctx context.Context, actor *model.Identity, op, targetID string, payload map[string]any) {
	edit := &model.Edit{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Op:         op,
		Collection: "pets",
		TargetID:   targetID,
		Update:     payload,
		Actor:      actor.Snapshot(),
	}
	if err := s.edits.Append(ctx, edit); err != nil {
		log.Printf("audit append failed for pet %s: %v", targetID, err)
	}
}
