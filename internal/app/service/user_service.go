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
	"petshop/internal/common/security"
	"petshop/internal/domain/model"
	"petshop/internal/domain/repository"
)

type UserService struct {
	users     repository.UserRepository
	edits     repository.EditRepository
	auth      *AuthService
	passwords *security.Passwords
}

func NewUserService(users repository.UserRepository, edits repository.EditRepository, auth *AuthService, passwords *security.Passwords) *UserService {
	return &UserService{users: users, edits: edits, auth: auth, passwords: passwords}
}

// UpdateUserRequest is the body of both update paths. Nil fields are left
// untouched; Role accepts a single name or an array and is normalized to
// the array form.
type UpdateUserRequest struct {
	Password *string        `json:"password"`
	FullName *string        `json:"fullName"`
	Role     model.RoleList `json:"role"`
}

type UpdateResult struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token,omitempty"`
}

// UpdateSelf is the self-service path. Any authenticated user may change
// their own fullName and password; changing one's own role additionally
// requires the manageUsers permission.
func (s *UserService) UpdateSelf(ctx context.Context, actor *model.Identity, req UpdateUserRequest) (*UpdateResult, error) {
	if req.Role != nil && !actor.HasPermission(model.PermManageUsers) {
		return nil, common.Forbiddenf("You do not have permission to change your role!")
	}
	return s.apply(ctx, actor, actor.ID, req)
}

// UpdateUser is the admin path. The manageUsers gate is enforced at the
// route level; unlike the self path there is no additional role check here.
func (s *UserService) UpdateUser(ctx context.Context, actor *model.Identity, targetID string, req UpdateUserRequest) (*UpdateResult, error) {
	return s.apply(ctx, actor, targetID, req)
}

func (s *UserService) apply(ctx context.Context, actor *model.Identity, targetID string, req UpdateUserRequest) (*UpdateResult, error) {
	upd, payload, err := s.buildUpdate(req)
	if err != nil {
		return nil, err
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("User not found!")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	result := &UpdateResult{Message: "User Updated!", UserID: targetID}
	if upd.Empty() {
		return result, nil
	}

	now := time.Now()
	snapshot := actor.Snapshot()
	upd.LastUpdated = &now
	upd.LastUpdatedBy = snapshot
	payload["lastUpdated"] = now
	payload["lastUpdatedBy"] = snapshot

	if err := s.users.Update(ctx, targetID, upd); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundf("User not found!")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// Best effort: an audit failure never rolls back the update.
	edit := &model.Edit{
		ID:         uuid.NewString(),
		Timestamp:  now,
		Op:         "update",
		Collection: "users",
		TargetID:   targetID,
		Update:     payload,
		Actor:      snapshot,
	}
	if err := s.edits.Append(ctx, edit); err != nil {
		log.Printf("audit append failed for user %s: %v", targetID, err)
	}

	// Reissue only when the actor edited themself, so the token tracks the
	// possibly-changed role.
	if targetID == actor.ID {
		merged := *target
		if upd.HashedPassword != nil {
			merged.HashedPassword = *upd.HashedPassword
		}
		if upd.FullName != nil {
			merged.FullName = *upd.FullName
		}
		if upd.Role != nil {
			merged.Role = upd.Role
		}
		token, err := s.auth.IssueToken(ctx, &merged)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		result.Token = token
	}

	return result, nil
}

func (s *UserService) buildUpdate(req UpdateUserRequest) (repository.UserUpdate, map[string]any, error) {
	upd := repository.UserUpdate{}
	payload := map[string]any{}

	if req.Password != nil {
		password := strings.TrimSpace(*req.Password)
		if len(password) < 8 {
			return upd, nil, common.BadRequestf("password must be at least 8 characters")
		}
		hashed, err := s.passwords.Hash(password)
		if err != nil {
			return upd, nil, fmt.Errorf("failed to hash password: %w", err)
		}
		upd.HashedPassword = &hashed
		payload["password"] = hashed
	}
	if req.FullName != nil {
		fullName := strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return upd, nil, common.BadRequestf("fullName must not be empty")
		}
		upd.FullName = &fullName
		payload["fullName"] = fullName
	}
	if req.Role != nil {
		for _, name := range req.Role {
			if !model.ValidRole(name) {
				return upd, nil, common.BadRequestf("role %q is not a valid role", name)
			}
		}
		upd.Role = req.Role
		payload["role"] = []string(req.Role)
	}

	return upd, payload, nil
}
