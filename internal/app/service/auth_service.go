package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"petshop/internal/common"
	"petshop/internal/common/security"
	"petshop/internal/domain/model"
	"petshop/internal/domain/repository"
	"petshop/internal/platform/metrics"
)

type AuthService struct {
	users     repository.UserRepository
	resolver  *RoleResolver
	tokens    *security.Tokens
	passwords *security.Passwords
}

func NewAuthService(users repository.UserRepository, resolver *RoleResolver, tokens *security.Tokens, passwords *security.Passwords) *AuthService {
	return &AuthService{users: users, resolver: resolver, tokens: tokens, passwords: passwords}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	password := strings.TrimSpace(req.Password)
	if len(password) < 8 {
		return nil, common.BadRequestf("password must be at least 8 characters")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, common.BadRequestf("fullName is required")
	}

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, common.BadRequestf("Email %q is already in use!", email)
	} else if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashed,
		FullName:       fullName,
		Role:           []string{model.RoleCustomer}, // Default role
		CreatedDate:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Lost a race with a concurrent registration for the same email.
			return nil, common.BadRequestf("Email %q is already in use!", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Message: "New User Registered!", UserID: user.ID, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	password := strings.TrimSpace(req.Password)
	if len(password) < 8 {
		return nil, common.BadRequestf("password must be at least 8 characters")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Generic message: do not reveal whether the email exists.
			return nil, common.BadRequestf("Invalid Credentials!")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !s.passwords.Check(password, user.HashedPassword) {
		return nil, common.BadRequestf("Invalid Credentials!")
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Message: "Welcome Back!", UserID: user.ID, Token: token}, nil
}

// IssueToken resolves the user's permissions and signs a fresh token.
func (s *AuthService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	identity := s.resolver.ResolveIdentity(ctx, user)
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return "", err
	}
	metrics.AuthTokensIssuedTotal.Inc()
	return token, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", common.BadRequestf("valid email is required")
	}
	return email, nil
}
