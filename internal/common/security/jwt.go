package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"petshop/internal/domain/model"
)

// Tokens signs and verifies auth tokens against one shared HS256 secret.
type Tokens struct {
	auth      *jwtauth.JWTAuth
	expiresIn time.Duration
}

func NewTokens(secret []byte, expiresIn time.Duration) *Tokens {
	return &Tokens{
		auth:      jwtauth.New("HS256", secret, nil),
		expiresIn: expiresIn,
	}
}

// JWTAuth exposes the verifier used by the router's token middleware.
func (t *Tokens) JWTAuth() *jwtauth.JWTAuth { return t.auth }

// Issue signs a token whose payload is the identity as resolved at this
// moment. The permission table inside is a snapshot, not a live reference.
func (t *Tokens) Issue(identity *model.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":          identity.ID,
		"email":       identity.Email,
		"fullName":    identity.FullName,
		"role":        identity.Role,
		"permissions": identity.Permissions,
		"exp":         now.Add(t.expiresIn).Unix(),
		"iat":         now.Unix(),
	}
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// Decode verifies tokenString and returns the embedded identity.
func (t *Tokens) Decode(ctx context.Context, tokenString string) (*model.Identity, error) {
	token, err := jwtauth.VerifyToken(t.auth, tokenString)
	if err != nil {
		return nil, err
	}
	claims, err := token.AsMap(ctx)
	if err != nil {
		return nil, err
	}
	return IdentityFromClaims(claims)
}

// IdentityFromClaims rebuilds the identity from a verified claims map.
// Claim values arrive as generic JSON types, so role and permissions need
// per-element conversion.
func IdentityFromClaims(claims map[string]interface{}) (*model.Identity, error) {
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("id claim is missing or not a string")
	}

	identity := &model.Identity{ID: id}
	identity.Email, _ = claims["email"].(string)
	identity.FullName, _ = claims["fullName"].(string)

	switch role := claims["role"].(type) {
	case string:
		identity.Role = []string{role}
	case []string:
		identity.Role = role
	case []interface{}:
		for _, r := range role {
			if name, ok := r.(string); ok {
				identity.Role = append(identity.Role, name)
			}
		}
	}

	// Distinguish "claim absent" (nil) from "empty table" (non-nil, empty):
	// the permission gate reports them differently.
	if raw, present := claims["permissions"]; present {
		if table, ok := raw.(map[string]interface{}); ok {
			perms := make(map[string]bool, len(table))
			for name, v := range table {
				if granted, ok := v.(bool); ok && granted {
					perms[name] = true
				}
			}
			identity.Permissions = perms
		}
	}

	return identity, nil
}
