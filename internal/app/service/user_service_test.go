package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"petshop/internal/common"
	"petshop/internal/common/security"
	"petshop/internal/domain/model"
)

type userFixture struct {
	users   *fakeUserRepo
	edits   *fakeEditRepo
	tokens  *security.Tokens
	service *UserService
}

func newUserFixture(roles ...*model.Role) *userFixture {
	users := newFakeUserRepo()
	edits := &fakeEditRepo{}
	tokens := security.NewTokens([]byte("test-secret"), time.Hour)
	passwords := security.NewPasswords(4)
	resolver := NewRoleResolver(newFakeRoleRepo(roles...), nil, 0)
	auth := NewAuthService(users, resolver, tokens, passwords)
	return &userFixture{
		users:   users,
		edits:   edits,
		tokens:  tokens,
		service: NewUserService(users, edits, auth, passwords),
	}
}

func (fx *userFixture) seedUser(t *testing.T, id, email string, roles ...string) *model.User {
	t.Helper()
	user := &model.User{
		ID:       id,
		Email:    email,
		FullName: "Seeded User",
		Role:     roles,
	}
	require.NoError(t, fx.users.Create(context.Background(), user))
	return user
}

func identityFor(user *model.User, permissions map[string]bool) *model.Identity {
	return &model.Identity{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		Permissions: permissions,
	}
}

func strPtr(s string) *string { return &s }

func TestUpdateSelfFullName(t *testing.T) {
	fx := newUserFixture()
	alice := fx.seedUser(t, "u-alice", "alice@example.com", model.RoleCustomer)
	actor := identityFor(alice, map[string]bool{})

	result, err := fx.service.UpdateSelf(context.Background(), actor, UpdateUserRequest{
		FullName: strPtr("Alice Renamed"),
	})
	require.NoError(t, err)
	require.Equal(t, "User Updated!", result.Message)
	require.Equal(t, alice.ID, result.UserID)
	require.NotEmpty(t, result.Token, "self update must reissue the token")

	stored, err := fx.users.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice Renamed", stored.FullName)
	require.NotNil(t, stored.LastUpdated)
	require.NotNil(t, stored.LastUpdatedBy)
	require.Equal(t, alice.ID, stored.LastUpdatedBy.ID)

	edits := fx.edits.all()
	require.Len(t, edits, 1)
	require.Equal(t, "update", edits[0].Op)
	require.Equal(t, "users", edits[0].Collection)
	require.Equal(t, alice.ID, edits[0].TargetID)
	require.Equal(t, alice.ID, edits[0].Actor.ID)
	require.Equal(t, "Alice Renamed", edits[0].Update["fullName"])
}

func TestUpdateSelfRoleRequiresManageUsers(t *testing.T) {
	fx := newUserFixture()
	alice := fx.seedUser(t, "u-alice", "alice@example.com", model.RoleCustomer)
	actor := identityFor(alice, map[string]bool{})

	_, err := fx.service.UpdateSelf(context.Background(), actor, UpdateUserRequest{
		Role: model.RoleList{model.RoleAdmin},
	})
	require.Error(t, err)
	require.Equal(t, "You do not have permission to change your role!", err.Error())
	require.Equal(t, http.StatusForbidden, common.HTTPStatusFromError(err))

	// Nothing persisted, nothing audited.
	stored, findErr := fx.users.FindByID(context.Background(), alice.ID)
	require.NoError(t, findErr)
	require.Equal(t, []string{model.RoleCustomer}, stored.Role)
	require.Empty(t, fx.edits.all())
}

func TestUpdateSelfRoleWithManageUsersReissuesWithNewPermissions(t *testing.T) {
	fx := newUserFixture(
		&model.Role{Name: "manager", Permissions: map[string]bool{"updatePet": true}},
	)
	admin := fx.seedUser(t, "u-admin", "admin@example.com", model.RoleAdmin)
	actor := identityFor(admin, map[string]bool{model.PermManageUsers: true})

	result, err := fx.service.UpdateSelf(context.Background(), actor, UpdateUserRequest{
		Role: model.RoleList{"manager"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	stored, err := fx.users.FindByID(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"manager"}, stored.Role)

	// The reissued token carries the permissions of the new role.
	identity, err := fx.tokens.Decode(context.Background(), result.Token)
	require.NoError(t, err)
	require.Equal(t, []string{"manager"}, identity.Role)
	require.True(t, identity.Permissions["updatePet"])
	require.False(t, identity.Permissions[model.PermManageUsers])
}

func TestUpdateUserByAdminDoesNotReissueForOthers(t *testing.T) {
	fx := newUserFixture()
	admin := fx.seedUser(t, "u-admin", "admin@example.com", model.RoleAdmin)
	alice := fx.seedUser(t, "u-alice", "alice@example.com", model.RoleCustomer)
	actor := identityFor(admin, map[string]bool{model.PermManageUsers: true})

	result, err := fx.service.UpdateUser(context.Background(), actor, alice.ID, UpdateUserRequest{
		Role: model.RoleList{"employee"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Token, "no reissue when editing another user")

	stored, err := fx.users.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"employee"}, stored.Role)
	require.Equal(t, admin.ID, stored.LastUpdatedBy.ID)

	edits := fx.edits.all()
	require.Len(t, edits, 1)
	require.Equal(t, admin.ID, edits[0].Actor.ID)
}

func TestUpdateUserSelfTargetReissues(t *testing.T) {
	fx := newUserFixture()
	admin := fx.seedUser(t, "u-admin", "admin@example.com", model.RoleAdmin)
	actor := identityFor(admin, map[string]bool{model.PermManageUsers: true})

	result, err := fx.service.UpdateUser(context.Background(), actor, admin.ID, UpdateUserRequest{
		FullName: strPtr("Root Admin"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token, "admin editing themself gets a fresh token")
}

func TestUpdateUserNotFound(t *testing.T) {
	fx := newUserFixture()
	admin := fx.seedUser(t, "u-admin", "admin@example.com", model.RoleAdmin)
	actor := identityFor(admin, map[string]bool{model.PermManageUsers: true})

	_, err := fx.service.UpdateUser(context.Background(), actor, "u-missing", UpdateUserRequest{
		FullName: strPtr("Ghost"),
	})
	require.Error(t, err)
	require.Equal(t, "User not found!", err.Error())
	require.Equal(t, http.StatusNotFound, common.HTTPStatusFromError(err))
}

func TestUpdateSelfEmptyBodyIsNoOp(t *testing.T) {
	fx := newUserFixture()
	alice := fx.seedUser(t, "u-alice", "alice@example.com", model.RoleCustomer)
	actor := identityFor(alice, map[string]bool{})

	result, err := fx.service.UpdateSelf(context.Background(), actor, UpdateUserRequest{})
	require.NoError(t, err)
	require.Equal(t, "User Updated!", result.Message)
	require.Empty(t, result.Token)
	require.Empty(t, fx.edits.all())
}

func TestUpdateSelfAuditFailureDoesNotRollBack(t *testing.T) {
	fx := newUserFixture()
	alice := fx.seedUser(t, "u-alice", "alice@example.com", model.RoleCustomer)
	actor := identityFor(alice, map[string]bool{})
	fx.edits.fail = true

	result, err := fx.service.UpdateSelf(context.Background(), actor, UpdateUserRequest{
		FullName: strPtr("Still Applied"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	stored, err := fx.users.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, "Still Applied", stored.FullName)
}

func TestUpdateSelfPasswordRehashed(t *testing.T) {
	fx := newUserFixture()
	alice := fx.seedUser(t, "u-alice", "alice@example.com", model.RoleCustomer)
	actor := identityFor(alice, map[string]bool{})

	_, err := fx.service.UpdateSelf(context.Background(), actor, UpdateUserRequest{
		Password: strPtr("new-password-42"),
	})
	require.NoError(t, err)

	stored, err := fx.users.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.HashedPassword)
	require.NotEqual(t, "new-password-42", stored.HashedPassword)

	// The audit record stores the hash, never the plaintext.
	edits := fx.edits.all()
	require.Len(t, edits, 1)
	require.Equal(t, stored.HashedPassword, edits[0].Update["password"])
}
