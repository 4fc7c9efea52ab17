package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"petshop/internal/common"
	"petshop/internal/domain/model"
	"petshop/internal/domain/repository"
)

// In-memory repositories shared by the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == strings.ToLower(user.Email) {
			return common.ErrConflict
		}
	}
	stored := *user
	stored.Email = strings.ToLower(user.Email)
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == strings.ToLower(email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, upd repository.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	if upd.HashedPassword != nil {
		user.HashedPassword = *upd.HashedPassword
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Role != nil {
		user.Role = upd.Role
	}
	if upd.LastUpdated != nil {
		user.LastUpdated = upd.LastUpdated
	}
	if upd.LastUpdatedBy != nil {
		user.LastUpdatedBy = upd.LastUpdatedBy
	}
	return nil
}

type fakeRoleRepo struct {
	roles   map[string]*model.Role
	failing map[string]bool
}

func newFakeRoleRepo(roles ...*model.Role) *fakeRoleRepo {
	f := &fakeRoleRepo{roles: map[string]*model.Role{}, failing: map[string]bool{}}
	for _, role := range roles {
		f.roles[role.Name] = role
	}
	return f
}

func (f *fakeRoleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	if f.failing[name] {
		return nil, errors.New("store unavailable")
	}
	role, ok := f.roles[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	return role, nil
}

type fakeEditRepo struct {
	mu    sync.Mutex
	edits []*model.Edit
	fail  bool
}

func (f *fakeEditRepo) Append(ctx context.Context, edit *model.Edit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("audit store unavailable")
	}
	f.edits = append(f.edits, edit)
	return nil
}

func userRoleUpdate(roles ...string) repository.UserUpdate {
	return repository.UserUpdate{Role: roles}
}

func (f *fakeEditRepo) all() []*model.Edit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Edit(nil), f.edits...)
}
