package service_test

import (
	"context"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/pagination"
	"backend/pkg/password"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) seed(fullName, email, plaintext, role string) *model.User {
	hash, err := password.Hash(plaintext)
	if err != nil {
		panic(err)
	}
	u := &model.User{
		FullName:  fullName,
		Email:     email,
		Password:  hash,
		Role:      role,
		Extras:    map[string]interface{}{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByRole(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) EmailTakenByOther(_ context.Context, email string, excludeID uint) (bool, error) {
	for _, u := range f.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(_ context.Context, p pagination.Params) ([]model.User, int64, error) {
	all := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if p.Offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := p.Offset + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[p.Offset:end], total, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, u := range f.users {
		if u.Email == user.Email && u.ID != user.ID {
			return repository.ErrDuplicateEmail
		}
	}
	user.UpdatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// fakePublisher records published lifecycle events.
type fakePublisher struct {
	events []string
}

func (f *fakePublisher) Publish(event string, _ interface{}) {
	f.events = append(f.events, event)
}
