package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/apperr"
	"backend/pkg/pagination"
	"backend/pkg/password"
)

func newUserFixture(t *testing.T) (service.UserService, *fakeUserRepo, *fakePublisher) {
	t.Helper()
	repo := newFakeUserRepo()
	events := &fakePublisher{}
	return service.NewUserService(repo, events), repo, events
}

func TestCreateUser(t *testing.T) {
	svc, repo, events := newUserFixture(t)

	res, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "SecurePass123!",
		Role:     model.RoleDesigner,
	})
	require.NoError(t, err)

	assert.NotZero(t, res.ID)
	assert.Equal(t, "Jane Doe", res.FullName)
	assert.NotNil(t, res.Extras)
	assert.Equal(t, []string{"user.created"}, events.events)

	// The stored password is a hash, never the plaintext.
	stored, err := repo.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "SecurePass123!", stored.Password)
	ok, err := password.Verify("SecurePass123!", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc, _, events := newUserFixture(t)

	_, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "SecurePass123!",
		Role:     "superadmin",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.Status(err))
	assert.Empty(t, events.events)
}

func TestCreateUser_WeakPassword(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "short",
		Role:     model.RoleUser,
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 400, ae.Status)
	// All strength violations are reported at once.
	assert.NotEmpty(t, ae.Details)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleUser)

	_, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		FullName: "Other Jane",
		Email:    "jane@example.com",
		Password: "SecurePass123!",
		Role:     model.RoleUser,
	})
	assert.ErrorIs(t, err, apperr.ErrEmailExists)
}

func TestGetUserByID_NotFound(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.GetUserByID(context.Background(), 999)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestGetUsersByRole(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleDesigner)
	repo.seed("John Roe", "john@example.com", "SecurePass123!", model.RoleSales)
	repo.seed("Mary Sue", "mary@example.com", "SecurePass123!", model.RoleDesigner)

	designers, err := svc.GetUsersByRole(context.Background(), model.RoleDesigner)
	require.NoError(t, err)
	assert.Len(t, designers, 2)

	admins, err := svc.GetUsersByRole(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestListUsers(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	for i := 0; i < 5; i++ {
		repo.seed("User", string(rune('a'+i))+"@example.com", "SecurePass123!", model.RoleUser)
	}

	res, err := svc.ListUsers(context.Background(), pagination.Params{
		Page: 1, Limit: 2, SortBy: "created_at", SortOrder: "desc",
	})
	require.NoError(t, err)

	assert.Len(t, res.Users, 2)
	assert.Equal(t, int64(5), res.Pagination.Total)
	assert.Equal(t, int64(3), res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNextPage)
	assert.False(t, res.Pagination.HasPreviousPage)
}

func TestUpdateUser(t *testing.T) {
	svc, repo, events := newUserFixture(t)
	user := repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleUser)

	res, err := svc.UpdateUser(context.Background(), user.ID, service.UpdateUserRequest{
		FullName: "Jane Q. Doe",
		Role:     model.RoleDesigner,
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Q. Doe", res.FullName)
	assert.Equal(t, model.RoleDesigner, res.Role)
	// Untouched fields survive a partial update.
	assert.Equal(t, "jane@example.com", res.Email)
	assert.Equal(t, []string{"user.updated"}, events.events)
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleUser)
	other := repo.seed("John Roe", "john@example.com", "SecurePass123!", model.RoleUser)

	_, err := svc.UpdateUser(context.Background(), other.ID, service.UpdateUserRequest{
		Email: "jane@example.com",
	})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestUpdateUser_OwnEmailUnchanged(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	user := repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleUser)

	// Re-submitting the current email is not a conflict.
	res, err := svc.UpdateUser(context.Background(), user.ID, service.UpdateUserRequest{
		Email: "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", res.Email)
}

func TestUpdateUser_PasswordRehash(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	user := repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleUser)
	oldHash := user.Password

	_, err := svc.UpdateUser(context.Background(), user.ID, service.UpdateUserRequest{
		Password: "NewSecure456@",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, stored.Password)

	ok, err := password.Verify("NewSecure456@", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateUser_WeakPasswordRejected(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	user := repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleUser)

	_, err := svc.UpdateUser(context.Background(), user.ID, service.UpdateUserRequest{
		Password: "weak",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.Status(err))
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.UpdateUser(context.Background(), 999, service.UpdateUserRequest{FullName: "Nobody"})
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc, repo, events := newUserFixture(t)
	user := repo.seed("Jane Doe", "jane@example.com", "SecurePass123!", model.RoleUser)

	res, err := svc.DeleteUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.ID)
	assert.Equal(t, []string{"user.deleted"}, events.events)

	_, err = svc.GetUserByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestDeleteUser_NotFound(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.DeleteUser(context.Background(), 999)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}
