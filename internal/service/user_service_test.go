package service

import (
	"context"
	"os"
	"testing"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (UserService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	userRepo := repository.NewUserRepository(env.db)
	svc := NewUserService(userRepo, env.auditRepo, repository.NewTransactionManager(env.db))
	return svc, env
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "", CreateUserRequest{
		Username: "accountant1",
		Email:    "acc@example.com",
		Password: "secret123",
		Role:     model.RoleAccountant,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	res, err := svc.Login(ctx, LoginRequest{Username: "accountant1", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, created.ID, res.User.ID)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	// the token carries the subject and role claims
	parsed, err := jwt.Parse(res.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, created.ID, claims["sub"])
	assert.Equal(t, model.RoleAccountant, claims["role"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "", CreateUserRequest{
		Username: "user1",
		Email:    "u1@example.com",
		Password: "secret123",
		Role:     model.RoleAccountant,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "user1", Password: "wrong"})
	require.Error(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "ghost", Password: "secret123"})
	require.Error(t, err)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "", CreateUserRequest{
		Username: "user2",
		Email:    "u2@example.com",
		Password: "secret123",
		Role:     model.RoleAccountant,
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateUser(ctx, "", created.ID, UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "user2", Password: "secret123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.CreateUser(context.Background(), "", CreateUserRequest{
		Username: "user3",
		Email:    "u3@example.com",
		Password: "secret123",
		Role:     "superuser",
	})
	require.Error(t, err)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	req := CreateUserRequest{
		Username: "user4",
		Email:    "u4@example.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	}
	_, err := svc.CreateUser(ctx, "", req)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "", req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "", CreateUserRequest{
		Username: "admin1",
		Email:    "a1@example.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, admin.ID, admin.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "own account")

	other, err := svc.CreateUser(ctx, "", CreateUserRequest{
		Username: "temp",
		Email:    "t@example.com",
		Password: "secret123",
		Role:     model.RoleAccountant,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, admin.ID, other.ID))
}

func TestSeedAdminOnlyOnEmptyTable(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx))

	res, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role)

	// a second seed run must not add another account
	require.NoError(t, svc.SeedAdmin(ctx))
	_, total, err := svc.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
