package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"estate-backend/internal/model"
	"estate-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role"`
	Password string `json:"password" binding:"omitempty,min=6"`
	IsActive *bool  `json:"is_active"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse omits sensitive fields such as the password hash.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type UserService interface {
	CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actorID, id string, req UpdateUserRequest) (UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id string) error
	SeedAdmin(ctx context.Context) error
}

type userService struct {
	repo      repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewUserService(repo repository.UserRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) UserService {
	return &userService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func validateRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleAccountant
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, error) {
	if !validateRole(req.Role) {
		return UserResponse{}, errors.New("invalid role: must be admin or accountant")
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return UserResponse{}, errors.New("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, errors.New("failed to hash password")
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
		IsActive: true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}
		entry := newAuditEntry(actorID, model.ActionCreateUser, user.ID.String(), user.Username, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return UserResponse{}, err
	}

	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return TokenResponse{}, errors.New("invalid username or password")
	}
	if !user.IsActive {
		return TokenResponse{}, errors.New("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return TokenResponse{}, errors.New("invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return TokenResponse{}, errors.New("failed to generate token")
	}

	return TokenResponse{Token: tokenString, User: toUserResponse(user)}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (UserResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return UserResponse{}, fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return UserResponse{}, errors.New("user not found")
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, id string, req UpdateUserRequest) (UserResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return UserResponse{}, fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return UserResponse{}, errors.New("user not found")
	}

	if req.Role != "" {
		if !validateRole(req.Role) {
			return UserResponse{}, errors.New("invalid role: must be admin or accountant")
		}
		user.Role = req.Role
	}

	if req.Username != "" && req.Username != user.Username {
		if _, findErr := s.repo.FindByUsername(ctx, req.Username); findErr == nil {
			return UserResponse{}, errors.New("username already exists")
		}
		user.Username = req.Username
	}

	if req.Email != "" {
		user.Email = req.Email
	}

	if req.Password != "" {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return UserResponse{}, errors.New("failed to hash password")
		}
		user.Password = string(hashed)
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.repo.Update(txCtx, user); updateErr != nil {
			return fmt.Errorf("failed to update user: %w", updateErr)
		}
		entry := newAuditEntry(actorID, model.ActionUpdateUser, user.ID.String(), user.Username, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
	if err != nil {
		return UserResponse{}, err
	}

	return toUserResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return errors.New("user not found")
	}
	if actorID == user.ID.String() {
		return errors.New("cannot delete your own account")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.repo.Delete(txCtx, uid); delErr != nil {
			return fmt.Errorf("failed to delete user: %w", delErr)
		}
		entry := newAuditEntry(actorID, model.ActionDeleteUser, user.ID.String(), user.Username, nil)
		return s.auditRepo.Log(txCtx, entry)
	})
}

// SeedAdmin bootstraps a default admin account when the users table is
// empty, so a fresh deployment can log in. Credentials come from env with
// development fallbacks.
func (s *userService) SeedAdmin(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("SEED_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	admin := &model.User{
		Username: username,
		Email:    username + "@localhost",
		Password: string(hashed),
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	return s.repo.Create(ctx, admin)
}
