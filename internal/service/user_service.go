package service

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"time"

	"dealership/internal/apperror"
	"dealership/internal/model"
	"dealership/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleManager || role == model.RoleStaff
}

// --- Implementation ---

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	if !validRole(req.Role) {
		return UserResponse{}, apperror.Validationf("role must be admin, manager or staff")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return UserResponse{}, apperror.Validationf("invalid email format")
	}
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return UserResponse{}, apperror.Conflictf("username already exists")
	}
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, apperror.Conflictf("email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return UserResponse{}, fmt.Errorf("failed to create user: %w", apperror.FromDB(err, "user"))
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	uid, err := parseID(id, "user")
	if err != nil {
		return UserResponse{}, err
	}
	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return UserResponse{}, apperror.FromDB(err, "user")
	}

	if req.Role != nil {
		if !validRole(*req.Role) {
			return UserResponse{}, apperror.Validationf("role must be admin, manager or staff")
		}
		user.Role = *req.Role
	}
	if req.Username != nil && *req.Username != user.Username {
		if _, lookupErr := s.userRepo.GetByUsername(ctx, *req.Username); lookupErr == nil {
			return UserResponse{}, apperror.Conflictf("username already exists")
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
			return UserResponse{}, apperror.Validationf("invalid email format")
		}
		if _, lookupErr := s.userRepo.GetByEmail(ctx, *req.Email); lookupErr == nil {
			return UserResponse{}, apperror.Conflictf("email already exists")
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return UserResponse{}, apperror.Validationf("password must be at least 6 characters")
		}
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return UserResponse{}, fmt.Errorf("failed to hash password: %w", hashErr)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return UserResponse{}, fmt.Errorf("failed to update user: %w", apperror.FromDB(err, "user"))
	}
	return toUserResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	uid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, uid); err != nil {
		return apperror.FromDB(err, "user")
	}
	return s.userRepo.Delete(ctx, uid)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return TokenResponse{}, apperror.Validationf("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return TokenResponse{}, apperror.Validationf("invalid username or password")
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
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return TokenResponse{Token: signed}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (UserResponse, error) {
	uid, err := parseID(id, "user")
	if err != nil {
		return UserResponse{}, err
	}
	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return UserResponse{}, apperror.FromDB(err, "user")
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, toUserResponse(&users[i]))
	}
	return res, total, nil
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
