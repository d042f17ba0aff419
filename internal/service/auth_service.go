package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/internal/authz"
	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/internal/repository"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/Baaaki/inkwell/internal/utils"
	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// Same message for unknown login and wrong password
const invalidCredentials = "invalid credentials"

type RegisterInput struct {
	Username    string `validate:"min=3,max=50"`
	Email       string `validate:"required,email,max=100"`
	Password    string `validate:"min=6,max=128"`
	DisplayName string `validate:"max=100"`
}

var fieldLabels = map[string]string{
	"Username":    "username",
	"Email":       "email",
	"Password":    "password",
	"DisplayName": "display name",
}

type AuthService struct {
	userRepo *repository.UserRepository
	sessions *session.Manager
}

func NewAuthService(userRepo *repository.UserRepository, sessions *session.Manager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
	}
}

// Register creates a regular user and logs them in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	start := time.Now()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	logger.Log.Debug("Processing user registration",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
	)

	// 1. Validate input
	if err := validateRegisterInput(in); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", in.Username),
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 2. Check if username or email is taken
	existingUser, err := s.userRepo.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", err
	}
	if existingUser != nil {
		logger.Log.Warn("Username already exists", zap.String("username", in.Username))
		return nil, "", apperr.Validation("username already exists")
	}

	existingUser, err = s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if existingUser != nil {
		logger.Log.Warn("Email already exists", zap.String("email", in.Email))
		return nil, "", apperr.Validation("email already exists")
	}

	// 3. Hash password (Argon2)
	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, "", err
	}
	hashDuration := time.Since(hashStart)

	// 4. Create user
	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Username
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Log.Warn("Duplicate user on insert", zap.String("username", in.Username))
			return nil, "", apperr.Validation("username or email already exists")
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 5. Start session
	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("User registered successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// Login accepts a username or an email
func (s *AuthService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	start := time.Now()
	login = strings.TrimSpace(login)

	if login == "" || password == "" {
		return nil, "", apperr.Validation("username and password are required")
	}

	// 1. Find user
	user, err := s.userRepo.GetUserByLogin(ctx, login)
	if err != nil {
		logger.Log.Error("Failed to look up user", zap.String("login", login), zap.Error(err))
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found", zap.String("login", login))
		return nil, "", apperr.Unauthenticated(invalidCredentials)
	}

	// 2. Verify password
	verifyStart := time.Now()
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}
	verifyDuration := time.Since(verifyStart)

	if !valid {
		logger.Log.Warn("Login failed: invalid password", zap.Uint("user_id", user.ID))
		return nil, "", apperr.Unauthenticated(invalidCredentials)
	}

	// 3. Start session
	token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("password_verify_duration", verifyDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// Logout ends the session; an unknown token is not an error
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		logger.Log.Error("Failed to destroy session", zap.Error(err))
		return err
	}
	return nil
}

func (s *AuthService) Me(identity *session.Identity) (*session.Identity, error) {
	if err := authz.RequireAuthenticated(identity).Err(); err != nil {
		return nil, err
	}
	return identity, nil
}

// validateRegisterInput reports the first failing rule as a Validation error
func validateRegisterInput(in RegisterInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := fieldLabels[fe.Field()]
	switch fe.Tag() {
	case "min":
		return apperr.Validation(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apperr.Validation(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "email":
		return apperr.Validation("invalid email format")
	default:
		return apperr.Validation(field + " is required")
	}
}
