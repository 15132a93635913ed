package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devlog/devlog/internal/domain"
	"github.com/devlog/devlog/internal/ports"
	"github.com/devlog/devlog/internal/service/logger"
	"github.com/devlog/devlog/pkg/apperror"
)

// RegisterRequest carries a new account's details
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	User        *domain.User `json:"user"`
}

// AuthUseCase handles registration, login and identity lookup
type AuthUseCase struct {
	userRepo        ports.UserRepository
	tokenService    ports.TokenService
	passwordService ports.PasswordService
	rateLimiter     ports.RateLimiter
	logger          logger.Logger
	accessTokenTTL  time.Duration
	loginAttempts   int
	loginWindow     time.Duration
	blockDuration   time.Duration
}

func NewAuthUseCase(
	userRepo ports.UserRepository,
	tokenService ports.TokenService,
	passwordService ports.PasswordService,
	rateLimiter ports.RateLimiter,
	log logger.Logger,
	accessTokenTTL time.Duration,
	loginAttempts int,
	loginWindow time.Duration,
	blockDuration time.Duration,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:        userRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
		rateLimiter:     rateLimiter,
		logger:          log,
		accessTokenTTL:  accessTokenTTL,
		loginAttempts:   loginAttempts,
		loginWindow:     loginWindow,
		blockDuration:   blockDuration,
	}
}

// Register creates a new account. Unknown roles default to developer.
func (uc *AuthUseCase) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Name == "" {
		return nil, apperror.Validation("name is required")
	}
	if req.Email == "" {
		return nil, apperror.Validation("email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperror.Validation("password must be at least 8 characters")
	}

	taken, err := uc.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("email already registered")
	}

	hash, err := uc.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(uuid.New().String(), req.Name, req.Email, hash, req.Role)
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ports.ErrEmailTaken) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "register", user.ID, true, map[string]interface{}{
		"role": user.Role,
	})

	return user, nil
}

// Login verifies credentials and issues an access token. Repeated
// failures against one email are throttled through the rate limiter.
func (uc *AuthUseCase) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	limitKey := "login:" + req.Email
	if uc.rateLimiter != nil {
		blocked, err := uc.rateLimiter.IsBlocked(ctx, limitKey)
		if err != nil {
			uc.logger.Error(ctx, "failed to check block status", err, map[string]interface{}{
				"email": req.Email,
			})
		}
		if blocked {
			logger.LogAuthEvent(ctx, uc.logger, "login_blocked", "", false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, apperror.Forbidden("too many failed attempts, try again later")
		}
	}

	user, err := uc.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			uc.recordFailedAttempt(ctx, limitKey)
			logger.LogAuthEvent(ctx, uc.logger, "login_failed", "", false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, apperror.Unauthenticated("invalid email or password")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	valid, err := uc.passwordService.VerifyPassword(req.Password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("password verification failed: %w", err)
	}
	if !valid {
		uc.recordFailedAttempt(ctx, limitKey)
		logger.LogAuthEvent(ctx, uc.logger, "login_failed", user.ID, false, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	accessToken, err := uc.tokenService.GenerateAccessToken(ports.TokenClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "login", user.ID, true, nil)

	return &LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(uc.accessTokenTTL.Seconds()),
		User:        user,
	}, nil
}

// Me resolves the caller's account
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("no identity resolved")
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (uc *AuthUseCase) recordFailedAttempt(ctx context.Context, key string) {
	if uc.rateLimiter == nil {
		return
	}
	if err := uc.rateLimiter.Increment(ctx, key, uc.loginWindow); err != nil {
		uc.logger.Error(ctx, "failed to increment login attempts", err, map[string]interface{}{
			"key": key,
		})
		return
	}
	allowed, err := uc.rateLimiter.CheckLimit(ctx, key, uc.loginAttempts, uc.loginWindow)
	if err != nil {
		uc.logger.Error(ctx, "failed to check login attempts", err, map[string]interface{}{
			"key": key,
		})
		return
	}
	if !allowed {
		_ = uc.rateLimiter.Block(ctx, key, uc.blockDuration)
	}
}
