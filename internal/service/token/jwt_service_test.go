package token

import (
	"testing"
	"time"

	"github.com/devlog/devlog/internal/domain"
	"github.com/devlog/devlog/internal/ports"
)

func TestJWTService(t *testing.T) {
	service, err := NewJWTService("test-secret-key", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	claims := ports.TokenClaims{
		UserID: "user-123",
		Name:   "Alice Smith",
		Email:  "alice@example.com",
		Role:   domain.RoleManager,
	}

	t.Run("GenerateAccessToken", func(t *testing.T) {
		tokenString, err := service.GenerateAccessToken(claims)
		if err != nil {
			t.Errorf("Failed to generate token: %v", err)
		}
		if tokenString == "" {
			t.Error("Token should not be empty")
		}
	})

	t.Run("ValidateAccessToken", func(t *testing.T) {
		tokenString, err := service.GenerateAccessToken(claims)
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}

		parsed, err := service.ValidateAccessToken(tokenString)
		if err != nil {
			t.Fatalf("Failed to validate token: %v", err)
		}
		if parsed.UserID != claims.UserID {
			t.Errorf("Expected user id %s, got %s", claims.UserID, parsed.UserID)
		}
		if parsed.Role != claims.Role {
			t.Errorf("Expected role %s, got %s", claims.Role, parsed.Role)
		}
		if parsed.Email != claims.Email {
			t.Errorf("Expected email %s, got %s", claims.Email, parsed.Email)
		}
	})

	t.Run("ValidateGarbageToken", func(t *testing.T) {
		_, err := service.ValidateAccessToken("not-a-token")
		if err != ErrInvalidToken {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("ValidateTokenSignedWithOtherSecret", func(t *testing.T) {
		other, err := NewJWTService("different-secret", time.Hour)
		if err != nil {
			t.Fatalf("Failed to create service: %v", err)
		}
		tokenString, err := other.GenerateAccessToken(claims)
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}

		_, err = service.ValidateAccessToken(tokenString)
		if err != ErrInvalidToken {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("ValidateExpiredToken", func(t *testing.T) {
		expired, err := NewJWTService("test-secret-key", -time.Minute)
		if err != nil {
			t.Fatalf("Failed to create service: %v", err)
		}
		tokenString, err := expired.GenerateAccessToken(claims)
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}

		_, err = service.ValidateAccessToken(tokenString)
		if err != ErrTokenExpired {
			t.Errorf("Expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	if err == nil {
		t.Error("Expected error for empty secret")
	}
}
