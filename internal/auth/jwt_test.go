package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("Failed to initialize secret: %v", err)
	}

	tokenString, err := GenerateJWT(42, "alice@example.com")

	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	token, err := VerifyJWT(tokenString)

	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		t.Fatal("Expected map claims")
	}

	if userID, ok := claims["user_id"].(float64); !ok || uint(userID) != 42 {
		t.Errorf("Expected user_id 42, got %v", claims["user_id"])
	}

	if email, ok := claims["email"].(string); !ok || email != "alice@example.com" {
		t.Errorf("Expected email claim, got %v", claims["email"])
	}
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("Failed to initialize secret: %v", err)
	}

	if _, err := VerifyJWT("not-a-token"); err == nil {
		t.Error("Expected garbage token to be rejected")
	}
}

func TestInitJWTSecretMissing(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if err := InitJWTSecret(); err == nil {
		t.Error("Expected error when JWT_SECRET is unset")
	}
}
