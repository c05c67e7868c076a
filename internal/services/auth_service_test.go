package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/urlsentry/urlsentry-backend/internal/config"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
	"github.com/urlsentry/urlsentry-backend/internal/models"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)

	reg, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.User.Role != models.RoleUser {
		t.Errorf("Role = %q, want user", reg.User.Role)
	}
	if reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Error("Register() returned empty token pair")
	}

	login, err := svc.Login(&dto.LoginRequest{Email: "a@b.test", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("Login user ID = %s, want %s", login.User.ID, reg.User.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "short"}); err == nil {
		t.Error("Register() with short password, want error")
	}
	if _, err := svc.Register(&dto.RegisterRequest{Password: "hunter2hunter2"}); err == nil {
		t.Error("Register() without email, want error")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "hunter2hunter2"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "otherpassword"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "hunter2hunter2"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(&dto.LoginRequest{Email: "a@b.test", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(&dto.LoginRequest{Email: "nobody@b.test", Password: "hunter2hunter2"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAccessTokenClaims(t *testing.T) {
	svc := newTestAuthService(t)

	reg, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatal(err)
	}

	token, err := jwt.Parse(reg.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("access token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != reg.User.ID.String() {
		t.Errorf("sub = %v, want %s", claims["sub"], reg.User.ID)
	}
	if claims["role"] != models.RoleUser {
		t.Errorf("role = %v, want user", claims["role"])
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newTestAuthService(t)

	reg, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.RefreshToken == reg.RefreshToken {
		t.Error("Refresh() did not rotate the refresh token")
	}

	// The consumed token is revoked and cannot be replayed.
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh() replay error = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc := newTestAuthService(t)

	reg, err := svc.Register(&dto.RegisterRequest{Email: "a@b.test", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(&dto.LogoutRequest{RefreshToken: reg.RefreshToken}); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh() after logout error = %v, want ErrInvalidToken", err)
	}
}
