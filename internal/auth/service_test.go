package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/wirasakti/partmap/pkg/auth"
	"github.com/wirasakti/partmap/pkg/config"
	"github.com/wirasakti/partmap/pkg/db/models"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
	"github.com/wirasakti/partmap/pkg/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user *models.User
}

func (s stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error {
	return nil
}

func (s stubUserRepo) UpdateProfile(context.Context, uuid.UUID, string) error {
	return nil
}

func (s stubUserRepo) UpdatePasswordHash(context.Context, uuid.UUID, string) error {
	return nil
}

type stubSessionManager struct {
	refreshToken string
	remember     bool
	revokedID    string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string, remember bool) (string, error) {
	s.remember = remember
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if provided != s.refreshToken {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	return uuid.NewString(), "rotated-token", nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revokedID = accessID
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "partmap",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubSessionManager) {
	t.Helper()
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUserRepo{user: user},
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessionMgr
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Email:        "pic@example.com",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Part PIC",
		Role:         "user",
		IsActive:     true,
	}
}

func TestServiceLogin(t *testing.T) {
	password := "layout-secret"
	user := testUser(t, password)
	svc, sessionMgr := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != pkgAuth.RoleUser {
		t.Fatalf("expected user role claim, got %s", claims.Role)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if sessionMgr.remember {
		t.Fatalf("expected short session without remember flag")
	}
}

func TestServiceLoginRememberExtendsSession(t *testing.T) {
	password := "layout-secret"
	user := testUser(t, password)
	svc, sessionMgr := buildTestService(t, user)

	if _, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
		Remember: true,
	}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !sessionMgr.remember {
		t.Fatalf("expected remember flag forwarded to the session manager")
	}
}

func TestServiceLoginIndistinguishableFailures(t *testing.T) {
	user := testUser(t, "right-password")
	svc, _ := buildTestService(t, user)

	_, wrongPassErr := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	_, unknownEmailErr := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	for _, err := range []error{wrongPassErr, unknownEmailErr} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("expected uniform message, got %q", typed.Message())
		}
	}
}

func TestServiceLoginInactiveUser(t *testing.T) {
	password := "layout-secret"
	user := testUser(t, password)
	user.IsActive = false
	svc, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}
}

func TestServiceChangePasswordRequiresCurrent(t *testing.T) {
	password := "layout-secret"
	user := testUser(t, password)
	svc, _ := buildTestService(t, user)

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		CurrentPassword: "not-it",
		NewPassword:     "replacement-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		CurrentPassword: password,
		NewPassword:     "replacement-pass",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}
}
