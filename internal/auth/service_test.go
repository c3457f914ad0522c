package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/mealbridge/mealbridge-backend/pkg/auth"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

type stubProvider struct {
	user *models.User
	err  error
}

func (s *stubProvider) Authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubLoginUserRepo struct {
	lastLoginID uuid.UUID
	lastLoginAt time.Time
}

func (s *stubLoginUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (s *stubLoginUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginID = id
	s.lastLoginAt = at
	return nil
}

type stubSessionManager struct {
	refreshToken string
	accessID     string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.accessID = accessID
	return s.refreshToken, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "mealbridge",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T, provider CredentialProvider) (Service, *stubLoginUserRepo, *stubSessionManager) {
	t.Helper()
	repo := &stubLoginUserRepo{}
	sessions := &stubSessionManager{refreshToken: "refresh-opaque"}
	svc, err := NewService(ServiceParams{
		Provider:       provider,
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, sessions
}

func TestServiceLoginMintsTokens(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "donor@example.com",
		Role:     enums.RoleDonor,
		IsActive: true,
	}
	svc, repo, sessions := buildTestService(t, &stubProvider{user: user})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.RoleDonor {
		t.Fatalf("expected donor role claim, got %s", claims.Role)
	}
	if claims.ID != sessions.accessID {
		t.Fatalf("session keyed on %s, token carries %s", sessions.accessID, claims.ID)
	}
	if resp.RefreshToken != "refresh-opaque" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if repo.lastLoginID != user.ID {
		t.Fatalf("last login not recorded for user")
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatalf("response user missing last login")
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	user := &models.User{
		ID:    uuid.New(),
		Email: "inactive@example.com",
		Role:  enums.RoleReceiver,
	}
	svc, repo, _ := buildTestService(t, &stubProvider{user: user})

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pw"})
	if err == nil {
		t.Fatalf("expected inactive user rejection")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if repo.lastLoginID != uuid.Nil {
		t.Fatalf("last login should not be recorded")
	}
}

func TestServiceLoginPropagatesProviderError(t *testing.T) {
	provider := &stubProvider{err: pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)}
	svc, _, _ := buildTestService(t, provider)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "x@example.com", Password: "bad"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
