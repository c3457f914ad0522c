package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/config"
	pkgmodels "github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/security"
)

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestLocalProviderAuthenticates(t *testing.T) {
	repo := newStubUserRepository()
	password := "Secret123!"
	user := &pkgmodels.User{
		ID:           uuid.New(),
		Email:        "donor@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.RoleDonor,
		IsActive:     true,
	}
	repo.data[user.Email] = user

	provider, err := NewCredentialProvider(config.AuthProviderConfig{Provider: config.AuthProviderLocal}, repo)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	got, err := provider.Authenticate(context.Background(), LoginRequest{Email: " Donor@Example.com ", Password: password})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("wrong user returned")
	}
}

func TestLocalProviderRejectsWrongPassword(t *testing.T) {
	repo := newStubUserRepository()
	user := &pkgmodels.User{
		ID:           uuid.New(),
		Email:        "donor@example.com",
		PasswordHash: mustHashPassword(t, "correct-password"),
		IsActive:     true,
	}
	repo.data[user.Email] = user

	provider, err := NewCredentialProvider(config.AuthProviderConfig{Provider: config.AuthProviderLocal}, repo)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	cases := []LoginRequest{
		{Email: user.Email, Password: "wrong-password"},
		{Email: "unknown@example.com", Password: "correct-password"},
		{Email: user.Email},
	}
	for _, req := range cases {
		_, err := provider.Authenticate(context.Background(), req)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %+v, got %v", req, err)
		}
	}
}

func mintFederatedToken(t *testing.T, cfg config.AuthProviderConfig, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	if cfg.FederatedIssuer != "" {
		claims["iss"] = cfg.FederatedIssuer
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.FederatedSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func federatedTestConfig() config.AuthProviderConfig {
	return config.AuthProviderConfig{
		Provider:         config.AuthProviderFederated,
		FederatedSecret:  "upstream-secret",
		FederatedIssuer:  "upstream-idp",
		FederatedRoleKey: "role",
	}
}

func TestFederatedProviderReturnsExistingUser(t *testing.T) {
	cfg := federatedTestConfig()
	repo := newStubUserRepository()
	user := &pkgmodels.User{
		ID:       uuid.New(),
		Email:    "known@example.com",
		Role:     enums.RoleReceiver,
		IsActive: true,
	}
	repo.data[user.Email] = user

	provider, err := NewCredentialProvider(cfg, repo)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	token := mintFederatedToken(t, cfg, jwt.MapClaims{"email": "Known@Example.com"})
	got, err := provider.Authenticate(context.Background(), LoginRequest{Token: token})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("wrong user returned")
	}
	if repo.created != nil {
		t.Fatalf("existing user should not be re-provisioned")
	}
}

func TestFederatedProviderProvisionsNewUser(t *testing.T) {
	cfg := federatedTestConfig()
	repo := newStubUserRepository()

	provider, err := NewCredentialProvider(cfg, repo)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	token := mintFederatedToken(t, cfg, jwt.MapClaims{
		"email": "fresh@example.com",
		"name":  "Fresh Volunteer",
		"role":  "donor",
	})
	got, err := provider.Authenticate(context.Background(), LoginRequest{Token: token})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if repo.created == nil {
		t.Fatalf("expected auto-provisioned user")
	}
	if got.Role != enums.RoleDonor {
		t.Fatalf("role claim not honored, got %s", got.Role)
	}
	if got.Name != "Fresh Volunteer" {
		t.Fatalf("name claim not honored, got %s", got.Name)
	}
}

func TestFederatedProviderRejectsBadToken(t *testing.T) {
	cfg := federatedTestConfig()
	repo := newStubUserRepository()
	provider, err := NewCredentialProvider(cfg, repo)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	other := cfg
	other.FederatedSecret = "other-secret"
	forged := mintFederatedToken(t, other, jwt.MapClaims{"email": "x@example.com"})

	for _, token := range []string{"", "not-a-jwt", forged} {
		_, err := provider.Authenticate(context.Background(), LoginRequest{Token: token})
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for token %q, got %v", token, err)
		}
	}
}
