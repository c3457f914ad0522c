package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/security"
)

// CredentialProvider resolves a login request into an authenticated user
// record. Implementations decide what a credential looks like: the local
// provider checks a stored password hash, the federated provider validates
// an identity token issued elsewhere.
type CredentialProvider interface {
	Authenticate(ctx context.Context, req LoginRequest) (*models.User, error)
}

type providerUserRepo interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// NewCredentialProvider selects the provider backend configured for the
// deployment.
func NewCredentialProvider(cfg config.AuthProviderConfig, repo providerUserRepo) (CredentialProvider, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	switch cfg.Provider {
	case config.AuthProviderLocal:
		return &localProvider{users: repo}, nil
	case config.AuthProviderFederated:
		if cfg.FederatedSecret == "" {
			return nil, fmt.Errorf("federated provider requires a shared secret")
		}
		return &federatedProvider{users: repo, cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}

// localProvider authenticates against password hashes stored on the user row.
type localProvider struct {
	users providerUserRepo
}

func (p *localProvider) Authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// federatedProvider trusts identity tokens minted by an upstream identity
// service and provisions a local user row on first sight.
type federatedProvider struct {
	users providerUserRepo
	cfg   config.AuthProviderConfig
}

func (p *federatedProvider) Authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	claims := jwt.MapClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if p.cfg.FederatedIssuer != "" {
		opts = append(opts, jwt.WithIssuer(p.cfg.FederatedIssuer))
	}
	_, err := jwt.ParseWithClaims(req.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(p.cfg.FederatedSecret), nil
	}, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidCredentialsMessage)
	}

	email := strings.ToLower(strings.TrimSpace(claimString(claims, "email")))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing email claim")
	}

	user, err := p.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	return p.provision(ctx, email, claims)
}

func (p *federatedProvider) provision(ctx context.Context, email string, claims jwt.MapClaims) (*models.User, error) {
	name := strings.TrimSpace(claimString(claims, "name"))
	if name == "" {
		name = email
	}

	role := enums.RoleReceiver
	if raw := claimString(claims, p.cfg.FederatedRoleKey); raw != "" {
		parsed, err := enums.ParseUserRole(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token carries unknown role")
		}
		role = parsed
	}

	user, err := p.users.Create(ctx, users.CreateUserDTO{
		Name:  name,
		Email: email,
		Role:  role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "provision federated user")
	}
	return user, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if key == "" {
		return ""
	}
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
