package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/internal/auth"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/restaurants"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	pkgAuth "github.com/mealbridge/mealbridge-backend/pkg/auth"
	"github.com/mealbridge/mealbridge-backend/pkg/auth/session"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
	"github.com/mealbridge/mealbridge-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{}, nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", session.ErrInvalidRefreshToken
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubRestaurantService struct{}

func (stubRestaurantService) Register(ctx context.Context, ownerID uuid.UUID, input restaurants.RegisterInput) (*restaurants.RestaurantDTO, error) {
	return &restaurants.RestaurantDTO{}, nil
}

func (stubRestaurantService) GetByID(ctx context.Context, id uuid.UUID) (*restaurants.RestaurantDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
}

func (stubRestaurantService) List(ctx context.Context) ([]restaurants.RestaurantDTO, error) {
	return nil, nil
}

func (stubRestaurantService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]restaurants.RestaurantDTO, error) {
	return nil, nil
}

func (stubRestaurantService) Update(ctx context.Context, actor restaurants.Actor, id uuid.UUID, input restaurants.UpdateInput) (*restaurants.RestaurantDTO, error) {
	return &restaurants.RestaurantDTO{}, nil
}

func (stubRestaurantService) Delete(ctx context.Context, actor restaurants.Actor, id uuid.UUID) error {
	return nil
}

type stubDonationService struct{}

func (stubDonationService) Create(ctx context.Context, actor donations.Actor, input donations.CreateInput) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{}, nil
}

func (stubDonationService) GetByID(ctx context.Context, id uuid.UUID) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{}, nil
}

func (stubDonationService) ListAvailable(ctx context.Context, params pagination.Params, filters donations.AvailableFilters) (*donations.DonationList, error) {
	return &donations.DonationList{}, nil
}

func (stubDonationService) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*donations.DonationList, error) {
	return &donations.DonationList{}, nil
}

func (stubDonationService) ListMine(ctx context.Context, actor donations.Actor, params pagination.Params) (*donations.DonationList, error) {
	return &donations.DonationList{}, nil
}

func (stubDonationService) ListMyReservations(ctx context.Context, actor donations.Actor, params pagination.Params) (*donations.DonationList, error) {
	return &donations.DonationList{}, nil
}

func (stubDonationService) Dashboard(ctx context.Context, actor donations.Actor) (*donations.DashboardStats, error) {
	return &donations.DashboardStats{}, nil
}

func (stubDonationService) Publish(ctx context.Context, actor donations.Actor, id uuid.UUID) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{}, nil
}

func (stubDonationService) Reserve(ctx context.Context, actor donations.Actor, id uuid.UUID) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{}, nil
}

func (stubDonationService) Collect(ctx context.Context, actor donations.Actor, id uuid.UUID) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{}, nil
}

func (stubDonationService) Complete(ctx context.Context, actor donations.Actor, id uuid.UUID) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "mealbridge"
	cfg.JWT.ExpirationMinutes = 30
	return cfg
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionManager{},
		stubAuthService{},
		stubRegisterService{},
		(*users.Repository)(nil),
		stubRestaurantService{},
		stubDonationService{},
	)
}

func mintRouterToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-MealBridge-Env") != "test" {
		t.Fatal("expected environment header")
	}
}

func TestPublicRoutesReachableWithoutToken(t *testing.T) {
	router := newTestRouter(testConfig())
	paths := []string{
		"/api/public/ping",
		"/api/restaurants",
		"/api/donations/available",
		"/api/donations/restaurant/" + uuid.NewString(),
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestLoginRouteHitsAuthService(t *testing.T) {
	router := newTestRouter(testConfig())
	body := strings.NewReader(`{"email":"donor@example.com","password":"nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", body)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/ping"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodGet, "/api/restaurants/mine"},
		{http.MethodGet, "/api/donations"},
		{http.MethodGet, "/api/donations/dashboard"},
		{http.MethodPut, "/api/donations/reserve/" + uuid.NewString()},
	}
	for _, tt := range paths {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tt.method, tt.path, resp.Code)
		}
	}
}

func TestPrivateGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := mintRouterToken(t, cfg, enums.RoleReceiver)

	req := httptest.NewRequest(http.MethodGet, "/api/donations/my-reservations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRefreshRouteRejectsStaleToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := mintRouterToken(t, cfg, enums.RoleDonor)

	body := strings.NewReader(`{"refresh_token":"stale"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/refresh", body)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
