package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealbridge/mealbridge-backend/api/controllers"
	"github.com/mealbridge/mealbridge-backend/api/middleware"
	"github.com/mealbridge/mealbridge-backend/internal/auth"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/restaurants"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/auth/session"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	userRepo *users.Repository,
	restaurantService restaurants.Service,
	donationService donations.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Get("/public/ping", controllers.PublicPing())

			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
				Post("/users/register", controllers.AuthRegister(registerService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
				Post("/users/login", controllers.AuthLogin(authService, logg))
			r.Post("/users/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
			r.Post("/users/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))

			r.Get("/restaurants", controllers.RestaurantList(restaurantService, logg))
			r.Get("/restaurants/{id}", controllers.RestaurantGet(restaurantService, logg))

			r.Get("/donations/available", controllers.DonationsAvailable(donationService, logg))
			r.Get("/donations/restaurant/{id}", controllers.DonationsByDonor(donationService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Get("/ping", controllers.PrivatePing())
			r.Get("/users/profile", controllers.UserProfile(userRepo, logg))

			r.Get("/restaurants/mine", controllers.RestaurantMine(restaurantService, logg))
			r.Post("/restaurants/register", controllers.RestaurantRegister(restaurantService, logg))
			r.Put("/restaurants/{id}", controllers.RestaurantUpdate(restaurantService, logg))
			r.Delete("/restaurants/{id}", controllers.RestaurantDelete(restaurantService, logg))

			r.Post("/donations", controllers.DonationCreate(donationService, logg))
			r.Get("/donations", controllers.DonationsMine(donationService, logg))
			r.Get("/donations/my-reservations", controllers.DonationsMyReservations(donationService, logg))
			r.Get("/donations/dashboard", controllers.DonationsDashboard(donationService, logg))
			r.Put("/donations/publish/{id}", controllers.DonationPublish(donationService, logg))
			r.Put("/donations/reserve/{id}", controllers.DonationReserve(donationService, logg))
			r.Put("/donations/collect/{id}", controllers.DonationCollect(donationService, logg))
			r.Put("/donations/complete/{id}", controllers.DonationComplete(donationService, logg))
		})
	})

	return r
}
