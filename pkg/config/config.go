package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration, loaded once at process start
// and passed explicitly to every component that needs a slice of it.
type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	AuthProvider AuthProviderConfig
	RateLimit    AuthRateLimitConfig
	Features     FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

type AppConfig struct {
	Env          string `envconfig:"APP_ENV" default:"development"`
	Port         int    `envconfig:"PORT" default:"8080"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool  { return a.Env == AppEnvDev }
func (a AppConfig) IsProd() bool { return a.Env == AppEnvProd }

// ServiceConfig identifies which binary is running, for log tagging.
type ServiceConfig struct {
	Kind string `envconfig:"SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"DB_DSN"`

	Host     string `envconfig:"DB_HOST"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds the connection string from the discrete DB_* variables
// when DB_DSN itself is not set. Kept for deployments that predate DSN
// based configuration.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("config: %s unset and legacy variables incomplete (need %s)", EnvDBDSN, strings.Join(legacyDBEnvVars, ", "))
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	Address      string        `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"JWT_ISSUER" default:"mealbridge"`
	ExpirationMinutes      int    `envconfig:"JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"JWT_REFRESH_TTL_MINUTES" default:"20160"`
}

func (j JWTConfig) Expiration() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB     int `envconfig:"ARGON_MEMORY_KB" default:"65536"`
	ArgonTime         int `envconfig:"ARGON_TIME" default:"3"`
	ArgonParallelism  int `envconfig:"ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen      int `envconfig:"ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen       int `envconfig:"ARGON_KEY_LEN" default:"32"`
	MinPasswordLength int `envconfig:"MIN_PASSWORD_LENGTH" default:"8"`
}

// AuthProviderConfig selects how credentials are verified. The local
// provider checks argon2id hashes stored alongside the user row; the
// federated provider accepts identity tokens minted by an external IdP
// and provisions users on first sight. Exactly one backend is live per
// deployment.
type AuthProviderConfig struct {
	Provider         string `envconfig:"AUTH_PROVIDER" default:"local"`
	FederatedSecret  string `envconfig:"AUTH_FEDERATED_SECRET"`
	FederatedIssuer  string `envconfig:"AUTH_FEDERATED_ISSUER"`
	FederatedRoleKey string `envconfig:"AUTH_FEDERATED_ROLE_KEY" default:"role"`
}

func (a AuthProviderConfig) IsFederated() bool {
	return a.Provider == AuthProviderFederated
}

func (a AuthProviderConfig) validate() error {
	switch a.Provider {
	case AuthProviderLocal:
		return nil
	case AuthProviderFederated:
		if a.FederatedSecret == "" {
			return fmt.Errorf("config: %s required when AUTH_PROVIDER=federated", EnvAuthFederatedSecret)
		}
		if a.FederatedIssuer == "" {
			return fmt.Errorf("config: %s required when AUTH_PROVIDER=federated", EnvAuthFederatedIssuer)
		}
		return nil
	default:
		return fmt.Errorf("config: unknown AUTH_PROVIDER %q", a.Provider)
	}
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit       int           `envconfig:"RATE_LIMIT_LOGIN_IP" default:"20"`
	LoginEmailLimit    int           `envconfig:"RATE_LIMIT_LOGIN_EMAIL" default:"10"`
	RegisterWindow     time.Duration `envconfig:"RATE_LIMIT_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"RATE_LIMIT_REGISTER_IP" default:"30"`
	RegisterEmailLimit int           `envconfig:"RATE_LIMIT_REGISTER_EMAIL" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FEATURE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DonationTopic        string `envconfig:"PUBSUB_DONATION_TOPIC" default:"mb-donation-events"`
	DonationSubscription string `envconfig:"PUBSUB_DONATION_SUBSCRIPTION" default:"mb-donation-events-sub"`
	NotificationTopic    string `envconfig:"PUBSUB_NOTIFICATION_TOPIC" default:"mb-notification-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"500ms"`
	MaxAttempts    int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"OUTBOX_RETENTION" default:"720h"`
	RetentionBatch int           `envconfig:"OUTBOX_RETENTION_BATCH" default:"500"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"CRON_INTERVAL" default:"1h"`
	LockTTL      time.Duration `envconfig:"CRON_LOCK_TTL" default:"10m"`
	NudgeHorizon time.Duration `envconfig:"CRON_NUDGE_HORIZON" default:"2h"`
}

// Load reads configuration from the environment, applying defaults and
// validating cross-field constraints. Nothing here consults globals
// after returning; callers own the returned value.
func Load() (*Config, error) {
	var cfg Config
	sections := []struct {
		name string
		dst  any
	}{
		{"app", &cfg.App},
		{"service", &cfg.Service},
		{"db", &cfg.DB},
		{"redis", &cfg.Redis},
		{"jwt", &cfg.JWT},
		{"password", &cfg.Password},
		{"auth provider", &cfg.AuthProvider},
		{"rate limit", &cfg.RateLimit},
		{"features", &cfg.Features},
		{"gcp", &cfg.GCP},
		{"pubsub", &cfg.PubSub},
		{"outbox", &cfg.Outbox},
		{"cron", &cfg.Cron},
	}
	for _, s := range sections {
		if err := envconfig.Process(EnvPrefix, s.dst); err != nil {
			return nil, fmt.Errorf("config: %s: %w", s.name, err)
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("config: jwt: %s_JWT_SECRET must not be empty", EnvPrefix)
	}
	if err := cfg.AuthProvider.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for binaries where a bad environment is fatal.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
