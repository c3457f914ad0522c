package config

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "MEALBRIDGE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	AuthProviderLocal     = "local"
	AuthProviderFederated = "federated"
)

// Environment variable names referenced outside envconfig tags.
const (
	EnvDBDSN      = "MEALBRIDGE_DB_DSN"
	EnvDBHost     = "MEALBRIDGE_DB_HOST"
	EnvDBPort     = "MEALBRIDGE_DB_PORT"
	EnvDBUser     = "MEALBRIDGE_DB_USER"
	EnvDBPassword = "MEALBRIDGE_DB_PASSWORD"
	EnvDBName     = "MEALBRIDGE_DB_NAME"
	EnvDBSSLMode  = "MEALBRIDGE_DB_SSLMODE"

	EnvAuthFederatedSecret = "MEALBRIDGE_AUTH_FEDERATED_SECRET"
	EnvAuthFederatedIssuer = "MEALBRIDGE_AUTH_FEDERATED_ISSUER"
)

var legacyDBEnvVars = []string{
	EnvDBHost,
	EnvDBPort,
	EnvDBUser,
	EnvDBPassword,
	EnvDBName,
	EnvDBSSLMode,
}
