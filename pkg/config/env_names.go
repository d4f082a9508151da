package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "BOOKHAVEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "BOOKHAVEN_APP_ENV"
	EnvPort       = "BOOKHAVEN_APP_PORT"
	EnvRedisURL   = "BOOKHAVEN_REDIS_URL"
	EnvJWTSecret  = "BOOKHAVEN_JWT_SECRET"
	EnvJWTIssuer  = "BOOKHAVEN_JWT_ISSUER"
	EnvJWTExpMins = "BOOKHAVEN_JWT_EXPIRATION_MINUTES"

	EnvCheckoutSuccessURL = "BOOKHAVEN_CHECKOUT_SUCCESS_URL"
	EnvCheckoutCancelURL  = "BOOKHAVEN_CHECKOUT_CANCEL_URL"
)

const (
	EnvDBDSN  = "BOOKHAVEN_DB_DSN"
	EnvDBHost = "BOOKHAVEN_DB_HOST"
	EnvDBUser = "BOOKHAVEN_DB_USER"
	EnvDBName = "BOOKHAVEN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
