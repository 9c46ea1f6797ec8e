package config

const EnvPrefix = "QUOTECART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	TaxProviderNone   = "none"
	TaxProviderFlat   = "flat"
	TaxProviderStripe = "stripe"
)

const defaultSQLiteDSN = "file:quotecart.db?_foreign_keys=on"

const (
	EnvAppEnv      = "QUOTECART_APP_ENV"
	EnvPort        = "QUOTECART_APP_PORT"
	EnvDBDSN       = "QUOTECART_DB_DSN"
	EnvDBHost      = "QUOTECART_DB_HOST"
	EnvDBUser      = "QUOTECART_DB_USER"
	EnvDBName      = "QUOTECART_DB_NAME"
	EnvRedisURL    = "QUOTECART_REDIS_URL"
	EnvJWTSecret   = "QUOTECART_JWT_SECRET"
	EnvJWTIssuer   = "QUOTECART_JWT_ISSUER"
	EnvUseSQLite   = "QUOTECART_USE_SQLITE"
	EnvTaxProvider = "QUOTECART_TAX_PROVIDER"
	EnvTaxFlatRate = "QUOTECART_TAX_FLAT_RATE"
	EnvCookieName  = "QUOTECART_CART_COOKIE_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
