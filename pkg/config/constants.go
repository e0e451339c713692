package config

// EnvPrefix is passed to envconfig; individual tags carry the full names.
const EnvPrefix = "AGRIMANDI"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "AGRIMANDI_APP_ENV"
	EnvPort     = "AGRIMANDI_APP_PORT"
	EnvDBDSN    = "AGRIMANDI_DB_DSN"
	EnvDBHost   = "AGRIMANDI_DB_HOST"
	EnvDBUser   = "AGRIMANDI_DB_USER"
	EnvDBName   = "AGRIMANDI_DB_NAME"
	EnvRedisURL = "AGRIMANDI_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
