package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "LEADMARKET_APP_ENV"
	EnvPort   = "LEADMARKET_APP_PORT"

	EnvDBDSN  = "LEADMARKET_DB_DSN"
	EnvDBHost = "LEADMARKET_DB_HOST"
	EnvDBUser = "LEADMARKET_DB_USER"
	EnvDBName = "LEADMARKET_DB_NAME"

	EnvRedisURL = "LEADMARKET_REDIS_URL"

	EnvGCPProjectID = "LEADMARKET_GCP_PROJECT_ID"
	EnvGCSBucket    = "LEADMARKET_GCS_BUCKET_NAME"

	EnvPaymentAccessToken = "LEADMARKET_PAYMENT_ACCESS_TOKEN"
	EnvPaymentSuccessURL  = "LEADMARKET_PAYMENT_SUCCESS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
