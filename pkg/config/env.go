package config

// EnvPrefix is empty because every field carries an explicit envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "PRESSREACH_APP_ENV"
	EnvPort        = "PRESSREACH_APP_PORT"
	EnvDatabaseURL = "DATABASE_URL"
	EnvDBHost      = "PRESSREACH_DB_HOST"
	EnvDBUser      = "PRESSREACH_DB_USER"
	EnvDBName      = "PRESSREACH_DB_NAME"
	EnvDBPassword  = "PRESSREACH_DB_PASSWORD"
	EnvRedisURL    = "PRESSREACH_REDIS_URL"
	EnvClerkSecret = "CLERK_SECRET_KEY"
	EnvClerkIssuer = "CLERK_ALLOWED_ISSUERS"
	EnvSMTPServer  = "SMTP_SERVER"
	EnvSMTPPort    = "SMTP_PORT"
	EnvSMTPUser    = "SMTP_USERNAME"
	EnvSMTPPass    = "SMTP_PASSWORD"
	EnvFromEmail   = "FROM_EMAIL"
	EnvFromName    = "FROM_NAME"
	EnvUploadRoot  = "PRESSREACH_UPLOAD_ROOT"
	EnvFanOut      = "PRESSREACH_PIPELINE_FANOUT"
)

const (
	MinFanOut = 1
	MaxFanOut = 8
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
