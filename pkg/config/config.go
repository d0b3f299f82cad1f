package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Clerk    ClerkConfig
	SMTP     SMTPConfig
	Uploads  UploadsConfig
	Pipeline PipelineConfig
	Cron     CronConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	cfg.Pipeline.FanOut = clampFanOut(cfg.Pipeline.FanOut)
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRESSREACH_APP_ENV" required:"true"`
	Port         string `envconfig:"PRESSREACH_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"PRESSREACH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRESSREACH_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"PRESSREACH_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DATABASE_URL"`
	Driver string `envconfig:"PRESSREACH_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PRESSREACH_DB_HOST"`
	Port     int    `envconfig:"PRESSREACH_DB_PORT" default:"5432"`
	User     string `envconfig:"PRESSREACH_DB_USER"`
	Password string `envconfig:"PRESSREACH_DB_PASSWORD"`
	Name     string `envconfig:"PRESSREACH_DB_NAME"`
	SSLMode  string `envconfig:"PRESSREACH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRESSREACH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRESSREACH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRESSREACH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRESSREACH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional. An empty URL disables idempotency replay and
// switches the cron worker to an in-process lock.
type RedisConfig struct {
	URL            string        `envconfig:"PRESSREACH_REDIS_URL"`
	PoolSize       int           `envconfig:"PRESSREACH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"PRESSREACH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"PRESSREACH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"PRESSREACH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"PRESSREACH_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"PRESSREACH_IDEMPOTENCY_TTL" default:"24h"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type ClerkConfig struct {
	SecretKey      string        `envconfig:"CLERK_SECRET_KEY" required:"true"`
	AllowedIssuers []string      `envconfig:"CLERK_ALLOWED_ISSUERS"`
	JWKSCacheTTL   time.Duration `envconfig:"CLERK_JWKS_CACHE_TTL" default:"1h"`
}

type SMTPConfig struct {
	Server    string        `envconfig:"SMTP_SERVER" default:"mail.hosting.reg.ru"`
	Port      int           `envconfig:"SMTP_PORT" default:"465"`
	Username  string        `envconfig:"SMTP_USERNAME"`
	Password  string        `envconfig:"SMTP_PASSWORD"`
	FromEmail string        `envconfig:"FROM_EMAIL"`
	FromName  string        `envconfig:"FROM_NAME" default:"PressReach"`
	Timeout   time.Duration `envconfig:"SMTP_TIMEOUT" default:"60s"`
}

// Sender returns the envelope sender, falling back to the SMTP login.
func (s SMTPConfig) Sender() string {
	if v := strings.TrimSpace(s.FromEmail); v != "" {
		return v
	}
	return strings.TrimSpace(s.Username)
}

type UploadsConfig struct {
	Root        string `envconfig:"PRESSREACH_UPLOAD_ROOT" default:"./uploads"`
	MaxUploadMB int    `envconfig:"PRESSREACH_MAX_UPLOAD_MB" default:"100"`
}

func (u UploadsConfig) MaxBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 0
	}
	return int64(u.MaxUploadMB) << 20
}

type PipelineConfig struct {
	FanOut int `envconfig:"PRESSREACH_PIPELINE_FANOUT" default:"6"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"PRESSREACH_CRON_INTERVAL" default:"24h"`
	OrphanGrace time.Duration `envconfig:"PRESSREACH_CRON_ORPHAN_GRACE" default:"24h"`
	StuckGrace  time.Duration `envconfig:"PRESSREACH_CRON_STUCK_GRACE" default:"1h"`
	LockTTL     time.Duration `envconfig:"PRESSREACH_CRON_LOCK_TTL" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PRESSREACH_CORS_ORIGINS" default:"*"`
}

func clampFanOut(n int) int {
	switch {
	case n < MinFanOut:
		return MinFanOut
	case n > MaxFanOut:
		return MaxFanOut
	default:
		return n
	}
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDatabaseURL, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
