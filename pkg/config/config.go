package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is passed to envconfig; individual fields carry the full
// variable name so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "OPENSHELF_DB_DSN"
	EnvDBHost = "OPENSHELF_DB_HOST"
	EnvDBUser = "OPENSHELF_DB_USER"
	EnvDBName = "OPENSHELF_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Circulation   CirculationConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Upload        UploadConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OPENSHELF_APP_ENV" required:"true"`
	Port         string `envconfig:"OPENSHELF_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OPENSHELF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OPENSHELF_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"OPENSHELF_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"OPENSHELF_DB_DSN"`
	Driver string `envconfig:"OPENSHELF_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OPENSHELF_DB_HOST"`
	LegacyPort     int    `envconfig:"OPENSHELF_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OPENSHELF_DB_USER"`
	LegacyPassword string `envconfig:"OPENSHELF_DB_PASSWORD"`
	LegacyName     string `envconfig:"OPENSHELF_DB_NAME"`
	LegacySSLMode  string `envconfig:"OPENSHELF_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OPENSHELF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OPENSHELF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OPENSHELF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OPENSHELF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OPENSHELF_REDIS_URL" required:"true"`
	Address      string        `envconfig:"OPENSHELF_REDIS_ADDR"`
	Password     string        `envconfig:"OPENSHELF_REDIS_PASSWORD"`
	DB           int           `envconfig:"OPENSHELF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OPENSHELF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OPENSHELF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OPENSHELF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OPENSHELF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OPENSHELF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"OPENSHELF_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"OPENSHELF_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"OPENSHELF_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"OPENSHELF_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"OPENSHELF_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"OPENSHELF_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"OPENSHELF_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"OPENSHELF_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"OPENSHELF_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"OPENSHELF_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"OPENSHELF_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"OPENSHELF_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"OPENSHELF_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"OPENSHELF_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"OPENSHELF_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool   `envconfig:"OPENSHELF_USE_SQLITE" default:"false"`
	AutoMigrate   bool   `envconfig:"OPENSHELF_AUTO_MIGRATE" default:"false"`
	GCSAccessMode string `envconfig:"OPENSHELF_GCS_ACCESS_MODE" default:"signed"`
}

// CirculationConfig holds borrow and reservation lifecycle knobs. Durations
// are expressed in days to match library policy documents.
type CirculationConfig struct {
	BorrowPeriodDays      int `envconfig:"OPENSHELF_BORROW_PERIOD_DAYS" default:"14"`
	ReservationExpiryDays int `envconfig:"OPENSHELF_RESERVATION_EXPIRY_DAYS" default:"2"`
	MaxActiveBorrows      int `envconfig:"OPENSHELF_MAX_ACTIVE_BORROWS" default:"5"`
}

func (c CirculationConfig) BorrowPeriod() time.Duration {
	return time.Duration(c.BorrowPeriodDays) * 24 * time.Hour
}

func (c CirculationConfig) ReservationExpiry() time.Duration {
	return time.Duration(c.ReservationExpiryDays) * 24 * time.Hour
}

type GCPConfig struct {
	ProjectID              string `envconfig:"OPENSHELF_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"OPENSHELF_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"OPENSHELF_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"OPENSHELF_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"OPENSHELF_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"OPENSHELF_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type UploadConfig struct {
	MaxUploadMB int `envconfig:"OPENSHELF_MAX_UPLOAD_MB" default:"200"`
}

type PubSubConfig struct {
	CirculationTopic        string `envconfig:"OPENSHELF_PUBSUB_CIRCULATION_TOPIC" required:"true"`
	CirculationSubscription string `envconfig:"OPENSHELF_PUBSUB_CIRCULATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"OPENSHELF_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"OPENSHELF_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"OPENSHELF_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
