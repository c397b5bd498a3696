package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "PARTMAP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PARTMAP_DB_DSN"
	EnvDBHost = "PARTMAP_DB_HOST"
	EnvDBUser = "PARTMAP_DB_USER"
	EnvDBName = "PARTMAP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Workspace     WorkspaceConfig
	Export        ExportConfig
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
	Env          string `envconfig:"PARTMAP_APP_ENV" required:"true"`
	Port         string `envconfig:"PARTMAP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PARTMAP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARTMAP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PARTMAP_DB_DSN"`
	Driver string `envconfig:"PARTMAP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARTMAP_DB_HOST"`
	LegacyPort     int    `envconfig:"PARTMAP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARTMAP_DB_USER"`
	LegacyPassword string `envconfig:"PARTMAP_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARTMAP_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARTMAP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARTMAP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARTMAP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARTMAP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARTMAP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PARTMAP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PARTMAP_REDIS_ADDR"`
	Password     string        `envconfig:"PARTMAP_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARTMAP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARTMAP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARTMAP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARTMAP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARTMAP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARTMAP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PARTMAP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PARTMAP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PARTMAP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PARTMAP_REFRESH_TOKEN_TTL_MINUTES" default:"1440"`
	// RememberTTLMinutes is the extended refresh TTL used when the client
	// asks to stay signed in.
	RememberTTLMinutes int `envconfig:"PARTMAP_REMEMBER_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// RememberTokenTTL returns the remember-me refresh TTL.
func (j JWTConfig) RememberTokenTTL() time.Duration {
	if j.RememberTTLMinutes <= 0 {
		return j.RefreshTokenTTL()
	}
	return time.Duration(j.RememberTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PARTMAP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PARTMAP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PARTMAP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PARTMAP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PARTMAP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PARTMAP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PARTMAP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PARTMAP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PARTMAP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PARTMAP_AUTO_MIGRATE" default:"false"`
}

type WorkspaceConfig struct {
	// MaxUploadMB bounds the request body accepted for image uploads.
	MaxUploadMB int `envconfig:"PARTMAP_MAX_UPLOAD_MB" default:"25"`
	// MaxDisplayWidth/Height cap the tracked display size of an uploaded
	// image; tag fractions are relative to this fitted size.
	MaxDisplayWidth  int `envconfig:"PARTMAP_MAX_DISPLAY_WIDTH" default:"800"`
	MaxDisplayHeight int `envconfig:"PARTMAP_MAX_DISPLAY_HEIGHT" default:"600"`
	// CartPageSize is the fixed page size of the derived cart view.
	CartPageSize int `envconfig:"PARTMAP_CART_PAGE_SIZE" default:"5"`
}

type ExportConfig struct {
	// CompanyName is printed in the spreadsheet's merged header row.
	CompanyName string `envconfig:"PARTMAP_EXPORT_COMPANY_NAME" default:"PT. CIPTA MANDIRI WIRASAKTI"`
	SheetName   string `envconfig:"PARTMAP_EXPORT_SHEET_NAME" default:"Supplier Maker Layout"`
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
