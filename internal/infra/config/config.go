package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App            AppSettings            `mapstructure:"app"`
	Postgres       PostgresSettings       `mapstructure:"postgres"`
	Redis          RedisSettings          `mapstructure:"redis"`
	Kafka          KafkaSettings          `mapstructure:"kafka"`
	JWT            JWTSettings            `mapstructure:"jwt"`
	OTP            OTPSettings            `mapstructure:"otp"`
	Password       PasswordSettings       `mapstructure:"password"`
	Notification   NotificationSettings   `mapstructure:"notification"`
	ReferenceCache ReferenceCacheSettings `mapstructure:"reference_cache"`
	Analytics      AnalyticsSettings      `mapstructure:"analytics"`
	CORS           CORSSettings           `mapstructure:"cors"`
	Telemetry      TelemetrySettings      `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the reference data cache connection.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures the event and notification producer. An empty
// broker list switches both to log-only stubs.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// JWTSettings holds the symmetric signing material and token lifetimes.
type JWTSettings struct {
	Secret        string        `mapstructure:"secret"`
	Algorithm     string        `mapstructure:"algorithm"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
	UserTokenTTL  time.Duration `mapstructure:"user_token_ttl"`
	AdminTokenTTL time.Duration `mapstructure:"admin_token_ttl"`
}

type OTPSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// PasswordSettings selects the hashing algorithm for new hashes. Existing
// hashes of either algorithm keep verifying.
type PasswordSettings struct {
	Algorithm         string `mapstructure:"algorithm"`
	BcryptCost        int    `mapstructure:"bcrypt_cost"`
	Argon2Memory      uint32 `mapstructure:"argon2_memory"`
	Argon2Iterations  uint32 `mapstructure:"argon2_iterations"`
	Argon2Parallelism uint8  `mapstructure:"argon2_parallelism"`
	MinScore          int    `mapstructure:"min_score"`
}

type NotificationSettings struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type ReferenceCacheSettings struct {
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type AnalyticsSettings struct {
	NewMemberWindow time.Duration `mapstructure:"new_member_window"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

var supportedAlgorithms = map[string]struct{}{"HS256": {}, "HS384": {}, "HS512": {}}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("DEVCLUB")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"jwt.secret",
		"jwt.algorithm",
		"jwt.default_ttl",
		"jwt.user_token_ttl",
		"jwt.admin_token_ttl",
		"otp.ttl",
		"password.algorithm",
		"password.bcrypt_cost",
		"password.argon2_memory",
		"password.argon2_iterations",
		"password.argon2_parallelism",
		"password.min_score",
		"notification.workers",
		"notification.queue_size",
		"notification.send_timeout",
		"reference_cache.prefix",
		"reference_cache.ttl",
		"analytics.new_member_window",
		"cors.allowed_origins",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
	}); err != nil {
		return nil, err
	}

	// Legacy variable names of the first deployment.
	_ = v.BindEnv("jwt.secret", "DEVCLUB_JWT_SECRET", "JWT_SECRET", "SECRET_KEY")
	_ = v.BindEnv("jwt.algorithm", "DEVCLUB_JWT_ALGORITHM", "JWT_ALGORITHM", "ALGORITHM")

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *AppConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if _, ok := supportedAlgorithms[strings.ToUpper(c.JWT.Algorithm)]; !ok {
		errs = append(errs, fmt.Errorf("jwt.algorithm %q is not supported", c.JWT.Algorithm))
	}
	switch strings.ToLower(c.Password.Algorithm) {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("password.algorithm %q is not supported", c.Password.Algorithm))
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, errors.New("otp.ttl must be positive"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "devclub-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8000)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "devclub")
	v.SetDefault("postgres.password", "devclub")
	v.SetDefault("postgres.database", "devclub")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "devclub")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.default_ttl", "15m")
	v.SetDefault("jwt.user_token_ttl", "30m")
	v.SetDefault("jwt.admin_token_ttl", "30m")

	v.SetDefault("otp.ttl", "10m")

	v.SetDefault("password.algorithm", "bcrypt")
	v.SetDefault("password.bcrypt_cost", 12)
	v.SetDefault("password.argon2_memory", 65536) // 64 MB
	v.SetDefault("password.argon2_iterations", 3)
	v.SetDefault("password.argon2_parallelism", 4)
	v.SetDefault("password.min_score", 2)

	v.SetDefault("notification.workers", 2)
	v.SetDefault("notification.queue_size", 256)
	v.SetDefault("notification.send_timeout", "15s")

	v.SetDefault("reference_cache.prefix", "devclub:ref")
	v.SetDefault("reference_cache.ttl", "6h")

	v.SetDefault("analytics.new_member_window", "720h")

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	})

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "devclub-api")
	v.SetDefault("telemetry.sampling_rate", 1.0)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "DEVCLUB_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
