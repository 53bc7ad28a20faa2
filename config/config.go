package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.yaml.in/yaml/v4"
)

// EnvPrefix namespaces environment overrides, e.g. EUROLINK_MAILER_RESEND_API_KEY.
const EnvPrefix = "EUROLINK"

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Mailer   MailerConfig   `yaml:"mailer"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Auth     AuthConfig     `yaml:"auth"`
	EuroLink EuroLinkConfig `yaml:"eurolink" envconfig:"APP"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name" envconfig:"NAME"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"SSL_MODE"`
	// DSN wins over the discrete fields when set.
	DSN string `yaml:"dsn"`
}

// ConnString returns the Postgres URL, or "" when no database is configured.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Host == "" {
		return ""
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := d.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, port, d.DBName, sslMode)
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	StatusChangedTopicName string `yaml:"status_changed_topic_name" envconfig:"STATUS_CHANGED_TOPIC"`
	StatusScansTopicName   string `yaml:"status_scans_topic_name" envconfig:"STATUS_SCANS_TOPIC"`
}

// Brokers is empty when Kafka is not configured.
func (k KafkaConfig) Brokers() []string {
	if k.Host == "" {
		return nil
	}
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr is empty when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type MailerConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ResendAPIKey string `yaml:"resend_api_key" envconfig:"RESEND_API_KEY"`
	FromAddress  string `yaml:"from_address" envconfig:"FROM_ADDRESS"`
	ReplyTo      string `yaml:"reply_to" envconfig:"REPLY_TO"`
}

type SupabaseConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key" envconfig:"SERVICE_KEY"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
}

type EuroLinkConfig struct {
	GRPCAddr           string `yaml:"grpc_addr" envconfig:"GRPC_ADDR"`
	HTTPAddr           string `yaml:"http_addr" envconfig:"HTTP_ADDR"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group" envconfig:"KAFKA_CONSUMER_GROUP"`
	LogLevel           string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// TransitionPolicy is "lenient" (default) or "strict".
	TransitionPolicy       string `yaml:"transition_policy" envconfig:"TRANSITION_POLICY"`
	TrackTTLSeconds        int    `yaml:"track_ttl_seconds" envconfig:"TRACK_TTL_SECONDS"`
	EmailRetryDelaySeconds int    `yaml:"email_retry_delay_seconds" envconfig:"EMAIL_RETRY_DELAY_SECONDS"`

	WorkerHTTPAddr            string `yaml:"worker_http_addr" envconfig:"WORKER_HTTP_ADDR"`
	WorkerPollIntervalSeconds int    `yaml:"worker_poll_interval_seconds" envconfig:"WORKER_POLL_INTERVAL_SECONDS"`
	WorkerBatchSize           int    `yaml:"worker_batch_size" envconfig:"WORKER_BATCH_SIZE"`
	WorkerConcurrency         int    `yaml:"worker_concurrency" envconfig:"WORKER_CONCURRENCY"`
	WorkerLeaseSeconds        int    `yaml:"worker_lease_seconds" envconfig:"WORKER_LEASE_SECONDS"`
	WorkerRateLimitPerMinute  int    `yaml:"worker_rate_limit_per_minute" envconfig:"WORKER_RATE_LIMIT_PER_MINUTE"`
	WorkerMaxAttempts         int    `yaml:"worker_max_attempts" envconfig:"WORKER_MAX_ATTEMPTS"`
	// Retry ladder; unset steps fall back to 1m/5m/15m/60m.
	WorkerBackoff1Seconds int `yaml:"worker_backoff_1_seconds" envconfig:"WORKER_BACKOFF_1_SECONDS"`
	WorkerBackoff2Seconds int `yaml:"worker_backoff_2_seconds" envconfig:"WORKER_BACKOFF_2_SECONDS"`
	WorkerBackoff3Seconds int `yaml:"worker_backoff_3_seconds" envconfig:"WORKER_BACKOFF_3_SECONDS"`
	WorkerBackoff4Seconds int `yaml:"worker_backoff_4_seconds" envconfig:"WORKER_BACKOFF_4_SECONDS"`
}

// Seconds converts a seconds setting, returning def when it is unset.
func Seconds(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

// LoadConfig reads the YAML file and then applies EUROLINK_* environment
// overrides on top of it.
func LoadConfig(filename string) (*Config, error) {
	var config Config
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return &config, nil
}
