package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (timeouts, batch sizes, cron specs)
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Webhook   WebhookConfig
	Slack     SlackConfig
	Messaging MessagingConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type JWTConfig struct {
	Secret               string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenDuration  string `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration string `envconfig:"JWT_REFRESH_TOKEN_DURATION" default:"168h"`
}

// WebhookConfig holds the shared secrets for inbound webhook verification.
type WebhookConfig struct {
	SlackSigningSecret string        `envconfig:"SLACK_SIGNING_SECRET" required:"true"`
	CMSSigningSecret   string        `envconfig:"CMS_SIGNING_SECRET" required:"true"`
	RevenueSharedKey   string        `envconfig:"REVENUE_SHARED_KEY" required:"true"`
	ReplayTolerance    time.Duration `envconfig:"WEBHOOK_REPLAY_TOLERANCE" default:"5m"`
}

// SlackConfig points at the incoming webhook used for operator job reports.
type SlackConfig struct {
	JobReportWebhookURL string `envconfig:"SLACK_JOB_REPORT_WEBHOOK_URL" default:""`
	Channel             string `envconfig:"SLACK_JOB_REPORT_CHANNEL" default:"#ops-jobs"`
}

type MessagingConfig struct {
	FirebaseCredentialsFile string `envconfig:"FIREBASE_CREDENTIALS_FILE" default:""`
}

type JobsConfig struct {
	DefaultBatchSize  int           `envconfig:"JOBS_DEFAULT_BATCH_SIZE" default:"100"`
	WorkerPollPeriod  time.Duration `envconfig:"JOBS_WORKER_POLL_PERIOD" default:"5s"`
	MaxAttempts       int           `envconfig:"JOBS_MAX_ATTEMPTS" default:"3"`
	TrialExpireSpec   string        `envconfig:"JOBS_TRIAL_EXPIRE_CRON" default:"0 2 * * *"`
	CancelSweepSpec   string        `envconfig:"JOBS_CANCEL_SWEEP_CRON" default:"30 2 * * *"`
	DailyPromptSpec   string        `envconfig:"JOBS_DAILY_PROMPT_CRON" default:"0 9 * * *"`
	MemberStatsSpec   string        `envconfig:"JOBS_MEMBER_STATS_CRON" default:"0 4 * * *"`
	SchedulerDisabled bool          `envconfig:"JOBS_SCHEDULER_DISABLED" default:"false"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	// .env is optional and never overrides real environment variables.
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:               "test-secret-used-only-in-tests",
			AccessTokenDuration:  "15m",
			RefreshTokenDuration: "168h",
		},
		Webhook: WebhookConfig{
			SlackSigningSecret: "test-slack-signing-secret",
			CMSSigningSecret:   "test-cms-signing-secret",
			RevenueSharedKey:   "test-revenue-shared-key",
			ReplayTolerance:    5 * time.Minute,
		},
		Jobs: JobsConfig{
			DefaultBatchSize:  10,
			WorkerPollPeriod:  100 * time.Millisecond,
			MaxAttempts:       3,
			SchedulerDisabled: true,
		},
	}
}
