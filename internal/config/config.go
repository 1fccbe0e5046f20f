package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DBDriver               string `env:"DB_DRIVER" envDefault:"postgres"` // postgres or mysql
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // host, tcp(host:3306), unix(/cloudsql/instance) or /socket/dir
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"5432"`
	DBSSLMode              string `env:"DB_SSLMODE" envDefault:"disable"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	AutoMigrate            bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AuthProvider      string `env:"AUTH_PROVIDER" envDefault:"supabase"` // supabase or firebase
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	AllowedOrigins    string `env:"ALLOWED_ORIGINS"` // comma separated host suffixes

	StripeWebhookSecret    string `env:"STRIPE_WEBHOOK_SECRET"`
	NCTRLiveWebhookSecret  string `env:"NCTR_LIVE_WEBHOOK_SECRET"`
	FreeTrialWebhookSecret string `env:"FREE_TRIAL_WEBHOOK_SECRET"`
	AdminAPISecret         string `env:"ADMIN_API_SECRET"`
	WebhookRatePerSecond   int    `env:"WEBHOOK_RATE_PER_SECOND" envDefault:"20"`
	WebhookRateBurst       int    `env:"WEBHOOK_RATE_BURST" envDefault:"40"`

	LoyalizeBaseURL    string `env:"LOYALIZE_BASE_URL" envDefault:"https://api.loyalize.com"`
	LoyalizeAPIKey     string `env:"LOYALIZE_API_KEY"`
	LoyalizeLookback   int    `env:"LOYALIZE_LOOKBACK_DAYS" envDefault:"30"`
	ImpactBaseURL      string `env:"IMPACT_BASE_URL" envDefault:"https://api.impact.com"`
	ImpactAccountSID   string `env:"IMPACT_ACCOUNT_SID"`
	ImpactAuthToken    string `env:"IMPACT_AUTH_TOKEN"`
	PartnerHTTPTimeout int    `env:"PARTNER_HTTP_TIMEOUT_SECONDS" envDefault:"20"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.resend.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername string `env:"SMTP_USERNAME" envDefault:"resend"`
	SMTPPassword string `env:"SMTP_PASSWORD"` // Resend API key
	MailFrom     string `env:"MAIL_FROM" envDefault:"The Garden <garden@nctr.live>"`

	AMQPURL    string `env:"AMQP_URL"`
	EventQueue string `env:"EVENT_QUEUE" envDefault:"garden.ledger.events"`

	ArchiveBucket         string `env:"ARCHIVE_BUCKET"`
	GoogleCredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	ReleaseCron string `env:"RELEASE_CRON" envDefault:"@every 15m"`
	SyncCron    string `env:"SYNC_CRON" envDefault:"@every 1h"`
	BrandCron   string `env:"BRAND_CRON" envDefault:"@daily"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) PartnerTimeout() time.Duration {
	if c.PartnerHTTPTimeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.PartnerHTTPTimeout) * time.Second
}
