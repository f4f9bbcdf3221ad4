package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP   HTTP
		Log    Log
		DB     DB
		Auth   Auth
		Google Google
		S3     S3
		AI     AI
		SMTP   SMTP
		Stripe Stripe
		Kafka  Kafka
		Tasks  Tasks
	}

	HTTP struct {
		Port           string `env:"PORT" envDefault:"8080"`
		CORSOrigin     string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
		AppURL         string `env:"APP_URL" envDefault:"http://localhost:5173"`
		APIURL         string `env:"API_URL" envDefault:"http://localhost:8080"`
		GinMode        string `env:"GIN_MODE" envDefault:"debug"`
		MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	DB struct {
		URL string `env:"DB_URL,required,notEmpty"`
	}

	Auth struct {
		JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
		CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"kidcanvas_session"`
		SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"168h"`
		TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
		CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
		TrialDays    int           `env:"TRIAL_DAYS" envDefault:"14"`
	}

	Google struct {
		ClientID         string `env:"GOOGLE_CLIENT_ID"`
		ClientSecret     string `env:"GOOGLE_CLIENT_SECRET"`
		RedirectURL      string `env:"GOOGLE_REDIRECT_URL"`
		FrontendRedirect string `env:"GOOGLE_FRONTEND_REDIRECT"`
	}

	// S3 is optional at boot. Missing values surface as a 500 on upload.
	S3 struct {
		Bucket    string `env:"S3_BUCKET"`
		Endpoint  string `env:"S3_ENDPOINT"`
		Region    string `env:"S3_REGION" envDefault:"auto"`
		AccessKey string `env:"S3_ACCESS_KEY"`
		SecretKey string `env:"S3_SECRET_KEY"`
		PublicURL string `env:"S3_PUBLIC_URL"`
	}

	AI struct {
		APIKey   string        `env:"AI_API_KEY"`
		Endpoint string        `env:"AI_ENDPOINT" envDefault:"https://api.openai.com/v1/chat/completions"`
		Model    string        `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
		Timeout  time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	}

	SMTP struct {
		Host     string `env:"SMTP_HOST"`
		Port     string `env:"SMTP_PORT" envDefault:"587"`
		From     string `env:"SMTP_FROM"`
		Password string `env:"SMTP_PASSWORD"`
	}

	Stripe struct {
		SecretKey     string `env:"STRIPE_SECRET_KEY"`
		WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
		ProductID     string `env:"STRIPE_PRODUCT_ID"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"kidcanvas.artworks"`
	}

	Tasks struct {
		Workers         int           `env:"TASK_WORKERS" envDefault:"4"`
		QueueSize       int           `env:"TASK_QUEUE_SIZE" envDefault:"256"`
		Timeout         time.Duration `env:"TASK_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"TASK_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	}
)

// New parses the process environment.
func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

// LoadEnv reads .env when present and exits on invalid configuration.
func LoadEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg, err := New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	return cfg
}

func (g Google) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}
