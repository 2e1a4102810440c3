package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server struct {
		Port string `env:"PORT" envDefault:"5250"`

		// Comma separated list of allowed origins, "*" allows all
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

		GinMode string `env:"GIN_MODE" envDefault:"release"`
	}

	Database struct {
		Path string `env:"DB_PATH" envDefault:"database/inmobiliaria.db"`
	}

	Auth struct {
		JWTSecret string        `env:"JWT_SECRET,required"`
		TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

		// Optional first admin account, created on startup when missing
		AdminEmail    string `env:"ADMIN_EMAIL"`
		AdminPassword string `env:"ADMIN_PASSWORD"`
	}

	// Notifications configures the lead notification pipeline
	Notifications struct {
		// Maximum number of lead batches waiting to be notified
		QueueSize int `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`

		// Maximum number of retries for a failed notification
		MaxRetries int `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`

		// Delay between retries
		RetryDelay time.Duration `env:"NOTIFY_RETRY_DELAY" envDefault:"5s"`

		// Used to bootstrap the Telegram settings when none are stored yet
		TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
		TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`
	}

	Geocoding struct {
		Interval time.Duration `env:"GEOCODE_INTERVAL" envDefault:"1h"`
		CacheDir string        `env:"GEOCODE_CACHE_DIR"`
		Country  string        `env:"GEOCODE_COUNTRY" envDefault:"py"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
