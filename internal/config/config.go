package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	IsTestMode bool `env:"TEST_MODE" envDefault:"false"`
	Port       int  `env:"PORT" envDefault:"8000"`

	PostgresqlURL  string `env:"POSTGRESQL_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`
	RedisURL       string `env:"REDIS_URL,required"`

	RabbitmqURL              string `env:"RABBITMQ_URL,required"`
	RabbitmqReminderExchange string `env:"RABBITMQ_REMINDER_EXCHANGE" envDefault:""`
	RabbitmqReminderDueQueue string `env:"RABBITMQ_REMINDER_DUE_QUEUE" envDefault:"reminder-due"`

	TwilioBaseURL        url.URL       `env:"TWILIO_BASE_URL" envDefault:"https://api.twilio.com"`
	TwilioAccountSID     string        `env:"TWILIO_ACCOUNT_SID,required"`
	TwilioAuthToken      string        `env:"TWILIO_AUTH_TOKEN,required"`
	TwilioWhatsappFrom   string        `env:"TWILIO_WHATSAPP_FROM,required"`
	TwilioRequestTimeout time.Duration `env:"TWILIO_REQUEST_TIMEOUT" envDefault:"15s"`

	SweepPeriod               time.Duration `env:"SWEEP_PERIOD" envDefault:"1m"`
	CommandRateLimitPerMinute uint16        `env:"COMMAND_RATE_LIMIT_PER_MINUTE" envDefault:"20"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	return config, nil
}
