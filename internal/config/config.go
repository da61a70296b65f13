package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RazorpayConfig holds the payment gateway credentials. The secret doubles
// as the HMAC key for signature verification.
type RazorpayConfig struct {
	KeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`
	BaseURL   string `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"EMAIL_USER"`
	Password string `envconfig:"EMAIL_PASSWORD"`
	From     string `envconfig:"EMAIL_FROM"`
}

// TwilioCredentials is one restaurant's telephony account.
type TwilioCredentials struct {
	AccountSID  string `envconfig:"ACCOUNT_SID"`
	AuthToken   string `envconfig:"AUTH_TOKEN"`
	PhoneNumber string `envconfig:"PHONE_NUMBER"`
}

type TelephonyConfig struct {
	RingTimeout time.Duration `mapstructure:"ring_timeout"`
	RejectURL   string        `mapstructure:"reject_url"`
	// Credentials keyed by restaurant ID, loaded from TWILIO_<id>_* env vars.
	Credentials map[string]TwilioCredentials `mapstructure:"-"`
}

type NotificationConfig struct {
	RetentionWindow time.Duration `mapstructure:"retention_window"`
}

type StatusConfig struct {
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
	MonitorInterval time.Duration `mapstructure:"monitor_interval"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type Config struct {
	Server       ServerConfig    `mapstructure:"server"`
	Razorpay     RazorpayConfig  `mapstructure:"-"`
	SMTP         SMTPConfig      `mapstructure:"-"`
	Telephony    TelephonyConfig `mapstructure:"telephony"`
	Notification NotificationConfig `mapstructure:"notification"`
	Status       StatusConfig       `mapstructure:"status"`
	Redis        RedisConfig        `mapstructure:"redis"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Restaurants  []string           `mapstructure:"restaurants"`
	CORS         struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Razorpay); err != nil {
		return nil, fmt.Errorf("failed to load razorpay config: %w", err)
	}
	if err := envconfig.Process("", &config.SMTP); err != nil {
		return nil, fmt.Errorf("failed to load smtp config: %w", err)
	}

	// Telephony credentials are per restaurant: TWILIO_<id>_ACCOUNT_SID etc.
	// Restaurants with incomplete credentials are left unconfigured; the call
	// adapter reports "not configured" for them instead of failing startup.
	config.Telephony.Credentials = make(map[string]TwilioCredentials, len(config.Restaurants))
	for _, id := range config.Restaurants {
		var creds TwilioCredentials
		if err := envconfig.Process("twilio_"+id, &creds); err != nil {
			return nil, fmt.Errorf("failed to load twilio config for restaurant %s: %w", id, err)
		}
		if creds.AccountSID != "" && creds.AuthToken != "" {
			config.Telephony.Credentials[id] = creds
		}
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.request_timeout", 30*time.Second)
	viper.SetDefault("telephony.ring_timeout", 15*time.Second)
	viper.SetDefault("telephony.reject_url", "http://twimlets.com/reject")
	viper.SetDefault("notification.retention_window", 60*time.Second)
	viper.SetDefault("status.freshness_window", 10*time.Second)
	viper.SetDefault("status.monitor_interval", time.Second)
	viper.SetDefault("rate_limit.limit", 100)
	viper.SetDefault("rate_limit.window", time.Minute)
	viper.SetDefault("restaurants", []string{"1", "2", "3"})
}
