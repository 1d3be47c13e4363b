package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Discord       DiscordConfig       `yaml:"discord"`
	Webhook       WebhookConfig       `yaml:"webhook"`
	Game          GameConfig          `yaml:"game"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL disables the message bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the REST API settings.
type HTTPConfig struct {
	ListenAddr  string  `yaml:"listen_addr"`
	AdminSecret string  `yaml:"admin_secret"`
	RateLimit   float64 `yaml:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string  `yaml:"metrics_address"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	OTLPInsecure   bool    `yaml:"otlp_insecure"`
	SampleRate     float64 `yaml:"sample_rate"`
	Environment    string  `yaml:"environment"`
	LogLevel       string  `yaml:"log_level"`
}

// DiscordConfig holds Discord configuration. Without a token, role changes
// are only logged.
type DiscordConfig struct {
	Token string `yaml:"token"`
	// AnnounceChannels maps a guild to the channel announcements go to.
	AnnounceChannels map[string]string `yaml:"announce_channels"`
	FallbackChannel  string            `yaml:"fallback_channel"`
	Roles            RoleConfig        `yaml:"roles"`
}

// RoleConfig holds the Discord role id of each tier.
type RoleConfig struct {
	Sergeant  string `yaml:"sergeant"`
	Commander string `yaml:"commander"`
	General   string `yaml:"general"`
}

// WebhookConfig configures the notification sink on both ends.
type WebhookConfig struct {
	URL        string        `yaml:"url"`
	Secret     string        `yaml:"secret"`
	ListenAddr string        `yaml:"listen_addr"`
	Timeout    time.Duration `yaml:"timeout"`
	// UseQueue delivers through the durable job queue instead of inline.
	UseQueue bool `yaml:"use_queue"`
}

// GameConfig holds the engine tunables.
type GameConfig struct {
	Cron            string                    `yaml:"cron"`
	Timezone        string                    `yaml:"timezone"`
	EarlyBirdCutoff time.Duration             `yaml:"early_bird_cutoff"`
	WindowMs        int64                     `yaml:"window_ms"`
	PenaltyMs       int64                     `yaml:"penalty_ms"`
	ShortWindowDays int                       `yaml:"short_window_days"`
	LongWindowDays  int                       `yaml:"long_window_days"`
	EnableScheduler bool                      `yaml:"enable_scheduler"`
	MaxSleep        time.Duration             `yaml:"max_sleep"`
	TierThresholds  gamedomain.TierThresholds `yaml:"tier_thresholds"`
}

// Default returns a Config carrying every documented default.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			ListenAddr: ":8080",
			RateLimit:  5,
			RateBurst:  10,
		},
		Observability: ObservabilityConfig{
			SampleRate:  0.1,
			Environment: "development",
			LogLevel:    "info",
		},
		Webhook: WebhookConfig{
			ListenAddr: ":8090",
			Timeout:    10 * time.Second,
		},
		Game: GameConfig{
			Cron:            "37 13 * * *",
			Timezone:        "Europe/Berlin",
			EarlyBirdCutoff: 2 * time.Hour,
			WindowMs:        gamedomain.DefaultWindowMs,
			PenaltyMs:       gamedomain.DefaultPenaltyMs,
			ShortWindowDays: 14,
			LongWindowDays:  365,
			EnableScheduler: true,
			MaxSleep:        5 * time.Minute,
			TierThresholds:  gamedomain.DefaultTierThresholds(),
		},
	}
}

// LoadConfig loads the configuration from a YAML file on top of the
// defaults. Environment variables (and a .env file) override the file. A
// missing file falls back to the environment alone.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	texts := map[string]*string{
		"DATABASE_URL":           &cfg.Postgres.DSN,
		"NATS_URL":               &cfg.NATS.URL,
		"HTTP_LISTEN_ADDR":       &cfg.HTTP.ListenAddr,
		"ADMIN_SECRET":           &cfg.HTTP.AdminSecret,
		"METRICS_ADDRESS":        &cfg.Observability.MetricsAddress,
		"OTLP_ENDPOINT":          &cfg.Observability.OTLPEndpoint,
		"ENV":                    &cfg.Observability.Environment,
		"LOG_LEVEL":              &cfg.Observability.LogLevel,
		"DISCORD_TOKEN":          &cfg.Discord.Token,
		"DISCORD_FALLBACK":       &cfg.Discord.FallbackChannel,
		"DISCORD_ROLE_SERGEANT":  &cfg.Discord.Roles.Sergeant,
		"DISCORD_ROLE_COMMANDER": &cfg.Discord.Roles.Commander,
		"DISCORD_ROLE_GENERAL":   &cfg.Discord.Roles.General,
		"WEBHOOK_URL":            &cfg.Webhook.URL,
		"WEBHOOK_SECRET":         &cfg.Webhook.Secret,
		"WEBHOOK_LISTEN_ADDR":    &cfg.Webhook.ListenAddr,
		"GAME_CRON":              &cfg.Game.Cron,
		"GAME_TIMEZONE":          &cfg.Game.Timezone,
	}
	for key, dst := range texts {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"OTLP_INSECURE":         &cfg.Observability.OTLPInsecure,
		"WEBHOOK_USE_QUEUE":     &cfg.Webhook.UseQueue,
		"GAME_ENABLE_SCHEDULER": &cfg.Game.EnableScheduler,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s value: %w", key, err)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"WEBHOOK_TIMEOUT":        &cfg.Webhook.Timeout,
		"GAME_EARLY_BIRD_CUTOFF": &cfg.Game.EarlyBirdCutoff,
		"GAME_MAX_SLEEP":         &cfg.Game.MaxSleep,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s value: %w", key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int64{
		"GAME_WINDOW_MS":  &cfg.Game.WindowMs,
		"GAME_PENALTY_MS": &cfg.Game.PenaltyMs,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s value: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("OTEL_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid OTEL_SAMPLE_RATE value: %w", err)
		}
		cfg.Observability.SampleRate = f
	}
	return nil
}

// Validate rejects configurations the engine cannot run with. Problems are
// reported together.
func (c *Config) Validate() error {
	g := c.Game
	var errs []error
	invalid := func(field string, value any, reason string) {
		errs = append(errs, &gamedomain.ConfigurationError{
			Field: "game." + field,
			Value: fmt.Sprint(value),
			Err:   errors.New(reason),
		})
	}

	if g.WindowMs <= 0 {
		invalid("window_ms", g.WindowMs, "must be positive")
	}
	if g.PenaltyMs < 0 {
		invalid("penalty_ms", g.PenaltyMs, "must not be negative")
	}
	if g.ShortWindowDays <= 0 {
		invalid("short_window_days", g.ShortWindowDays, "must be positive")
	}
	if g.LongWindowDays <= 0 {
		invalid("long_window_days", g.LongWindowDays, "must be positive")
	}
	if g.EarlyBirdCutoff < 0 {
		invalid("early_bird_cutoff", g.EarlyBirdCutoff, "must not be negative")
	}
	if g.MaxSleep <= 0 {
		invalid("max_sleep", g.MaxSleep, "must be positive")
	}
	if err := g.TierThresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
