package config

import (
	"elk-bot/model"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultEnvFile      = ".env"
	DefaultSettingsFile = "data/config.yaml"
)

// Load loads the configuration from the environment, the .env file and the
// settings file at their default locations.
func Load() (*model.Config, error) {
	return LoadFrom(DefaultEnvFile, DefaultSettingsFile)
}

// LoadFrom reads envFile into the environment (existing variables win), then
// the settings file. ELK_ prefixed variables override settings, e.g.
// ELK_PREFIX or ELK_SIEGE_CITIES_FILE.
func LoadFrom(envFile, settingsFile string) (*model.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: reading %s: %v", model.ErrConfig, envFile, err)
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("%w: DISCORD_TOKEN environment variable not set", model.ErrConfig)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(settingsFile)
	v.SetEnvPrefix("ELK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: reading %s: %v", model.ErrConfig, settingsFile, err)
		}
	}

	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding settings: %v", model.ErrConfig, err)
	}

	cfg.BotToken = token
	cfg.GuildID = os.Getenv("DISCORD_GUILD")
	cfg.LogChannelID = os.Getenv("DISCORD_BOT_CHANNEL")
	if ch := os.Getenv("DISCORD_WELCOME_CHANNEL"); ch != "" {
		cfg.Welcome.ChannelID = ch
	}
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if dev := os.Getenv("DEVELOPMENT"); dev != "" {
		parsed, err := strconv.ParseBool(dev)
		if err != nil {
			return nil, fmt.Errorf("%w: DEVELOPMENT must be a boolean, got %q", model.ErrConfig, dev)
		}
		cfg.DevelopmentMode = parsed
	}

	if cfg.Prefix == "" {
		return nil, fmt.Errorf("%w: prefix must not be empty", model.ErrConfig)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("prefix", "!")
	v.SetDefault("allowed_role_ids", []string{})
	v.SetDefault("missions_suffix", "-missions")
	v.SetDefault("transient_ttl", 10*time.Second)
	v.SetDefault("audit_db", "data/audit.db")
	v.SetDefault("command_help_file", "data/commands.yaml")

	v.SetDefault("welcome.channel_id", "")
	v.SetDefault("welcome.direct_template", "")
	v.SetDefault("welcome.channel_template", "")

	v.SetDefault("siege.cities_file", "data/cities.json")
	v.SetDefault("siege.reminder_offsets", []time.Duration{time.Hour, 15 * time.Minute})

	v.SetDefault("translation.flags_file", "data/v1.json")
	v.SetDefault("translation.destination", "en")
	v.SetDefault("translation.min_length", 10)
	v.SetDefault("translation.endpoint", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translation.request_timeout", 15*time.Second)
}
