package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "CHAT_DIGEST_CONFIG"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	storageRootEnv   = "CHAT_DIGEST_DATA_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Account       AccountConfig      `yaml:"account"`
	Collection    CollectionConfig   `yaml:"collection"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	Notifications NotificationConfig `yaml:"notifications"`
	Storage       StorageConfig      `yaml:"storage"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// AccountConfig identifies the collecting account.
type AccountConfig struct {
	// ID namespaces persisted artifacts and the run history.
	ID string `yaml:"id"`
	// SelfName is the account's display name, used for self-message
	// suppression when the stream source cannot resolve it.
	SelfName string `yaml:"selfName"`
}

// CollectionConfig bounds a collection run.
type CollectionConfig struct {
	// WindowHours is the default lookback when no prior run exists.
	WindowHours int `yaml:"windowHours"`
	// ExportDir points the export-file stream source at a directory of
	// chat export JSON files. Empty disables the built-in source.
	ExportDir string `yaml:"exportDir"`
}

// OpenAIConfig defines how to contact the classifier model.
type OpenAIConfig struct {
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"maxTokens"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// StorageConfig locates persisted artifacts and the run history.
type StorageConfig struct {
	// Root is the base directory; artifacts live under <Root>/<account>.
	Root string `yaml:"root"`
	// RunDB is the bolt file recording run history. Defaults to
	// <Root>/runs.bolt when empty.
	RunDB string `yaml:"runDb"`
}

// SchedulerConfig defines how often the pipeline runs.
type SchedulerConfig struct {
	IntervalHours int    `yaml:"intervalHours"`
	Timezone      string `yaml:"timezone"`
}

// Interval resolves the run interval, defaulting to 24h.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.IntervalHours) * time.Hour
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(storageRootEnv); v != "" {
		c.Storage.Root = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Account.ID != "" {
		base.Account.ID = override.Account.ID
	}
	if override.Account.SelfName != "" {
		base.Account.SelfName = override.Account.SelfName
	}

	if override.Collection.WindowHours > 0 {
		base.Collection.WindowHours = override.Collection.WindowHours
	}
	if override.Collection.ExportDir != "" {
		base.Collection.ExportDir = override.Collection.ExportDir
	}

	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Temperature > 0 {
		base.OpenAI.Temperature = override.OpenAI.Temperature
	}
	if override.OpenAI.MaxTokens > 0 {
		base.OpenAI.MaxTokens = override.OpenAI.MaxTokens
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Storage.Root != "" {
		base.Storage.Root = override.Storage.Root
	}
	if override.Storage.RunDB != "" {
		base.Storage.RunDB = override.Storage.RunDB
	}

	if override.Scheduler.IntervalHours > 0 {
		base.Scheduler.IntervalHours = override.Scheduler.IntervalHours
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Account:    AccountConfig{ID: "default"},
		Collection: CollectionConfig{WindowHours: 24},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   500,
		},
		Storage:   StorageConfig{Root: "data"},
		Scheduler: SchedulerConfig{IntervalHours: 24, Timezone: "UTC"},
		Logging:   LoggingConfig{Level: "info"},
	}
}
