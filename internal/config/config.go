package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig selects the SQL backend for the task table.
type DatabaseConfig struct {
	// Driver is "sqlite" (default, pure Go) or "mysql".
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite or a go-sql-driver DSN for mysql.
	DSN string `yaml:"dsn"`
	// LogLevel controls gorm SQL logging: silent, error, warn, info.
	LogLevel string `yaml:"log_level"`
}

// VaultConfig describes the markdown note vault scanned for checklists.
type VaultConfig struct {
	Path string `yaml:"path"`
	// ResolveExistingParents makes the importer look a sub-task's parent up
	// in the store when it was not inserted during the current run.
	ResolveExistingParents bool `yaml:"resolve_existing_parents"`
}

type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
	// GuildID scopes slash commands to one server. Empty registers them
	// globally.
	GuildID string `yaml:"guild_id"`
}

type CalendarConfig struct {
	CredentialsFile        string `yaml:"credentials_file"`
	CalendarID             string `yaml:"calendar_id"`
	MaxEvents              int64  `yaml:"max_events"`
	DefaultDurationMinutes int    `yaml:"default_duration_minutes"`
}

type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type BriefingConfig struct {
	// TodoFile is an optional Obsidian todo note folded into the briefing.
	TodoFile string `yaml:"todo_file"`
	UseLLM   bool   `yaml:"use_llm"`
}

// ScheduleConfig holds cron specs for the serve mode. Empty disables a job.
type ScheduleConfig struct {
	Import     string `yaml:"import"`
	Recurrence string `yaml:"recurrence"`
	Briefing   string `yaml:"briefing"`
	Reminders  string `yaml:"reminders"`
}

type HTTPConfig struct {
	Listen   string `yaml:"listen"`
	Username string `yaml:"username"`
	// PasswordHash is a bcrypt hash. An empty hash disables login.
	PasswordHash string `yaml:"password_hash"`
	JWTSecret    string `yaml:"jwt_secret"`
	JWTIssuer    string `yaml:"jwt_issuer"`
	JWTAudience  string `yaml:"jwt_audience"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone used for "today" and calendar events.
	Timezone string         `yaml:"timezone"`
	LogLevel string         `yaml:"log_level"`
	Database DatabaseConfig `yaml:"database"`
	Vault    VaultConfig    `yaml:"vault"`
	Discord  DiscordConfig  `yaml:"discord"`
	Calendar CalendarConfig `yaml:"calendar"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Briefing BriefingConfig `yaml:"briefing"`
	Schedule ScheduleConfig `yaml:"schedule"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone: "Europe/Paris",
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DSN:      "orga.db",
			LogLevel: "warn",
		},
		Vault: VaultConfig{
			Path:                   "/mnt/user/Documents/Obsidian/notes",
			ResolveExistingParents: true,
		},
		Calendar: CalendarConfig{
			MaxEvents:              10,
			DefaultDurationMinutes: 60,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   500,
		},
		Briefing: BriefingConfig{UseLLM: true},
		Schedule: ScheduleConfig{
			Import:     "0 6 * * *",
			Recurrence: "5 6 * * *",
			Briefing:   "0 8 * * *",
			Reminders:  "*/10 * * * *",
		},
		HTTP: HTTPConfig{
			Listen:      "127.0.0.1:8008",
			Username:    "orga",
			JWTIssuer:   "orga-bot",
			JWTAudience: "orga-clients",
		},
	}
}

// Normalize fills in missing values so partially-filled files still work.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = def.Database.DSN
	}
	if c.Database.LogLevel == "" {
		c.Database.LogLevel = def.Database.LogLevel
	}
	if c.Calendar.MaxEvents <= 0 {
		c.Calendar.MaxEvents = def.Calendar.MaxEvents
	}
	if c.Calendar.DefaultDurationMinutes <= 0 {
		c.Calendar.DefaultDurationMinutes = def.Calendar.DefaultDurationMinutes
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = def.OpenAI.BaseURL
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = def.OpenAI.Model
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = def.OpenAI.MaxTokens
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = def.HTTP.Listen
	}
	if c.HTTP.JWTIssuer == "" {
		c.HTTP.JWTIssuer = def.HTTP.JWTIssuer
	}
	if c.HTTP.JWTAudience == "" {
		c.HTTP.JWTAudience = def.HTTP.JWTAudience
	}
}

// ApplyEnv overlays secrets and connection settings from the environment,
// using the variable names of the bot's .env file.
func (c *Config) ApplyEnv() {
	setIf(&c.Discord.Token, "DISCORD_BOT_TOKEN")
	setIf(&c.Discord.ChannelID, "DISCORD_CHANNEL_ID")
	setIf(&c.Discord.GuildID, "DISCORD_GUILD_ID")
	setIf(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setIf(&c.Calendar.CredentialsFile, "CREDENTIALS_FILE")
	setIf(&c.Calendar.CalendarID, "CALENDAR")
	setIf(&c.Briefing.TodoFile, "OBSIDIAN_TODO_FILE")
	setIf(&c.HTTP.JWTSecret, "JWT_SECRET")

	if host := os.Getenv("DB_HOST"); host != "" {
		c.Database.Driver = "mysql"
		c.Database.DSN = fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&clientFoundRows=true",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, os.Getenv("DB_NAME"))
	}
	setIf(&c.Database.DSN, "ORGA_DB_DSN")
}

func setIf(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Load reads the YAML file at path. On first run the default configuration
// is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg atomically via a temp file and rename, with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".orga-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
