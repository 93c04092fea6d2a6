package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	Redis       RedisConfig       `yaml:"redis"`
	Snapshot    SnapshotConfig    `yaml:"snapshot"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	ReviewQueue ReviewQueueConfig `yaml:"review_queue"`
	Intercom    IntercomConfig    `yaml:"intercom"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// RedisConfig for the optional async sync queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SnapshotConfig bounds the recent-window fetch. Human-reviewed and
// review-queue conversations are always loaded regardless of this cap.
type SnapshotConfig struct {
	RecentLimit int `yaml:"recent_limit"`
}

// ScoringConfig holds fallback score weights; runtime values live in
// system_configs and take precedence.
type ScoringConfig struct {
	HumanWeight float64 `yaml:"human_weight"`
	AIWeight    float64 `yaml:"ai_weight"`
}

// ReviewQueueConfig holds fallbacks for the restricted review-queue
// visibility rule.
type ReviewQueueConfig struct {
	WorkspacePrefix    string `yaml:"workspace_prefix"`
	RestrictedReviewer string `yaml:"restricted_reviewer"` // reviewer email
}

type IntercomConfig struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	AppID      string `yaml:"app_id"`
	APIVersion string `yaml:"api_version"`
	SyncCron   string `yaml:"sync_cron"` // empty disables the schedule
	SyncDays   int    `yaml:"sync_days"`
	// WorkspaceTags maps an Intercom tag (lowercased) to a workspace name.
	WorkspaceTags map[string]string `yaml:"workspace_tags"`
	// QueueTags are tags (lowercased) that flag review-queue membership.
	QueueTags []string `yaml:"queue_tags"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		fileCfg := *DefaultConfig()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "convoqa.db",
		},
		JWT: JWTConfig{
			Secret:     "convoqa-secret-key-change-in-production",
			ExpireHour: 24,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Snapshot: SnapshotConfig{
			RecentLimit: 500,
		},
		Scoring: ScoringConfig{
			HumanWeight: 0.7,
			AIWeight:    0.3,
		},
		ReviewQueue: ReviewQueueConfig{
			WorkspacePrefix: "360_",
		},
		Intercom: IntercomConfig{
			BaseURL:    "https://api.intercom.io",
			APIVersion: "2.14",
			SyncDays:   7,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if token := os.Getenv("INTERCOM_TOKEN"); token != "" {
		c.Intercom.Token = token
	}
	if appID := os.Getenv("INTERCOM_APP_ID"); appID != "" {
		c.Intercom.AppID = appID
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if limit := os.Getenv("SNAPSHOT_RECENT_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			c.Snapshot.RecentLimit = n
		}
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
