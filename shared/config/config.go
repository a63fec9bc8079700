package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Server   Server   `yaml:"server"`
	Pg       Pg       `yaml:"pg"`
	Dispatch Dispatch `yaml:"dispatch"`
	History  History  `yaml:"history"`
	Log      Log      `yaml:"log"`
}

type Server struct {
	Port   int           `yaml:"port"`
	JwtTTL time.Duration `yaml:"jwt_ttl"`
}

type Pg struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Dbname string `yaml:"dbname"`
}

// Dispatch tunes the delivery pipeline. Delays are expressed in milliseconds
// so yaml stays plain integers.
type Dispatch struct {
	RequestTimeoutMs   int    `yaml:"request_timeout_ms"`   // per-request cap, default 10000
	MaxRetries         int    `yaml:"max_retries"`          // default 3
	RateLimitPadMs     int    `yaml:"rate_limit_pad_ms"`    // added on top of Retry-After, default 2000
	ItemDelayMs        int    `yaml:"item_delay_ms"`        // between items, default 1000
	DestinationDelayMs int    `yaml:"destination_delay_ms"` // between destinations, default 2500
	AuditDelayMs       int    `yaml:"audit_delay_ms"`       // between audit log posts, default 1000
	Footer             string `yaml:"footer"`               // embed footer prefix
}

type History struct {
	BaseURL   string `yaml:"base_url"`   // history API, e.g. http://localhost:8090
	CachePath string `yaml:"cache_path"` // local fallback JSON file
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Private struct {
	PgPassword     string `yaml:"pg_password"`
	JwtKey         string `yaml:"jwt_key"`
	LoggingWebhook string `yaml:"logging_webhook"` // audit log destination
	ApiToken       string `yaml:"api_token"`       // bearer token the dispatcher sends to the history API
}

// implementing accessors for private values

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

func (s *Config) PgPassword() string {
	return s.private.PgPassword
}

func (s *Config) LoggingWebhook() string {
	return s.private.LoggingWebhook
}

func (s *Config) ApiToken() string {
	return s.private.ApiToken
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

func (s *Config) applyDefaults() {
	d := &s.Public.Dispatch
	if d.RequestTimeoutMs == 0 {
		d.RequestTimeoutMs = 10000
	}
	if d.MaxRetries == 0 {
		d.MaxRetries = 3
	}
	if d.RateLimitPadMs == 0 {
		d.RateLimitPadMs = 2000
	}
	if d.ItemDelayMs == 0 {
		d.ItemDelayMs = 1000
	}
	if d.DestinationDelayMs == 0 {
		d.DestinationDelayMs = 2500
	}
	if d.AuditDelayMs == 0 {
		d.AuditDelayMs = 1000
	}
	if d.Footer == "" {
		d.Footer = "drafthook"
	}
	if s.Public.Server.Port == 0 {
		s.Public.Server.Port = 8090
	}
	if s.Public.Server.JwtTTL == 0 {
		s.Public.Server.JwtTTL = 24 * time.Hour
	}
}
