// Package config loads the source and channel list for a guide run.
package config

import (
	"fmt"
	"os"
	"time"

	"radio-epg/consts"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Output   string        `yaml:"output"`
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"logLevel"`
	LogFile  string        `yaml:"logFile"`
	Hanoi    HanoiConfig   `yaml:"hanoi"`
	VOH      VOHConfig     `yaml:"voh"`
	VOVGT    VOVGTConfig   `yaml:"vovgt"`
}

type HanoiConfig struct {
	URL      string         `yaml:"url"`
	Channels []HanoiChannel `yaml:"channels"`
}

// HanoiChannel maps the upstream schedule key (e.g. FM90) to a guide channel id.
type HanoiChannel struct {
	Key string `yaml:"key"`
	ID  string `yaml:"id"`
}

type VOHConfig struct {
	URL       string       `yaml:"url"`
	BuildPage string       `yaml:"buildPage"`
	Channels  []VOHChannel `yaml:"channels"`
}

// VOHChannel maps a guide channel id to VOH's numeric channelNewId.
type VOHChannel struct {
	ID   string `yaml:"id"`
	Code int    `yaml:"code"`
}

type VOVGTConfig struct {
	URL      string         `yaml:"url"`
	Channels []VOVGTChannel `yaml:"channels"`
}

// VOVGTChannel maps a guide channel id to the suffix appended to the schedule URL.
type VOVGTChannel struct {
	ID     string `yaml:"id"`
	Suffix string `yaml:"suffix"`
}

// Default returns the built-in source list.
func Default() *Config {
	return &Config{
		Output:   consts.OUTPUT_FILE,
		Timeout:  10 * time.Second,
		LogLevel: "info",
		Hanoi: HanoiConfig{
			URL: consts.HANOI_SCHEDULE_URL,
			Channels: []HanoiChannel{
				{Key: "FM90", ID: "dai-phat-thanh-Ha-Noi-90MHz"},
				{Key: "FM96", ID: "dai-phat-thanh-Ha-Noi-96MHz"},
			},
		},
		VOH: VOHConfig{
			URL:       consts.VOH_URL,
			BuildPage: consts.VOH_BUILD_PAGE,
			Channels: []VOHChannel{
				{ID: "dai-phat-thanh-VOH-99.9Mhz", Code: 999},
				{ID: "dai-phat-thanh-VOH-95.6Mhz", Code: 956},
				{ID: "dai-phat-thanh-VOH-87.7Mhz", Code: 877},
				{ID: "dai-phat-thanh-VOH-610KHz", Code: 610},
			},
		},
		VOVGT: VOVGTConfig{
			URL: consts.VOVGT_SCHEDULE_URL,
			Channels: []VOVGTChannel{
				{ID: "dai-phat-thanh-VOV-Giao-thong-Ha-Noi", Suffix: ""},
				{ID: "dai-phat-thanh-VOV-Giao-thong-HCM", Suffix: "/hcm"},
			},
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error,
// the defaults are used as is. Environment variables (optionally from a
// .env file) override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = getEnv("EPG_CONFIG", consts.CONFIG_FILE)
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Output = getEnv("EPG_OUTPUT", cfg.Output)
	cfg.Timeout = getEnvAsDuration("EPG_TIMEOUT", cfg.Timeout)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("EPG_LOG_FILE", cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("config: output path is empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	for _, ch := range c.Hanoi.Channels {
		if ch.Key == "" || ch.ID == "" {
			return fmt.Errorf("config: hanoi channel needs key and id: %+v", ch)
		}
	}
	for _, ch := range c.VOH.Channels {
		if ch.ID == "" || ch.Code <= 0 {
			return fmt.Errorf("config: voh channel needs id and code: %+v", ch)
		}
	}
	for _, ch := range c.VOVGT.Channels {
		if ch.ID == "" {
			return fmt.Errorf("config: vovgt channel needs id: %+v", ch)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
