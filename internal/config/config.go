// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DataConfig sets where task state and crawl output live.
type DataConfig struct {
	TasksFile string `mapstructure:"tasks_file"`
	OutputDir string `mapstructure:"output_dir"`
}

// CrawlerConfig holds per-task defaults for both crawl stages.
type CrawlerConfig struct {
	MaxDepthDefault int    `mapstructure:"max_depth_default"`
	MaxPagesDefault int    `mapstructure:"max_pages_default"`
	MaxChildren     int    `mapstructure:"max_children"`
	SaveInterval    int    `mapstructure:"save_interval"`
	Stage1DelayMs   int    `mapstructure:"stage1_delay_ms"`
	Stage2DelayMs   int    `mapstructure:"stage2_delay_ms"`
	UserAgent       string `mapstructure:"user_agent"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	IgnoreRobots    bool   `mapstructure:"ignore_robots"`
}

// SchedulerConfig governs task execution.
type SchedulerConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// HeadlessConfig configures the rendering fetcher.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// LLMConfig points the extractor at a provider.
type LLMConfig struct {
	APIToken        string `mapstructure:"api_token"`
	BaseURL         string `mapstructure:"base_url"`
	Model           string `mapstructure:"model"`
	MaxTokens       int    `mapstructure:"max_tokens"`
	MaxContentChars int    `mapstructure:"max_content_chars"`
}

// ServerConfig controls the status HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.tasks_file", "data/tasks.json")
	v.SetDefault("data.output_dir", "output")
	v.SetDefault("crawler.max_depth_default", 3)
	v.SetDefault("crawler.max_pages_default", 100)
	v.SetDefault("crawler.max_children", 5)
	v.SetDefault("crawler.save_interval", 5)
	v.SetDefault("crawler.stage1_delay_ms", 500)
	v.SetDefault("crawler.stage2_delay_ms", 1000)
	v.SetDefault("crawler.user_agent", "onaho-crawler/0.1")
	v.SetDefault("crawler.timeout_seconds", 15)
	v.SetDefault("crawler.ignore_robots", false)
	v.SetDefault("scheduler.max_concurrent", 1)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("llm.model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.max_content_chars", 100000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Data.TasksFile == "" {
		return fmt.Errorf("data.tasks_file must be set")
	}
	if c.Data.OutputDir == "" {
		return fmt.Errorf("data.output_dir must be set")
	}
	if c.Crawler.MaxDepthDefault < 0 {
		return fmt.Errorf("crawler.max_depth_default must be >= 0")
	}
	if c.Crawler.MaxPagesDefault <= 0 {
		return fmt.Errorf("crawler.max_pages_default must be > 0")
	}
	if c.Scheduler.MaxConcurrent <= 0 {
		return fmt.Errorf("scheduler.max_concurrent must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// Stage1Delay converts the stage-1 delay to a duration.
func (c CrawlerConfig) Stage1Delay() time.Duration {
	return time.Duration(c.Stage1DelayMs) * time.Millisecond
}

// Stage2Delay converts the stage-2 delay to a duration.
func (c CrawlerConfig) Stage2Delay() time.Duration {
	return time.Duration(c.Stage2DelayMs) * time.Millisecond
}

// Timeout converts the fetch timeout to a duration.
func (c CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation timeout to a duration.
func (c HeadlessConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}
