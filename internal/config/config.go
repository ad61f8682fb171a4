// Package config loads ai-events configuration from a YAML file, .env files and the
// environment.
//
// Files are loaded in the following priority order (higher priority overrides lower):
//
//  1. Environment variables (credentials, LOG_LEVEL, AI_EVENTS_DATA_DIR)
//  2. .env.local, then .env (or only ENV_FILE when set)
//  3. The YAML config file
//  4. Built-in defaults (San Francisco, week of May 19, 2025)
//
// A missing config file is not an error; defaults are used.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrCredentialMissing is returned when a configured provider has no API key.
// It is the only fatal error: a run never starts without credentials.
var ErrCredentialMissing = errors.New("credential missing")

const isoDate = "2006-01-02"

// Provider names.
const (
	ProviderPerplexity = "perplexity"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderNone       = "none"
)

// WindowConfig is the target calendar window. Days is a literal weekday→date table.
type WindowConfig struct {
	Start     string            `yaml:"start"`
	End       string            `yaml:"end"`
	WeekLabel string            `yaml:"week_label,omitempty"`
	Days      map[string]string `yaml:"days"`
}

// ProviderConfig configures a search or completion backend.
type ProviderConfig struct {
	Provider   string        `yaml:"provider"`
	BaseURL    string        `yaml:"base_url,omitempty"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key,omitempty"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// SeedConfig is the built-in record used when no candidates are found.
type SeedConfig struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Time     string `yaml:"time"`
	Location string `yaml:"location"`
	URL      string `yaml:"url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the top-level application configuration. Sources are event calendar
// pages fetched after the queries.
type Config struct {
	City        string         `yaml:"city"`
	Timezone    string         `yaml:"timezone"`
	DataDir     string         `yaml:"data_dir"`
	ReportFile  string         `yaml:"report_file"`
	ResultsFile string         `yaml:"results_file"`
	Window      WindowConfig   `yaml:"window"`
	Queries     []string       `yaml:"queries"`
	Sources     []string       `yaml:"sources"`
	Search      ProviderConfig `yaml:"search"`
	LLM         ProviderConfig `yaml:"llm"`
	Seed        SeedConfig     `yaml:"seed"`
	// Schedule is a cron expression used by the schedule command.
	Schedule string    `yaml:"schedule"`
	Log      LogConfig `yaml:"log"`
}

// DefaultQueries are the searches run when the config lists none.
var DefaultQueries = []string{
	"List all AI events happening in San Francisco from May 19 to May 23, 2025, including meetups, workshops, hackathons, and conferences. Include links and event details, check the Generative AI SF Events Calendar and Cerebral Valley Site.",
	"AI events San Francisco May 19-23 2025",
	"Artificial Intelligence meetups San Francisco next week",
	"AI conferences San Francisco May 2025",
	"Machine Learning events San Francisco May 19-23",
	"AI events Cerebral Valley San Francisco May 19-23 2025",
	"Cerebral Valley AI meetups San Francisco May 2025",
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.City == "" {
		c.City = "San Francisco"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Los_Angeles"
	}
	if c.DataDir == "" {
		c.DataDir = "./results"
	}
	if c.ReportFile == "" {
		c.ReportFile = "discord_events.txt"
	}
	if c.ResultsFile == "" {
		c.ResultsFile = "final_results.json"
	}
	if c.Window.Start == "" && c.Window.End == "" && len(c.Window.Days) == 0 {
		c.Window = WindowConfig{
			Start: "2025-05-19",
			End:   "2025-05-23",
			Days: map[string]string{
				"monday":    "2025-05-19",
				"tuesday":   "2025-05-20",
				"wednesday": "2025-05-21",
				"thursday":  "2025-05-22",
				"friday":    "2025-05-23",
			},
		}
	}
	if len(c.Queries) == 0 {
		c.Queries = append([]string(nil), DefaultQueries...)
	}

	c.Search.Provider = strings.ToLower(strings.TrimSpace(c.Search.Provider))
	if c.Search.Provider == "" {
		c.Search.Provider = ProviderPerplexity
	}
	if c.Search.Model == "" {
		c.Search.Model = "sonar"
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 60 * time.Second
	}
	if c.Search.MaxRetries <= 0 {
		c.Search.MaxRetries = 2
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case ProviderAnthropic:
			c.LLM.Model = "claude-3-5-haiku-latest"
		default:
			c.LLM.Model = "gpt-4-turbo-preview"
		}
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.LLM.MaxRetries <= 0 {
		c.LLM.MaxRetries = 2
	}

	if c.Seed.Title == "" {
		c.Seed = SeedConfig{
			Title:    "AI & Machine Learning Meetup",
			Date:     "2025-05-20",
			Time:     "18:00",
			Location: "San Francisco Tech Hub",
			URL:      "https://example.com/ai-meetup",
		}
	}
	if c.Schedule == "" {
		c.Schedule = "0 9 * * MON"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load reads the YAML config at path (defaults when it does not exist), loads .env
// files and applies environment overrides.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("loading environment files: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	cfg.Normalize()
	cfg.applyEnv()
	return &cfg, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Missing files are ignored; godotenv never overrides variables already set.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// apiKeyEnv is the environment variable holding each provider's key.
var apiKeyEnv = map[string]string{
	ProviderPerplexity: "PERPLEXITY_API_KEY",
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderAnthropic:  "ANTHROPIC_API_KEY",
}

func (c *Config) applyEnv() {
	if v := os.Getenv(apiKeyEnv[c.Search.Provider]); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv(apiKeyEnv[c.LLM.Provider]); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AI_EVENTS_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// Inputs returns the queries followed by the calendar page sources, in run order.
func (c *Config) Inputs() []string {
	inputs := make([]string, 0, len(c.Queries)+len(c.Sources))
	inputs = append(inputs, c.Queries...)
	return append(inputs, c.Sources...)
}

// Validate checks provider names and the window table shape.
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case ProviderPerplexity, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown search provider %q", c.Search.Provider)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderNone:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Window.Start == "" || c.Window.End == "" {
		return errors.New("window start and end are required")
	}
	if len(c.Window.Days) == 0 {
		return errors.New("window days must map monday..friday to dates")
	}
	if err := c.Window.check(); err != nil {
		return err
	}
	if len(c.Queries) == 0 {
		return errors.New("at least one query is required")
	}
	for _, src := range c.Sources {
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			return fmt.Errorf("source %q is not an http(s) URL", src)
		}
	}
	return nil
}

// check requires the day table to list exactly the dates from Start through End.
func (w WindowConfig) check() error {
	start, err := time.Parse(isoDate, strings.TrimSpace(w.Start))
	if err != nil {
		return fmt.Errorf("window start: %w", err)
	}
	end, err := time.Parse(isoDate, strings.TrimSpace(w.End))
	if err != nil {
		return fmt.Errorf("window end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("window end %s is before start %s", w.End, w.Start)
	}

	listed := make(map[string]string, len(w.Days))
	for label, raw := range w.Days {
		d, err := time.Parse(isoDate, strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("window day %s: %w", label, err)
		}
		if d.Before(start) || d.After(end) {
			return fmt.Errorf("window day %s (%s) is outside %s..%s", label, raw, w.Start, w.End)
		}
		listed[d.Format(isoDate)] = label
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if _, ok := listed[d.Format(isoDate)]; !ok {
			return fmt.Errorf("window date %s has no day in the table", d.Format(isoDate))
		}
	}
	return nil
}

// CheckCredentials reports ErrCredentialMissing for each configured provider
// without an API key.
func (c *Config) CheckCredentials() error {
	var missing []string
	if c.Search.APIKey == "" {
		missing = append(missing, apiKeyEnv[c.Search.Provider])
	}
	if c.LLM.Provider != ProviderNone && c.LLM.APIKey == "" {
		missing = append(missing, apiKeyEnv[c.LLM.Provider])
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrCredentialMissing, strings.Join(missing, ", "))
	}
	return nil
}
