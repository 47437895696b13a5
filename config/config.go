package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"sjsage522/phdigest/pkg/errors"
)

const (
	defaultConfigPath = "config.yaml"
	defaultCount      = 5
	maxCount          = 10
)

// Recipient represents one digest recipient
type Recipient struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// fileConfig mirrors the layout of config.yaml
type fileConfig struct {
	Settings struct {
		ProductCount   int    `yaml:"product_count"`
		ProductHuntURL string `yaml:"product_hunt_url"`
	} `yaml:"settings"`
	Email struct {
		From          string `yaml:"from"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"email"`
	Gemini struct {
		Model string `yaml:"model"`
	} `yaml:"gemini"`
	Recipients []Recipient `yaml:"recipients"`
}

// Config represents the application configuration
type Config struct {
	// Scrape configuration
	ProductHuntURL string
	ProductCount   int

	// Summarizer configuration
	GeminiModel  string
	GeminiAPIKey string

	// Mailer configuration
	FromEmail     string
	SubjectPrefix string
	ResendAPIKey  string
	Recipients    []Recipient

	// HTTP timeout applied to every outbound call
	HTTPTimeout time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from the YAML file at path plus
// environment variables. An empty path falls back to DIGEST_CONFIG and
// then to ./config.yaml.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = getEnv("DIGEST_CONFIG", defaultConfigPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfiguration(fmt.Sprintf("configuration file not found: %s", path), err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.NewConfiguration(fmt.Sprintf("invalid configuration file: %s", path), err)
	}

	timeoutSeconds, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "30"))
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	cfg := &Config{
		ProductHuntURL: fc.Settings.ProductHuntURL,
		ProductCount:   clampCount(fc.Settings.ProductCount),
		GeminiModel:    fc.Gemini.Model,
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		FromEmail:      fc.Email.From,
		SubjectPrefix:  fc.Email.SubjectPrefix,
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		Recipients:     validRecipients(fc.Recipients),
		HTTPTimeout:    time.Duration(timeoutSeconds) * time.Second,
		Environment:    getEnv("DIGEST_ENVIRONMENT", "development"),
	}

	if cfg.ProductHuntURL == "" {
		cfg.ProductHuntURL = "https://www.producthunt.com"
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "Product Hunt Daily"
	}

	return cfg, nil
}

// Validate checks that everything needed for a run is present. It runs
// before any network call so a missing API key fails fast.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return errors.NewConfiguration("GEMINI_API_KEY is required", nil)
	}
	if c.ResendAPIKey == "" {
		return errors.NewConfiguration("RESEND_API_KEY is required", nil)
	}
	if c.FromEmail == "" {
		return errors.NewConfiguration("email.from is required in the configuration file", nil)
	}
	if len(c.Recipients) == 0 {
		return errors.NewConfiguration("no recipients configured", nil)
	}
	return nil
}

// clampCount keeps the product count in the 1-10 range
func clampCount(n int) int {
	if n <= 0 {
		return defaultCount
	}
	if n > maxCount {
		return maxCount
	}
	return n
}

// validRecipients drops entries without an email address
func validRecipients(recipients []Recipient) []Recipient {
	valid := make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		if r.Email != "" {
			valid = append(valid, r)
		}
	}
	return valid
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
