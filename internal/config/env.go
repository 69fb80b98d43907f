package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable hncrawl reads.
const EnvPrefix = "HNCRAWL"

// envOverrides mirrors the overridable Config fields. Pointer fields stay nil
// when the variable is unset, so only variables that are present win.
type envOverrides struct {
	BaseURL     *string           `envconfig:"BASE_URL"`
	Delay       *time.Duration    `envconfig:"DELAY"`
	Limit       *int              `envconfig:"LIMIT"`
	OutputDir   *string           `envconfig:"OUTPUT_DIR"`
	Timeout     *time.Duration    `envconfig:"TIMEOUT"`
	MaxBodySize *int64            `envconfig:"MAX_BODY_SIZE"`
	UserAgent   *string           `envconfig:"USER_AGENT"`
	Headers     map[string]string `envconfig:"HEADERS"`
	Cookie      *string           `envconfig:"COOKIE"`
	Proxy       *string           `envconfig:"PROXY"`
	EmbeddedTor *bool             `envconfig:"TOR"`
	SaveToDB    *bool             `envconfig:"SAVE_TO_DB"`
	DBDir       *string           `envconfig:"DB_DIR"`
	JSONLog     *bool             `envconfig:"JSON_LOG"`
}

// LoadDotEnv loads variables from a .env file in the current directory if
// one exists. Variables already present in the environment are kept.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with HNCRAWL_* environment variables.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setString(&cfg.BaseURL, env.BaseURL)
	setString(&cfg.OutputDir, env.OutputDir)
	setString(&cfg.UserAgent, env.UserAgent)
	setString(&cfg.Cookie, env.Cookie)
	setString(&cfg.Proxy, env.Proxy)
	setString(&cfg.DBDir, env.DBDir)

	if env.Delay != nil {
		cfg.Delay = *env.Delay
	}
	if env.Timeout != nil {
		cfg.Timeout = *env.Timeout
	}
	if env.Limit != nil {
		cfg.Limit = *env.Limit
	}
	if env.MaxBodySize != nil {
		cfg.MaxBodySize = *env.MaxBodySize
	}
	if env.EmbeddedTor != nil {
		cfg.EmbeddedTor = *env.EmbeddedTor
	}
	if env.SaveToDB != nil {
		cfg.SaveToDB = *env.SaveToDB
	}
	if env.JSONLog != nil {
		cfg.JSONLog = *env.JSONLog
	}
	if len(env.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(env.Headers))
		}
		for k, v := range env.Headers {
			cfg.Headers[k] = v
		}
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
