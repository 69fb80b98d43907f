package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseURL is the news site whose front page is polled.
	DefaultBaseURL = "http://news.ycombinator.com"

	// DefaultDelay is the pause between the end of one cycle and the start
	// of the next.
	DefaultDelay = 5 * time.Second

	// DefaultLimit is the number of front-page rows considered per cycle.
	DefaultLimit = 30

	// DefaultOutputDir is the root directory that receives one subdirectory
	// per submission and the log.txt file. It is cleared at startup.
	DefaultOutputDir = "data"

	// DefaultTimeout bounds each individual fetch, connect and read included.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a single response is read.
	DefaultMaxBodySize = 32 * 1024 * 1024 // 32MB

	// DefaultUserAgent identifies hncrawl in HTTP requests.
	DefaultUserAgent = "hncrawl/1.0 (+https://github.com/nao1215/hncrawl)"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "hncrawl"

	// LogFileName is the name of the log file created in the output root.
	LogFileName = "log.txt"
)

// Config holds all configuration options for hncrawl.
// It is populated from defaults, the config file, the environment and CLI
// flags (in that order) and passed to components explicitly.
type Config struct {
	// BaseURL is the site root. The index page is fetched from BaseURL and
	// comment pages from BaseURL/item?id=N.
	BaseURL string `yaml:"base_url,omitempty"`

	// Delay is the fixed pause between cycles.
	Delay time.Duration `yaml:"delay,omitempty"`

	// Limit is the number of index rows inspected per cycle.
	Limit int `yaml:"limit,omitempty"`

	// OutputDir is the output root directory.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxBodySize is the maximum number of bytes read from one response.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Cookie is a raw cookie string sent with every request, e.g. to crawl
	// the site while logged in. It is redacted from logs.
	Cookie string `yaml:"cookie,omitempty"`

	// Proxy is an optional SOCKS5 proxy in "host:port" form.
	Proxy string `yaml:"proxy,omitempty"`

	// EmbeddedTor starts a private Tor daemon and routes every request
	// through it. Mutually exclusive with Proxy.
	EmbeddedTor bool `yaml:"embedded_tor,omitempty"`

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration `yaml:"tor_startup_timeout,omitempty"`

	// SaveToDB records runs, cycles and saved resources in the archive
	// database. The archive is never read back for deduplication.
	SaveToDB bool `yaml:"save_to_db,omitempty"`

	// DBDir is the directory holding the archive database.
	// Defaults to the XDG data directory (~/.local/share/hncrawl on Linux).
	DBDir string `yaml:"db_dir,omitempty"`

	// Verbose lowers the console log level to debug.
	Verbose bool `yaml:"verbose,omitempty"`

	// JSONLog writes log.txt as JSON lines instead of text.
	JSONLog bool `yaml:"json_log,omitempty"`

	// ConfigFilePath is the file the configuration was loaded from, if any.
	ConfigFilePath string `yaml:"-"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		Delay:             DefaultDelay,
		Limit:             DefaultLimit,
		OutputDir:         DefaultOutputDir,
		Timeout:           DefaultTimeout,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		TorStartupTimeout: DefaultTorStartupTimeout,
		SaveToDB:          true,
		DBDir:             XDGDataDir(),
	}
}

// LogFilePath returns the path of the log file inside the output root.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.OutputDir, LogFileName)
}

// XDGDataDir returns the XDG data directory for hncrawl.
// On Linux: ~/.local/share/hncrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for hncrawl.
// On Linux: ~/.config/hncrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Limit <= 0 {
		return ErrInvalidLimit
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	// A zero timeout would mean "no timeout" to net/http, and every fetch
	// must be bounded.
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Proxy != "" && c.EmbeddedTor {
		return ErrConflictingTransport
	}

	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}

	return nil
}
