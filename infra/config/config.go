package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName   = "scrollfeed"
	envPrefix = "SCROLLFEED"

	DefaultBaseURL  = "https://jsonplaceholder.typicode.com"
	DefaultPageSize = 5
	DefaultStartID  = 1
	DefaultLogLevel = "INFO"

	maxPageSize = 100
)

// Config holds application-level configuration.
type Config struct {
	BaseURL  string        // e.g. "https://jsonplaceholder.typicode.com"
	PageSize int           // Post ids requested per page
	StartID  int           // First post id
	Timeout  time.Duration // Per-request timeout, 0 for none
	LogPath  string        // JSON log file, empty to discard
	LogLevel string        // DEBUG, INFO, WARN or ERROR
	File     string        // Config file that was read, if any
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "config file (default is $HOME/.config/scrollfeed/config.yaml)")
	fs.String("base-url", DefaultBaseURL, "API base URL")
	fs.Int("page-size", DefaultPageSize, "post ids requested per page")
	fs.Int("start-id", DefaultStartID, "first post id to fetch")
	fs.Duration("timeout", 0, "per-request timeout (0 disables)")
	fs.String("log-file", "", "write JSON logs to this file")
	fs.String("log-level", DefaultLogLevel, "log level: DEBUG, INFO, WARN, ERROR")
}

// flagKeys maps config keys to their flag names.
var flagKeys = map[string]string{
	"base_url":  "base-url",
	"page_size": "page-size",
	"start_id":  "start-id",
	"timeout":   "timeout",
	"log.file":  "log-file",
	"log.level": "log-level",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("start_id", DefaultStartID)
	v.SetDefault("timeout", "0s")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", DefaultLogLevel)
}

// Load resolves configuration from, in order of precedence, changed flags,
// SCROLLFEED_* environment variables, the YAML config file and defaults.
//
//	SCROLLFEED_BASE_URL  : API base URL (default: jsonplaceholder)
//	SCROLLFEED_PAGE_SIZE : ids per page (default: 5)
//	SCROLLFEED_START_ID  : first post id (default: 1)
//	SCROLLFEED_TIMEOUT   : per-request timeout, e.g. "10s" (default: none)
//	SCROLLFEED_LOG_FILE  : JSON log file (default: discard)
//	SCROLLFEED_LOG_LEVEL : log level (default: INFO)
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := ""
	if fs != nil {
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
		explicit, _ = fs.GetString("config")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		BaseURL:  strings.TrimSpace(v.GetString("base_url")),
		PageSize: v.GetInt("page_size"),
		StartID:  v.GetInt("start_id"),
		Timeout:  v.GetDuration("timeout"),
		LogPath:  strings.TrimSpace(v.GetString("log.file")),
		LogLevel: strings.ToUpper(strings.TrimSpace(v.GetString("log.level"))),
		File:     v.ConfigFileUsed(),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid base_url: must be an absolute URL")
	}
	switch parsed.Scheme {
	case "https":
	case "http":
		if !isLoopback(parsed.Hostname()) {
			return fmt.Errorf("invalid base_url: http is only allowed for loopback hosts")
		}
	default:
		return fmt.Errorf("invalid base_url: unsupported scheme %q", parsed.Scheme)
	}
	c.BaseURL = strings.TrimRight(parsed.String(), "/")

	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return fmt.Errorf("invalid page_size %d: must be between 1 and %d", c.PageSize, maxPageSize)
	}
	if c.StartID < 0 {
		return fmt.Errorf("invalid start_id %d: must not be negative", c.StartID)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}
	return nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Dir returns the directory holding the config file.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".config", appName)
}
