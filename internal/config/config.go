// Package config provides functionality for managing configuration options
// for the dashboard and the CLI client using a config file, a .env file,
// environment variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Options holds the configuration values for the application.
type Options struct {
	// APIURL is the base URL of the inventory REST API.
	APIURL string `mapstructure:"api_url"`

	// Listen defines the dashboard's listening address (ip:port).
	Listen string `mapstructure:"listen"`

	// CredentialsFile is where the token pair is persisted.
	CredentialsFile string `mapstructure:"credentials_file"`

	LogLevel string        `mapstructure:"log_level"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// RateLimit caps outbound API requests per second. Zero disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	PageSize int `mapstructure:"page_size"`

	// PDFFont is an optional UTF-8 TTF font used by the PDF reports.
	PDFFont string `mapstructure:"pdf_font"`

	// TLSCert and TLSKey enable HTTPS on the dashboard when both are set.
	TLSCert string `mapstructure:"tls_cert"`
	TLSKey  string `mapstructure:"tls_key"`

	// CAFile is an extra CA bundle trusted when calling the API.
	CAFile string `mapstructure:"ca_file"`

	// WatchInterval is the period of the expiry watch. Zero disables it.
	WatchInterval time.Duration `mapstructure:"watch_interval"`

	// Config is the path to the config file.
	Config string `mapstructure:"-"`
}

// envKeys maps option keys to the environment variables that override them.
var envKeys = map[string]string{
	"api_url":          "MEDSTOCK_API_URL",
	"listen":           "MEDSTOCK_LISTEN",
	"credentials_file": "MEDSTOCK_CREDENTIALS",
	"log_level":        "MEDSTOCK_LOG_LEVEL",
	"timeout":          "MEDSTOCK_TIMEOUT",
	"rate_limit":       "MEDSTOCK_RATE_LIMIT",
	"rate_burst":       "MEDSTOCK_RATE_BURST",
	"page_size":        "MEDSTOCK_PAGE_SIZE",
	"pdf_font":         "MEDSTOCK_PDF_FONT",
	"tls_cert":         "MEDSTOCK_TLS_CERT",
	"tls_key":          "MEDSTOCK_TLS_KEY",
	"ca_file":          "MEDSTOCK_CA_FILE",
	"watch_interval":   "MEDSTOCK_WATCH_INTERVAL",
}

// flagKeys maps command-line flag names to option keys.
var flagKeys = map[string]string{
	"u":     "api_url",
	"a":     "listen",
	"creds": "credentials_file",
	"l":     "log_level",
	"font":  "pdf_font",
}

var configPath string

// init registers command-line flags.
func init() {
	flag.String("u", "", "inventory API base url")
	flag.String("a", "", "run dashboard on ip:port")
	flag.String("creds", "", "path to the credentials file")
	flag.String("l", "", "log level")
	flag.String("font", "", "path to a UTF-8 TTF font for PDF reports")
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.StringVar(&configPath, "c", "config.yaml", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	if p := os.Getenv("CONFIG"); p != "" {
		configPath = p
	}

	overrides := map[string]string{}
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})

	opts, err := Load(configPath, overrides)
	if err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	return opts
}

// Load builds the options from defaults, the config file at path (when it
// exists), a .env file in the working directory, environment variables and
// finally the explicit overrides, in increasing order of precedence.
func Load(path string, overrides map[string]string) (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	opts.Config = path
	return opts, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:3000")
	v.SetDefault("listen", "localhost:8080")
	v.SetDefault("credentials_file", defaultCredentialsFile())
	v.SetDefault("log_level", "info")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("rate_burst", 10)
	v.SetDefault("page_size", 6)
	v.SetDefault("pdf_font", "")
	v.SetDefault("tls_cert", "")
	v.SetDefault("tls_key", "")
	v.SetDefault("ca_file", "")
	v.SetDefault("watch_interval", time.Duration(0))
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".medstock", "credentials.json")
}
