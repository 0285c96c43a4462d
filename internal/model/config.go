package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default Bankwest Online Banking endpoints. Overridable through the
// config file, mostly so tests and staging runs can point elsewhere.
const (
	defaultLoginURL   = "https://ibs.bankwest.com.au/Session/PersonalLogin"
	defaultMailURL    = "https://ibs.bankwest.com.au/SecureMailWeb/MailPage.aspx?app=cm"
	defaultMessageURL = "https://ibs.bankwest.com.au/SecureMailWeb/ReadMailPage.aspx?msgid=%s&status=R"
)

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// LoginURL is the personal login page.
	LoginURL string `mapstructure:"login_url" yaml:"login_url"`

	// MailURL is the secure-mail listing page.
	MailURL string `mapstructure:"mail_url" yaml:"mail_url"`

	// MessageURL is the per-message page; %s is replaced with the
	// message ID.
	MessageURL string `mapstructure:"message_url" yaml:"message_url"`

	// OutputDir is where retrieved messages are written, one file each.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// ArchivePath is the sqlite index of already-retrieved message IDs.
	ArchivePath string `mapstructure:"archive_path" yaml:"archive_path"`

	// NavTimeoutSec bounds each navigation/wait step in the browser.
	NavTimeoutSec int `mapstructure:"nav_timeout_sec" yaml:"nav_timeout_sec"`

	// PAN optionally supplies the login identifier, also bound to the
	// PAN environment variable.
	PAN string `mapstructure:"pan" yaml:"pan"`

	// Password optionally supplies the password, also bound to the
	// PASSWORD environment variable. Prefer the keyring.
	Password string `mapstructure:"password" yaml:"password"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/retrieve-bankmail/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "retrieve-bankmail", "config.yaml")
}

// defaultDataDir returns the base directory for output and the archive.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "retrieve-bankmail")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	data := defaultDataDir()
	return &AppConfig{
		LoginURL:      defaultLoginURL,
		MailURL:       defaultMailURL,
		MessageURL:    defaultMessageURL,
		OutputDir:     filepath.Join(data, "mail"),
		ArchivePath:   filepath.Join(data, "archive.db"),
		NavTimeoutSec: 30,
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
// The pan and password keys are additionally bound to the PAN and
// PASSWORD environment variables.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	data := defaultDataDir()
	v.SetDefault("login_url", defaultLoginURL)
	v.SetDefault("mail_url", defaultMailURL)
	v.SetDefault("message_url", defaultMessageURL)
	v.SetDefault("output_dir", filepath.Join(data, "mail"))
	v.SetDefault("archive_path", filepath.Join(data, "archive.db"))
	v.SetDefault("nav_timeout_sec", 30)

	// The original keychain-less fallback: credentials from the
	// environment.
	_ = v.BindEnv("pan", "PAN")
	_ = v.BindEnv("password", "PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
