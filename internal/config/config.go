// Package config handles configuration and credential storage for ragchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diogo/ragchat/internal/models"
)

// EnvAPIURL overrides the gateway base URL. It is read once, by LoadConfig.
const EnvAPIURL = "RAGCHAT_API_URL"

// DefaultAPIURL is the gateway base URL used when nothing is configured
const DefaultAPIURL = "http://localhost:8000/api"

// Credential store kinds
const (
	CredentialStoreFile    = "file"
	CredentialStoreKeyring = "keyring"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style       string `json:"style"`        // "dark", "light", "dracula", ...
	EnableEmoji bool   `json:"enable_emoji"` // Convert :emoji: to unicode
	TableWrap   bool   `json:"table_wrap"`   // Enable word wrap in table cells
}

// Config represents the user configuration
type Config struct {
	APIURL           string `json:"api_url"`
	DefaultModel     string `json:"default_model"`
	DeveloperMessage string `json:"developer_message"`
	// CredentialStore selects where the API key is persisted: "file" or "keyring".
	CredentialStore string `json:"credential_store"`
	// RequestTimeout is the transport timeout in seconds. Streams are bounded by it too.
	RequestTimeout  int            `json:"request_timeout"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:       "dark",
		EnableEmoji: true,
		TableWrap:   true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		APIURL:           DefaultAPIURL,
		DefaultModel:     models.DefaultModel.Name,
		DeveloperMessage: models.DefaultDeveloperMessage,
		CredentialStore:  CredentialStoreFile,
		RequestTimeout:   300,
		Verbose:          false,
		CopyToClipboard:  false,
		TUITheme:         "tokyonight",
		Markdown:         DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".ragchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetCredentialPath returns the path to the file-backed credential
func GetCredentialPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "credential.json"), nil
}

// LoadConfig loads the configuration from disk and applies the base-URL
// environment override.
func LoadConfig() (Config, error) {
	cfg, err := loadConfigFile()
	applyEnv(&cfg)
	return cfg, err
}

func loadConfigFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if url := strings.TrimSpace(os.Getenv(EnvAPIURL)); url != "" {
		cfg.APIURL = url
	}
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AvailableModels returns a list of available model names
func AvailableModels() []string {
	all := models.AllModels()
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Name
	}
	return names
}

// Set updates a single config key from its string form. Used by `config set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "api_url":
		c.APIURL = strings.TrimRight(strings.TrimSpace(value), "/")
	case "default_model":
		c.DefaultModel = value
	case "developer_message":
		c.DeveloperMessage = value
	case "credential_store":
		if value != CredentialStoreFile && value != CredentialStoreKeyring {
			return fmt.Errorf("credential_store must be %q or %q", CredentialStoreFile, CredentialStoreKeyring)
		}
		c.CredentialStore = value
	case "request_timeout":
		var secs int
		if _, err := fmt.Sscanf(value, "%d", &secs); err != nil || secs <= 0 {
			return fmt.Errorf("request_timeout must be a positive number of seconds")
		}
		c.RequestTimeout = secs
	case "verbose":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.Verbose = b
	case "copy_to_clipboard":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.CopyToClipboard = b
	case "tui_theme":
		c.TUITheme = value
	case "markdown.style":
		c.Markdown.Style = value
	case "markdown.emoji":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.Markdown.EnableEmoji = b
	case "markdown.table_wrap":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.Markdown.TableWrap = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Keys lists the keys accepted by Set
func Keys() []string {
	return []string{
		"api_url",
		"default_model",
		"developer_message",
		"credential_store",
		"request_timeout",
		"verbose",
		"copy_to_clipboard",
		"tui_theme",
		"markdown.style",
		"markdown.emoji",
		"markdown.table_wrap",
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %s", value)
}
