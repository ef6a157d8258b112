package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the daemon.
// Note: the master password itself is never configured through the
// environment; it is either prompted at startup or supplied over the API.
type Config struct {
	Port                 string `envconfig:"PORT" default:"8080"`
	NodeURL              string `envconfig:"TENEBRA_NODE_URL" default:"https://tenebra.lil.gay"`
	DataDir              string `envconfig:"DATA_DIR" required:"true"`
	SyncIntervalMinutes  int    `envconfig:"SYNC_INTERVAL_MINUTES" default:"5"`
	WSEnabled            bool   `envconfig:"WS_ENABLED" default:"true"`
	PromptMasterPassword bool   `envconfig:"PROMPT_MASTER_PASSWORD" default:"false"`
	LogLevel             string `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetNodeURL returns the Tenebra node URL from configuration
func GetNodeURL() string {
	return Get().NodeURL
}

// GetDataDir returns the data directory from configuration
func GetDataDir() string {
	return Get().DataDir
}

// PromptForMasterPassword prompts the user for the master password in the
// terminal. The password is read without echoing (hidden input). Call this at
// startup before the server begins handling requests.
func PromptForMasterPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal: run the app interactively to enter the master password")
	}
	fmt.Fprint(os.Stderr, "Enter master password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read master password: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("master password cannot be empty")
	}

	password := string(raw)
	clear(raw)
	return password, nil
}
