package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/diogo/ragchat/internal/api"
	"github.com/diogo/ragchat/internal/config"
	"github.com/diogo/ragchat/internal/credential"
	"github.com/diogo/ragchat/internal/history"
	"github.com/diogo/ragchat/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// Fields left nil are built from the config file and flags on first use,
// so tests can inject mocks for any of them.
type Dependencies struct {
	// Global flags
	APIURL    string
	Model     string
	Verbose   bool
	NoPersist bool

	Config      *config.Config
	Client      api.GatewayClientInterface
	Credentials *credential.Manager

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Clipboard   func(string) error
	ReadSecret  func(prompt string) (string, error)
	SaveConfig  func(config.Config) error
	RunTUI      func(tui.Deps) error
	OpenHistory func() (*history.Store, error)
}

// NewDependencies creates a Dependencies struct with production defaults
func NewDependencies() *Dependencies {
	return &Dependencies{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Clipboard:   clipboard.WriteAll,
		ReadSecret:  readSecret,
		SaveConfig:  config.SaveConfig,
		RunTUI:      tui.Run,
		OpenHistory: history.DefaultStore,
	}
}

// setup loads the config, applies flag overrides and opens the client and
// the credential store
func (d *Dependencies) setup() error {
	if d.Config == nil {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(d.Stderr, "Warning: %v (using defaults)\n", err)
		}
		d.Config = &cfg
	}

	if d.APIURL != "" {
		d.Config.APIURL = strings.TrimRight(strings.TrimSpace(d.APIURL), "/")
	}
	if d.Model != "" {
		if !isKnownModel(d.Model) {
			return fmt.Errorf("unknown model %q (available: %s)", d.Model, strings.Join(config.AvailableModels(), ", "))
		}
		d.Config.DefaultModel = d.Model
	}
	if d.Verbose {
		d.Config.Verbose = true
	}

	if d.Client == nil {
		client, err := api.NewClient(d.Config.APIURL,
			api.WithTimeoutSeconds(d.Config.RequestTimeout),
			api.WithCredentialSource(d.credentialValue),
		)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		d.Client = client
	}

	if d.Credentials == nil {
		store, err := d.openStore()
		if err != nil {
			return err
		}
		d.Credentials = credential.NewManager(store, d.Client, credential.WithProbeModel(d.Config.DefaultModel))
		if err := d.Credentials.Load(); err != nil {
			return fmt.Errorf("failed to load API key: %w", err)
		}
	}

	d.verbosef("Gateway: %s", d.Config.APIURL)
	d.verbosef("Model: %s", d.Config.DefaultModel)
	return nil
}

func (d *Dependencies) openStore() (config.CredentialStore, error) {
	if d.NoPersist {
		d.verbosef("Credential store: memory (--no-persist)")
		return config.NewMemoryCredentialStore(""), nil
	}
	store, err := config.OpenCredentialStore(*d.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	d.verbosef("Credential store: %s", d.Config.CredentialStore)
	return store, nil
}

func (d *Dependencies) credentialValue() string {
	if d.Credentials == nil {
		return ""
	}
	return d.Credentials.Value()
}

func (d *Dependencies) close() {
	if d.Client != nil {
		d.Client.Close()
	}
}

// verbosef prints a [verbose] line to stderr when verbose output is on
func (d *Dependencies) verbosef(format string, args ...any) {
	if d.Config == nil || !d.Config.Verbose {
		return
	}
	fmt.Fprintf(d.Stderr, "[verbose] "+format+"\n", args...)
}

func isKnownModel(name string) bool {
	for _, m := range config.AvailableModels() {
		if m == name {
			return true
		}
	}
	return false
}
