package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/ragchat/internal/config"
	"github.com/diogo/ragchat/internal/render"
)

func newConfigCmd(deps *Dependencies) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long:  `Read and write ~/.ragchat/config.json.`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path, err := config.GetConfigPath(); err == nil {
				fmt.Fprintln(deps.Stderr, dimLine("# "+path))
			}
			data, err := json.MarshalIndent(deps.Config, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprintln(deps.Stdout, string(data))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long:  "Change one setting. Keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := validateSetting(key, value); err != nil {
				return err
			}

			cfg := *deps.Config
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := deps.SaveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			*deps.Config = cfg
			fmt.Fprintln(deps.Stdout, successLine(fmt.Sprintf("%s = %s", key, value)))
			return nil
		},
	}

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "List the settings accepted by config set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range config.Keys() {
				fmt.Fprintln(deps.Stdout, k)
			}
			return nil
		},
	}

	configCmd.AddCommand(showCmd, setCmd, keysCmd)
	return configCmd
}

// validateSetting checks values whose allowed set lives outside the config package
func validateSetting(key, value string) error {
	var allowed []string
	switch key {
	case "default_model":
		allowed = config.AvailableModels()
	case "tui_theme":
		if _, ok := render.PaletteByName(value); ok {
			return nil
		}
		allowed = render.PaletteNames()
	case "markdown.style":
		allowed = render.MarkdownStyles()
	default:
		return nil
	}

	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (choose one of: %s)", key, value, strings.Join(allowed, ", "))
}
