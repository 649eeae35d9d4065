package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Reads and writes settings in the TOML config file under ~/.lectern.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		val, ok := configStore.Get(args[0])
		if !ok {
			return fmt.Errorf("key %q is not set", args[0])
		}
		cmd.Printf("%v\n", val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value. Values that parse as integers, floats or
booleans are stored typed; everything else is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configStore.Set(args[0], parseValue(args[1])); err != nil {
			return fmt.Errorf("set %s: %w", args[0], err)
		}
		cmd.Printf("Set %s\n", args[0])
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Set a secret value without echoing it",
	Long: `Prompts for a value with terminal echo disabled, for API keys and
other secrets that should not end up in shell history.

Example:
  lectern config set-key anthropic.api_key`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configStore.Delete(args[0]); err != nil {
			return fmt.Errorf("unset %s: %w", args[0], err)
		}
		cmd.Printf("Unset %s\n", args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		keys := configStore.Keys()
		if len(keys) == 0 {
			cmd.Printf("No configuration set. File: %s\n", configStore.Path())
			return nil
		}
		for _, key := range keys {
			val, _ := configStore.Get(key)
			if isSecretKey(key) {
				val = "********"
			}
			cmd.Printf("%s = %v\n", key, val)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("set-key requires an interactive terminal")
	}

	cmd.Printf("Value for %s: ", args[0])
	secret, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("empty value")
	}

	if err := configStore.Set(args[0], string(secret)); err != nil {
		return fmt.Errorf("set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

// parseValue converts a CLI string to a typed config value.
func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// isSecretKey reports whether a config key holds a secret.
func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "password")
}
