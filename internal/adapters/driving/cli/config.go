package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quire/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings",
	Long: `Settings are stored in config.toml in the configuration directory.
Command line flags override them for a single run.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		value, ok, err := a.Settings.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if err := a.Settings.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := a.Config.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", style.Success.Render("✓"), args[0], args[1])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if err := a.Settings.Unset(args[0]); err != nil {
			return err
		}
		if err := a.Config.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s unset\n", style.Success.Render("✓"), args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if p := a.Config.Path(); p != "" {
			fmt.Fprintln(out, style.Muted.Render(p))
		}
		for _, key := range a.Settings.Keys() {
			value, ok, err := a.Settings.Get(key)
			if err != nil {
				return err
			}
			switch {
			case !ok:
				value = style.Muted.Render("(unset)")
			case key == services.KeyGitHubToken:
				value = maskSecret(value)
			}
			fmt.Fprintf(out, "%-28s %s\n", key, value)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configUnsetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
