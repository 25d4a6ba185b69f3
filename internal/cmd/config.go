package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zfogg/inkwell/pkg/config"
	"github.com/zfogg/inkwell/pkg/formatter"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change client settings",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where settings and the session are stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "config:  %s\nsession: %s\n", config.GetConfigDir(), config.GetSessionPath())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting, e.g. api.base_url",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetString(args[0]))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a setting to your config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return fmt.Errorf("saving %s: %w", args[0], err)
		}
		formatter.PrintSuccess("%s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
