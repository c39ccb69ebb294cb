package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/config"
)

var configOpts struct {
	validate bool
	write    bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the effective configuration as TOML: the defaults overlaid with
the config file.

With --validate the config file is only checked. With --write the effective
configuration is saved to the config path if no file exists there yet.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.validate, "validate", false,
		"Only check the config file")
	configCmd.Flags().BoolVar(&configOpts.write, "write", false,
		"Write the effective configuration to the config path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := globalOpts.configPath
	if path == "" {
		path = config.ConfigPath()
	}

	if configOpts.validate {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
		return nil
	}

	if configOpts.write {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
