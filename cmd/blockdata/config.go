// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"blockdata-cli/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage blockdata configuration",
	Long: `Manage blockdata configuration.

Configuration is stored in:
  - Linux: ~/.config/blockdata/config.cue
  - macOS: ~/Library/Application Support/blockdata/config.cue
  - Windows: %APPDATA%\blockdata\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgPath, pathErr := resolvedConfigPath()
	if pathErr == nil && cfgPath != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", CmdStyle.Render("cache_dir"), SuccessStyle.Render(string(cfg.CacheDir)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("data_dir"), SuccessStyle.Render(string(cfg.DataDir)))
	manifestURL := string(cfg.ManifestURL)
	if manifestURL == "" {
		manifestURL = "(Mojang launcher manifest)"
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("manifest_url"), SuccessStyle.Render(manifestURL))
	if cfg.Legacy.PreFlattening != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("legacy.pre_flattening"), SuccessStyle.Render(cfg.Legacy.PreFlattening))
	}
	if cfg.Legacy.Renames != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("legacy.renames"), SuccessStyle.Render(cfg.Legacy.Renames))
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("ui.verbose"), SuccessStyle.Render(fmt.Sprintf("%t", cfg.UI.Verbose)))
	return nil
}

func showConfigPath() error {
	cfgPath, err := resolvedConfigPath()
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if cfgPath == "" {
		cfgDir, dirErr := config.ConfigDir()
		if dirErr != nil {
			return &ExitError{Code: ExitFailure, Err: dirErr}
		}
		fmt.Printf("%s %s\n",
			SubtitleStyle.Render("No config file found; would be created at:"),
			filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
		return nil
	}
	fmt.Println(cfgPath)
	return nil
}

// resolvedConfigPath returns the config file that Load() would read, or ""
// when only defaults apply.
func resolvedConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
		return path, nil
	}
	return "", nil
}
