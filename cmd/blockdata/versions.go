// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"blockdata-cli/internal/build"
	"blockdata-cli/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List game versions with a built data set",
	Long: `List game versions with a built data set.

A version counts as built when its directory under the data directory
contains the complete set of records; partially written directories
(from interrupted runs of other tools) are ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersions()
	},
}

func runVersions() error {
	cfg, err := config.Load()
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	dataDir := string(cfg.DataDir)
	if buildDataDir != "" {
		dataDir = buildDataDir
	}

	versions, err := listBuiltVersions(dataDir)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if len(versions) == 0 {
		fmt.Println(SubtitleStyle.Render("No data sets built yet."))
		fmt.Printf("Run %s to build one.\n", CmdStyle.Render("blockdata build --mc-version <version>"))
		return nil
	}

	fmt.Println(TitleStyle.Render("Built data sets") + SubtitleStyle.Render(" ("+dataDir+")"))
	for _, v := range versions {
		fmt.Printf("  %s\n", SuccessStyle.Render(v))
	}
	return nil
}

// listBuiltVersions returns the sorted names of data-dir subdirectories
// holding a complete data set.
func listBuiltVersions(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	var versions []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if build.DatasetExists(filepath.Join(dataDir, e.Name())) {
			versions = append(versions, e.Name())
		}
	}
	slices.Sort(versions)
	return versions, nil
}
