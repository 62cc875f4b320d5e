// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"blockdata-cli/internal/build"
	"blockdata-cli/internal/config"
	"blockdata-cli/internal/issue"
	"blockdata-cli/internal/legacy"
	"blockdata-cli/internal/mojang"
	"blockdata-cli/internal/resource"

	"github.com/spf13/cobra"
)

var (
	buildVersion     string
	buildCacheDir    string
	buildDataDir     string
	buildManifestURL string
	buildForce       bool

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the data set for one game version",
		Long: `Build the data set for one game version.

The client jar for the requested version is downloaded from the Mojang
version manifest (or reused from the cache directory), its block states,
block models, and textures are resolved, and the resulting JSON records
are published under <data-dir>/<version>/.

If the version's data set already exists, the build is skipped unless
--force is given; a skipped build exits with status 2 so scripts can
tell "already built" apart from "built" and "failed".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd)
		},
	}
)

func init() {
	buildCmd.Flags().StringVar(&buildVersion, "mc-version", "", "game version to build (e.g. 1.21.4)")
	buildCmd.Flags().StringVar(&buildCacheDir, "cache-dir", "", "directory client jars are cached in")
	buildCmd.Flags().StringVar(&buildDataDir, "data-dir", "", "dataset root directory")
	buildCmd.Flags().StringVar(&buildManifestURL, "manifest-url", "", "version manifest URL (defaults to the Mojang launcher manifest)")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "rebuild even if the data set already exists")

	if err := buildCmd.MarkFlagRequired("mc-version"); err != nil {
		panic(fmt.Sprintf("mark mc-version required: %v", err))
	}
}

func runBuild(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	cacheDir := firstNonEmpty(buildCacheDir, string(cfg.CacheDir))
	dataDir := firstNonEmpty(buildDataDir, string(cfg.DataDir))
	manifestURL := firstNonEmpty(buildManifestURL, string(cfg.ManifestURL))

	index, err := loadLegacyIndex(cfg)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	client := mojang.NewClient(manifestURL, slog.Default())
	jarPath, err := client.EnsureJar(ctx, buildVersion, cacheDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: ExitFailure, Err: err}
	}

	jar, err := resource.OpenJar(jarPath)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "open client jar", jarPath)}
	}
	defer jar.Close()

	pipeline := &build.Pipeline{
		Lookup: jar,
		Legacy: index,
		Logger: slog.Default(),
	}

	result, err := pipeline.Run(ctx, build.Options{
		Version: buildVersion,
		DataDir: dataDir,
		Force:   buildForce,
	})
	if err != nil {
		var buildErr *issue.BuildFailedError
		if errors.As(err, &buildErr) {
			fmt.Fprint(os.Stderr, buildErr.Render())
		} else {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		}
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if result.Skipped {
		fmt.Printf("%s data set for %s already exists at %s (use --force to rebuild)\n",
			WarningStyle.Render("Skipped:"), CmdStyle.Render(result.Version), result.Path)
		return &ExitError{Code: ExitNothingToDo, Err: fmt.Errorf("nothing to do: %s is already built", result.Version)}
	}

	fmt.Printf("%s built %s: %d blocks, %d models, %d items, %d textures\n",
		SuccessStyle.Render("Done:"), CmdStyle.Render(result.Version),
		result.Blocks, result.Models, result.Items, result.Textures)
	fmt.Printf("  %s\n", SubtitleStyle.Render(result.Path))
	return nil
}

// loadLegacyIndex loads the embedded legacy tables, or the override files
// named in the configuration when set.
func loadLegacyIndex(cfg *config.Config) (*legacy.Index, error) {
	if cfg.Legacy.PreFlattening == "" && cfg.Legacy.Renames == "" {
		return legacy.Load()
	}

	pre, err := readOptionalTable(cfg.Legacy.PreFlattening, legacy.EmbeddedPreFlattening())
	if err != nil {
		return nil, err
	}
	renames, err := readOptionalTable(cfg.Legacy.Renames, legacy.EmbeddedRenames())
	if err != nil {
		return nil, err
	}
	return legacy.LoadFrom(pre, renames)
}

// readOptionalTable reads the override file at path, or returns the embedded
// fallback when no override is configured.
func readOptionalTable(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load legacy table").
			WithResource(path).
			WithSuggestion("Check the legacy table paths in the configuration").
			Wrap(err).
			BuildError()
	}
	return data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
