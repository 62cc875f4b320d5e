// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidDataDirPath is returned when a DataDirPath value is whitespace-only.
	ErrInvalidDataDirPath = errors.New("invalid data dir path")
	// ErrInvalidManifestURL is returned when a ManifestURL value is not http(s).
	ErrInvalidManifestURL = errors.New("invalid manifest URL")
)

type (
	// CacheDirPath is the directory client jars are downloaded into.
	// The zero value ("") means "use the default cache directory".
	CacheDirPath string

	// DataDirPath is the dataset root directory.
	// The zero value ("") means "use the default data directory".
	DataDirPath string

	// ManifestURL is the launcher version manifest endpoint.
	// The zero value ("") means "use the official Mojang endpoint".
	ManifestURL string

	// LegacyTables points at override files for the embedded legacy mapping
	// tables. Empty fields keep the embedded data.
	LegacyTables struct {
		PreFlattening string `mapstructure:"pre_flattening"`
		Renames       string `mapstructure:"renames"`
	}

	// UIConfig holds terminal output preferences.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose"`
	}

	// Config is the root blockdata configuration.
	Config struct {
		CacheDir    CacheDirPath `mapstructure:"cache_dir"`
		DataDir     DataDirPath  `mapstructure:"data_dir"`
		ManifestURL ManifestURL  `mapstructure:"manifest_url"`
		Legacy      LegacyTables `mapstructure:"legacy"`
		UI          UIConfig     `mapstructure:"ui"`
	}
)

// Validate checks constraints the CUE schema cannot express.
func (p CacheDirPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: whitespace-only", ErrInvalidCacheDirPath)
	}
	return nil
}

// Validate checks constraints the CUE schema cannot express.
func (p DataDirPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: whitespace-only", ErrInvalidDataDirPath)
	}
	return nil
}

// Validate checks that a non-empty URL uses an http(s) scheme.
func (u ManifestURL) Validate() error {
	if u == "" {
		return nil
	}
	if !strings.HasPrefix(string(u), "http://") && !strings.HasPrefix(string(u), "https://") {
		return fmt.Errorf("%w: %q", ErrInvalidManifestURL, string(u))
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.CacheDir.Validate(); err != nil {
		return err
	}
	if err := c.DataDir.Validate(); err != nil {
		return err
	}
	return c.ManifestURL.Validate()
}

// DefaultConfig returns the built-in defaults: the original layout of a
// .cache jar cache and a data dataset root in the working directory, against
// the official manifest endpoint.
func DefaultConfig() *Config {
	return &Config{
		CacheDir: ".cache",
		DataDir:  "data",
	}
}
