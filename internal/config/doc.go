// SPDX-License-Identifier: MPL-2.0

// Package config loads the blockdata configuration: where to cache client
// jars, where to publish datasets, which manifest endpoint to use, and
// optional overrides for the embedded legacy mapping tables.
//
// The config file is CUE, validated against an embedded schema before being
// merged into viper on top of the defaults. Environment variables prefixed
// with BLOCKDATA_ override file values.
package config
