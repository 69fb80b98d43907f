// Package config provides configuration structures and utilities for hncrawl.
// It defines the crawl settings (site, cadence, limits, output layout), the
// HTTP transport settings, and the archive database location, and resolves
// them from defaults, a YAML file and HNCRAWL_* environment variables.
package config
