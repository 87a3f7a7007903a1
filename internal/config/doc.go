// Package config provides configuration loading, merging, and validation
// facilities for the farmlink client core.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables (defaults come from envDefault tags)
//  2. Command-line flags
//  3. JSON or YAML config file
//
// The main entry points are [GetStructuredConfig] for processes reading
// os.Args, [Load] for explicit arguments and [Defaults] for hosts that
// configure the core in code.
package config
