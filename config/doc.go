// Package config provides the tunables of a monitoring run and the loader that
// builds them from files and the environment.
//
// # Core Components
//
// Config: immutable value with the stats chunk width, the alert window and
// threshold, the tolerated timestamp error, and the chronology policy.
// DefaultConfig returns the documented defaults; Validate names the first
// field that is out of range.
//
// Loader: layers JSON or YAML files over the defaults, checks each layer
// against the embedded JSON schema, then applies ACCESSMON_* environment
// overrides.
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddLayer("accessmon.yaml")
//	loader.AddLayer("overrides.json") // Overrides the first layer
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//	    return err
//	}
//
// # Environment Overrides
//
//	ACCESSMON_STATS_WINDOW=30
//	ACCESSMON_ALERT_WINDOW=60
//	ACCESSMON_ALERT_RATE=5
//	ACCESSMON_MAX_TIMESTAMP_ERROR=2
//	ACCESSMON_CHRONOLOGY_POLICY=skip
//
// # Security
//
// Files are read through safeReadFile, which bounds path length and file size,
// refuses non-regular files and unknown extensions, and keeps relative paths
// inside the working directory. JSON nesting depth is checked before decoding.
package config
