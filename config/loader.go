package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360/accessmon/errors"
)

// DefaultEnvPrefix prefixes every environment override, e.g. ACCESSMON_ALERT_RATE.
const DefaultEnvPrefix = "ACCESSMON"

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: false,
		envPrefix:  DefaultEnvPrefix,
		lookupEnv:  os.LookupEnv,
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// SetEnvPrefix changes the prefix used for environment overrides
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers over the defaults, then
// applies environment overrides.
func (l *Loader) Load() (Config, error) {
	cfg := DefaultConfig()

	for _, path := range l.layers {
		raw, err := l.loadRawLayer(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "Loader", "Load", fmt.Sprintf("load %s", path))
		}
		cfg, err = l.mergeFromMap(cfg, raw)
		if err != nil {
			return Config{}, errors.Wrap(err, "Loader", "Load", fmt.Sprintf("merge %s", path))
		}
	}

	if err := l.applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// loadRawLayer reads a JSON or YAML file as a map and checks it against the schema.
func (l *Loader) loadRawLayer(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrConfigNotFound, err),
			"Loader", "loadRawLayer", "read config file")
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
				"Loader", "loadRawLayer", "parse YAML")
		}
	default:
		if err := validateJSONDepth(data); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
				"Loader", "loadRawLayer", "check JSON structure")
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
				"Loader", "loadRawLayer", "parse JSON")
		}
	}

	// An empty YAML document decodes to a nil map.
	if raw == nil {
		raw = map[string]any{}
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base Config, override map[string]any) (Config, error) {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base, err
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base, err
	}

	mergedJSON, err := json.Marshal(l.deepMergeMaps(baseMap, override))
	if err != nil {
		return base, err
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return base, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
			"Loader", "mergeFromMap", "decode merged config")
	}

	return merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))

	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}

		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		result[k] = v
	}

	return result
}

// applyEnvOverrides applies PREFIX_FIELD environment variables over the file layers
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		key    string
		target *int64
	}{
		{"STATS_WINDOW", &cfg.StatsWindow},
		{"ALERT_WINDOW", &cfg.AlertWindow},
		{"ALERT_RATE", &cfg.AlertRate},
		{"MAX_TIMESTAMP_ERROR", &cfg.MaxTimestampError},
	}

	for _, o := range ints {
		name := l.envPrefix + "_" + o.key
		val, ok := l.lookupEnv(name)
		if !ok || val == "" {
			continue
		}
		if err := validateEnvVar(name, val); err != nil {
			return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
				"Loader", "applyEnvOverrides", "check "+name)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return errors.WrapInvalid(fmt.Errorf("%w: %s=%q is not an integer", errors.ErrInvalidConfig, name, val),
				"Loader", "applyEnvOverrides", "parse "+name)
		}
		*o.target = n
	}

	name := l.envPrefix + "_CHRONOLOGY_POLICY"
	if val, ok := l.lookupEnv(name); ok && val != "" {
		if err := validateEnvVar(name, val); err != nil {
			return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
				"Loader", "applyEnvOverrides", "check "+name)
		}
		cfg.ChronologyPolicy = strings.ToLower(strings.TrimSpace(val))
	}

	return nil
}
