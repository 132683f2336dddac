package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables the loader reads.
const envPrefix = "RAGD_"

// Load loads configuration from an optional YAML file, then overrides
// with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (RAGD_SERVER_PORT, RAGD_LLM_API_KEY, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// The configPath parameter names the YAML file. An empty path or a
// missing file is fine; defaults plus environment cover everything.
//
// Environment variables map to config keys by stripping the prefix,
// lowercasing, and splitting on the first underscore; the vectorstore
// backend subsections split one level deeper:
//
//	RAGD_SERVER_PORT             -> server.port
//	RAGD_LLM_API_KEY             -> llm.api_key
//	RAGD_STORAGE_FILES_DIR       -> storage.files_dir
//	RAGD_VECTORSTORE_QDRANT_HOST -> vectorstore.qdrant.host
//	RAGD_VECTORSTORE_CHROMEM_PATH -> vectorstore.chromem.path
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// nestedSections lists the config sections with a second level of
// nesting; their env keys split on the first two underscores.
var nestedSections = map[string][]string{
	"vectorstore": {"chromem", "qdrant"},
}

// envKey maps an environment variable name to a config key.
//
//	RAGD_SERVER_PORT             -> server.port
//	RAGD_LLM_API_KEY             -> llm.api_key
//	RAGD_VECTORSTORE_QDRANT_HOST -> vectorstore.qdrant.host
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	section, rest := parts[0], parts[1]
	for _, sub := range nestedSections[section] {
		if strings.HasPrefix(rest, sub+"_") {
			return section + "." + sub + "." + strings.TrimPrefix(rest, sub+"_")
		}
	}
	return section + "." + rest
}
