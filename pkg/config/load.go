// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Load builds the configuration from the process environment overlaid on
// envFile. An empty envFile means DefaultEnvFile, which may be absent; a
// named file must exist.
func Load(envFile string) (*Config, error) {
	return LoadWithEnviron(envFile, os.Environ())
}

// LoadWithEnviron is Load with an explicit process environment in
// os.Environ form.
func LoadWithEnviron(envFile string, environ []string) (*Config, error) {
	vars, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// readEnvFile returns the variables defined in a dotenv file.
func readEnvFile(path string) (map[string]string, error) {
	optional := path == ""
	if optional {
		path = DefaultEnvFile
	}

	vars := make(map[string]string)
	if _, err := os.Stat(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return vars, nil
		}
		return nil, fmt.Errorf(errFileNotFound, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	// viper lowercases keys; environment variable names here are upper case.
	for _, key := range v.AllKeys() {
		vars[strings.ToUpper(key)] = v.GetString(key)
	}
	slog.Debug("loaded env file", "path", path, "variables", len(vars))
	return vars, nil
}
