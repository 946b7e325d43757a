package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load reads configuration into a new T.
//
// Values come from three layers, later ones winning: envDefault tags,
// the YAML file at path, and environment variables named by env tags.
// An empty path or a missing file skips the YAML layer. Unknown YAML keys
// are rejected.
//
//	type Config struct {
//	    Addr  string `yaml:"addr" env:"ADDR" envDefault:":8080"`
//	    Redis string `yaml:"redis_url" env:"REDIS_URL"`
//	}
//
//	cfg, err := config.Load[Config]("config.yaml")
func Load[T any](path string) (T, error) {
	var cfg T

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParseEnv, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
		default:
			if err := decodeYAML(bytes.NewReader(data), &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if err := parseEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadFromReader is like Load but reads YAML from r.
func LoadFromReader[T any](r io.Reader) (T, error) {
	var cfg T

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParseEnv, err)
	}
	if err := decodeYAML(r, &cfg); err != nil {
		return cfg, err
	}
	if err := parseEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](path string) T {
	cfg, err := Load[T](path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decodeYAML(r io.Reader, cfg any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrParseYAML, err)
	}
	return nil
}

// parseEnvOverrides applies only variables that are actually set, so YAML
// values are not reset to their envDefault.
func parseEnvOverrides(cfg any) error {
	err := env.ParseWithOptions(cfg, env.Options{
		DefaultValueTagName: "-",
	})
	if err != nil {
		return errors.Join(ErrParseEnv, err)
	}
	return nil
}
