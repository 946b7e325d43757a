// Package config loads typed configuration from a YAML file and the environment.
//
// A configuration struct declares both sources with field tags:
//
//	type Config struct {
//	    Server ServerConfig  `yaml:"server"`
//	    Log    logger.Config `yaml:"log"`
//	}
//
//	type ServerConfig struct {
//	    Address string `yaml:"address" env:"SERVER_ADDRESS" envDefault:":8080"`
//	}
//
// [Load] applies envDefault values first, then the YAML file, then any
// environment variable that is set. Nested structs are walked by both the
// YAML decoder (gopkg.in/yaml.v3) and the env parser (caarlos0/env).
package config
