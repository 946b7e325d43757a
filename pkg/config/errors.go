package config

import "errors"

var (
	ErrReadFile  = errors.New("config: failed to read file")
	ErrParseYAML = errors.New("config: failed to parse yaml")
	ErrParseEnv  = errors.New("config: failed to parse environment")
)
