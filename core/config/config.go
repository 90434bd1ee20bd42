package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ErrConfiguration marks any failure to resolve required configuration.
var ErrConfiguration = errors.New("configuration error")

// ProcessEnv converts an os.Environ style slice into a layer.
func ProcessEnv(environ []string) map[string]string {
	return env.ToMap(environ)
}

// Environ merges layers. The first layer that sets a key wins,
// even when the value it sets is empty.
func Environ(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for key, value := range layer {
			if _, ok := merged[key]; ok {
				continue
			}
			merged[key] = value
		}
	}
	return merged
}

// Load populates dst from environ using `env` struct tags.
// dst must be a non-nil pointer to a struct.
func Load(dst any, environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}

	err := env.ParseWithOptions(dst, env.Options{
		Environment: environ,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return nil
}

// RejectBlank reports keys that are present in environ but blank.
// Load applies envDefault to such keys as if they were unset, so callers
// use it for keys whose default must only fill an absent value.
func RejectBlank(environ map[string]string, keys ...string) error {
	for _, key := range keys {
		if value, ok := environ[key]; ok && strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: environment variable %q is set but empty", ErrConfiguration, key)
		}
	}
	return nil
}
