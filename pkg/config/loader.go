package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Config.
const EnvPrefix = "CONTRACTS_"

// EnvLoader reads settings from .env files and the process
// environment. Process variables take precedence over file
// values.
type EnvLoader struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewEnvLoader creates an empty loader.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{vars: make(map[string]string)}
}

// Load merges the variables of a .env file into the loader.
func (l *EnvLoader) Load(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range vars {
		l.vars[k] = v
	}
	return nil
}

// Get returns the value of key, or "" if unset.
func (l *EnvLoader) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

// Lookup returns the value of key and whether it was set.
func (l *EnvLoader) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vars[key]
	return v, ok
}

// GetWithDefault returns the value of key or def when unset.
func (l *EnvLoader) GetWithDefault(key, def string) string {
	if v, ok := l.Lookup(key); ok && v != "" {
		return v
	}
	return def
}

// GetRequired returns the value of key or an error if it is
// unset or empty.
func (l *EnvLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}

// Set stores a value in the loader only; the process
// environment is left untouched.
func (l *EnvLoader) Set(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
}

// All returns a copy of the file-loaded variables.
func (l *EnvLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		out[k] = v
	}
	return out
}

// envSetter applies one prefixed variable to a field.
type envSetter struct {
	errs []error
	l    *EnvLoader
}

func (s *envSetter) str(name string, dst *string) {
	if v, ok := s.l.Lookup(EnvPrefix + name); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (s *envSetter) boolean(name string, dst *bool) {
	if v, ok := s.l.Lookup(EnvPrefix + name); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			s.errs = append(s.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*dst = b
	}
}

func (s *envSetter) integer(name string, dst *int) {
	if v, ok := s.l.Lookup(EnvPrefix + name); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			s.errs = append(s.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*dst = n
	}
}

func (s *envSetter) duration(name string, dst *time.Duration) {
	if v, ok := s.l.Lookup(EnvPrefix + name); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			s.errs = append(s.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		*dst = d
	}
}

func (s *envSetter) list(name string, dst *[]string) {
	if v, ok := s.l.Lookup(EnvPrefix + name); ok {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*dst = out
	}
}
