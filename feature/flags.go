package feature

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/go-playground/validator/v10"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
)

// DefaultEnvPrefix is the environment variable prefix scanned for flags.
// FEATURE_ADVANCED_ANALYTICS=true seeds the flag "advanced-analytics".
const DefaultEnvPrefix = "FEATURE_"

// Config describes a single flag. Environment-seeded flags carry only
// Enabled; rollout and targeting require programmatic registration.
type Config struct {
	Enabled           bool     `json:"enabled" yaml:"enabled"`
	RolloutPercentage *int     `json:"rollout_percentage,omitempty" yaml:"rollout_percentage" validate:"omitempty,min=0,max=100"`
	EnabledTenants    []string `json:"enabled_tenants,omitempty" yaml:"enabled_tenants"`
	EnabledUsers      []string `json:"enabled_users,omitempty" yaml:"enabled_users"`
}

func (c *Config) clone() *Config {
	cp := &Config{Enabled: c.Enabled}
	if c.RolloutPercentage != nil {
		pct := *c.RolloutPercentage
		cp.RolloutPercentage = &pct
	}
	cp.EnabledTenants = append([]string(nil), c.EnabledTenants...)
	cp.EnabledUsers = append([]string(nil), c.EnabledUsers...)
	return cp
}

// Flags holds the flag table. Safe for concurrent use.
type Flags struct {
	mu       sync.RWMutex
	flags    map[string]*Config
	validate *validator.Validate
}

// Option configures a Flags instance at construction
type Option func(*Flags)

// WithEnviron seeds boolean flags from the given environment in the form
// produced by os.Environ(), matching keys with the prefix
func WithEnviron(environ []string, prefix string) Option {
	return func(f *Flags) { f.seedFromEnviron(environ, prefix) }
}

// New creates a Flags instance
func New(opts ...Option) *Flags {
	f := &Flags{
		flags:    make(map[string]*Config),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// seedFromEnviron registers enabled-only flags from environment variables
func (f *Flags) seedFromEnviron(environ []string, prefix string) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, prefix) {
			continue
		}

		name := flagNameFromEnv(strings.TrimPrefix(key, prefix))
		if name == "" {
			continue
		}

		f.flags[name] = &Config{Enabled: parseBool(value)}
	}
}

// flagNameFromEnv converts FOO_BAR to foo-bar
func flagNameFromEnv(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", "-"))
}

// parseBool accepts the usual truthy spellings
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// Register registers or overrides a flag with the full config shape
func (f *Flags) Register(name string, cfg *Config) error {
	if name == "" {
		return fmt.Errorf("flag name is required")
	}
	if cfg == nil {
		return fmt.Errorf("flag %q: config is required", name)
	}
	if err := f.validate.Struct(cfg); err != nil {
		return fmt.Errorf("flag %q: invalid config: %w", name, err)
	}

	f.mu.Lock()
	f.flags[name] = cfg.clone()
	f.mu.Unlock()

	logger.Debugf(nil, "registered feature flag %q (enabled=%v)", name, cfg.Enabled)
	return nil
}

// IsEnabled reports whether a flag is enabled with no actor scope
func (f *Flags) IsEnabled(name string) bool {
	return f.IsEnabledFor(name, "", "")
}

// IsEnabledFor resolves a flag for the given user and tenant. Empty IDs
// mean the scope was not provided. Resolution order, first match wins:
// unknown flag, disabled flag, tenant targeting, user targeting,
// percentage rollout, fully enabled.
func (f *Flags) IsEnabledFor(name, userID, tenantID string) bool {
	f.mu.RLock()
	cfg, ok := f.flags[name]
	f.mu.RUnlock()

	if !ok {
		return false
	}
	if !cfg.Enabled {
		return false
	}

	if tenantID != "" && len(cfg.EnabledTenants) > 0 {
		return contains(cfg.EnabledTenants, tenantID)
	}

	if userID != "" && len(cfg.EnabledUsers) > 0 {
		return contains(cfg.EnabledUsers, userID)
	}

	if cfg.RolloutPercentage != nil && userID != "" {
		return rolloutBucket(userID) < *cfg.RolloutPercentage
	}

	return true
}

// rolloutBucket maps a user ID to a stable bucket in [0, 100). The same
// user lands in the same bucket across calls and process restarts.
func rolloutBucket(userID string) int {
	return int(xxhash.Sum64String(userID) % 100)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// GetConfig returns a copy of the named flag's config, or nil if unknown
func (f *Flags) GetConfig(name string) *Config {
	f.mu.RLock()
	defer f.mu.RUnlock()

	cfg, ok := f.flags[name]
	if !ok {
		return nil
	}
	return cfg.clone()
}

// All returns a defensive copy of the full flag table
func (f *Flags) All() map[string]*Config {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]*Config, len(f.flags))
	for name, cfg := range f.flags {
		out[name] = cfg.clone()
	}
	return out
}
