package domain

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// CacheBackend names a ModelSnapshotStore implementation.
type CacheBackend string

const (
	// CacheBackendFile stores one file per fingerprint below .kiln/configuration-cache.
	CacheBackendFile CacheBackend = "file"
	// CacheBackendSQLite stores entries in a sqlite database below .kiln.
	CacheBackendSQLite CacheBackend = "sqlite"
	// CacheBackendRedis stores entries in a shared redis instance.
	CacheBackendRedis CacheBackend = "redis"
)

// ParseCacheBackend normalizes a backend name. An empty name selects the file backend.
func ParseCacheBackend(s string) (CacheBackend, error) {
	switch b := CacheBackend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return CacheBackendFile, nil
	case CacheBackendFile, CacheBackendSQLite, CacheBackendRedis:
		return b, nil
	default:
		return "", zerr.With(ErrUnknownCacheBackend, "backend", s)
	}
}

// CacheOptions configures where configuration cache entries are kept.
type CacheOptions struct {
	Backend CacheBackend
	// Dir overrides the default cache location for the file and sqlite backends.
	Dir string
	// DSN is the connection string for the redis backend.
	DSN string
	// TTL bounds the lifetime of redis entries. Zero keeps them forever.
	TTL time.Duration
}

// StartParameters are the process-wide inputs of one build, resolved before any model work.
type StartParameters struct {
	// RequestedTasks are the task selectors given on the command line, in order.
	RequestedTasks []string
	// ConfigurationCache enables the cache-aware build model controller.
	ConfigurationCache bool
	// ContinueOnFailure keeps evaluating remaining projects after one fails.
	ContinueOnFailure bool
	// DryRun prepares the execution plan without running any task.
	DryRun bool
	// WorkingDir is where settings discovery starts.
	WorkingDir string
	// RootDir is the discovered workspace root.
	RootDir string
	// SettingsFile is the absolute path of the discovered settings file.
	SettingsFile string
	// Properties are -P key=value project properties visible to build scripts.
	Properties map[string]string
	// Environment holds the process environment visible to build scripts.
	Environment map[string]string
	// Cache configures the snapshot store.
	Cache CacheOptions
}

// ParseProperties turns key=value pairs into a property map.
func ParseProperties(pairs []string) (map[string]string, error) {
	props := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, zerr.With(ErrInvalidProperty, "property", pair)
		}
		props[strings.TrimSpace(k)] = v
	}
	return props, nil
}

// EnvironmentFromList converts "KEY=VALUE" entries, as returned by os.Environ, into a map.
func EnvironmentFromList(entries []string) map[string]string {
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// PropertyKeys returns the property names in sorted order.
func (p *StartParameters) PropertyKeys() []string {
	return slices.Sorted(maps.Keys(p.Properties))
}

// BuildInvocation identifies one build run.
type BuildInvocation struct {
	ID        uuid.UUID
	Params    StartParameters
	StartedAt time.Time
}

// NewBuildInvocation creates an invocation with a fresh identifier.
func NewBuildInvocation(params StartParameters) *BuildInvocation {
	return &BuildInvocation{
		ID:        uuid.New(),
		Params:    params,
		StartedAt: time.Now(),
	}
}

// CacheEnabled reports whether the configuration cache was requested for this invocation.
func (inv *BuildInvocation) CacheEnabled() bool {
	return inv.Params.ConfigurationCache
}
