package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

// DataSource selects which statistics backend feeds library analysis.
type DataSource string

const (
	SourceAuto     DataSource = "auto"
	SourcePlex     DataSource = "plex"
	SourceTautulli DataSource = "tautulli"
)

type Config struct {
	Port int

	// Upstream services. An empty URL means the service is not configured.
	PlexURL         string
	PlexToken       string
	TautulliURL     string
	TautulliKey     string
	RadarrURL       string
	RadarrKey       string
	SonarrURL       string
	SonarrKey       string
	UpstreamTimeout time.Duration

	// Which statistics source feeds analysis. "auto" prefers Tautulli
	// when configured, falling back to Plex.
	DataSource DataSource

	CacheEnabled  bool
	CacheBackend  string // "memory" or "redis"
	RedisURL      string
	AnalysisTTL   time.Duration
	EnrichmentTTL time.Duration
	SweepInterval time.Duration
}

// Load builds a Config from the environment. Callers pass the result into
// constructors explicitly; nothing reads the environment after startup.
func Load() *Config {
	return &Config{
		Port:            envInt("PORT", 8585),
		PlexURL:         env("PLEX_URL", ""),
		PlexToken:       env("PLEX_TOKEN", ""),
		TautulliURL:     env("TAUTULLI_URL", ""),
		TautulliKey:     env("TAUTULLI_API_KEY", ""),
		RadarrURL:       env("RADARR_URL", ""),
		RadarrKey:       env("RADARR_API_KEY", ""),
		SonarrURL:       env("SONARR_URL", ""),
		SonarrKey:       env("SONARR_API_KEY", ""),
		UpstreamTimeout: envDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		DataSource:      DataSource(env("DATA_SOURCE", string(SourceAuto))),
		CacheEnabled:    envBool("CACHE_ENABLED", true),
		CacheBackend:    env("CACHE_BACKEND", "memory"),
		RedisURL:        env("REDIS_URL", ""),
		AnalysisTTL:     envDuration("ANALYSIS_TTL", 10*time.Minute),
		EnrichmentTTL:   envDuration("ENRICHMENT_TTL", 24*time.Hour),
		SweepInterval:   envDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
	}
}

// PlexEnabled reports whether the media server connection is configured.
func (c *Config) PlexEnabled() bool {
	return c.PlexURL != "" && c.PlexToken != ""
}

// TautulliEnabled reports whether the statistics server connection is configured.
func (c *Config) TautulliEnabled() bool {
	return c.TautulliURL != "" && c.TautulliKey != ""
}

func (c *Config) RadarrEnabled() bool {
	return c.RadarrURL != "" && c.RadarrKey != ""
}

func (c *Config) SonarrEnabled() bool {
	return c.SonarrURL != "" && c.SonarrKey != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			return d
		}
	}
	return fallback
}
