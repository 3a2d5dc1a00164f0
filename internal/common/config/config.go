// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Search  SearchConfig  `mapstructure:"search"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig points at the Petopia REST backend.
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds, 0 disables the client timeout
	UserAgent string `mapstructure:"user_agent"`
}

// AuthConfig locates the persisted bearer token.
type AuthConfig struct {
	TokenFile string `mapstructure:"token_file"`
	Token     string `mapstructure:"token"`
}

// SearchConfig holds the orchestrator tunables.
type SearchConfig struct {
	PageSize        int    `mapstructure:"page_size"`
	DebounceMs      int    `mapstructure:"debounce_ms"`
	BoundsLimit     int    `mapstructure:"bounds_limit"`
	SuggestionLimit int    `mapstructure:"suggestion_limit"`
	RegionTablePath string `mapstructure:"region_table_path"`
}

type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	TTL     int         `mapstructure:"ttl"` // milliseconds
	Prefix  string      `mapstructure:"prefix"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// TracingConfig enables OTLP/HTTP span export.
type TracingConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	Endpoint string  `mapstructure:"endpoint"` // host:port of the collector
	Insecure bool    `mapstructure:"insecure"`
	Sampling float64 `mapstructure:"sampling"`
}
