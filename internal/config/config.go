// Package config provides the configuration schema and loader for the
// VoxAura conversational turn server.
//
// Configuration is loaded from a YAML file; API credentials can also be
// supplied through environment variables, which take precedence over file
// values so secrets stay out of checked-in configs.
package config

// LogLevel controls log verbosity for the VoxAura server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for VoxAura.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Stream    StreamConfig    `yaml:"stream"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig holds credentials and tuning for the external
// collaborators. Every key can be overridden from the environment.
type ProvidersConfig struct {
	// AssemblyAIKey authenticates speech-to-text requests.
	AssemblyAIKey string `yaml:"assemblyai_api_key" env:"ASSEMBLYAI_API_KEY"`

	// GeminiKey authenticates the primary generation backend.
	GeminiKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`

	// OpenAIKey authenticates the fallback generation backend. Optional;
	// without it generation has no fallback rung.
	OpenAIKey string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`

	// MurfKey authenticates the primary voice backend. Optional; without
	// it synthesis uses the offline local voice only.
	MurfKey string `yaml:"murf_api_key" env:"MURF_API_KEY"`

	// WeatherAPIKey authenticates the primary conditions backend.
	WeatherAPIKey string `yaml:"weather_api_key" env:"WEATHER_API_KEY"`

	// OpenWeatherKey authenticates the fallback conditions backend.
	OpenWeatherKey string `yaml:"openweather_api_key" env:"OPENWEATHER_API_KEY"`

	// GeminiModel overrides the default generation model.
	GeminiModel string `yaml:"gemini_model"`
}

// SessionsConfig selects and tunes the session store backend.
type SessionsConfig struct {
	// Backend is "memory" (default) or "redis".
	Backend string `yaml:"backend"`

	// RedisAddr is the host:port of the Redis server; required when
	// Backend is "redis".
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"`

	// RedisPassword authenticates against Redis when set.
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`

	// TTLHours expires idle Redis sessions. Zero uses the store default.
	TTLHours int `yaml:"ttl_hours"`
}

// StreamConfig tunes audio chunk delivery.
type StreamConfig struct {
	// ChunkSize is the audio slice size in bytes. Zero uses the default.
	ChunkSize int `yaml:"chunk_size"`

	// PaceMillis is the delay between chunk emissions in milliseconds.
	// Zero uses the default.
	PaceMillis int `yaml:"pace_millis"`
}
