package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Ollama    OllamaConfig
	Music     MusicConfig
	Vocal     VocalConfig
	Mixer     MixerConfig
	Pipeline  PipelineConfig
	History   HistoryConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	HelperPerMin int
	SongPerHour  int
}

// OllamaConfig configures the text-generation backend
type OllamaConfig struct {
	URL         string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     int // seconds
}

// MusicConfig configures the instrumental synthesis microservice
type MusicConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

// VocalConfig configures the vocal synthesis microservice
type VocalConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

// MixerConfig configures the mixing/export microservice
type MixerConfig struct {
	ServiceURL  string
	Timeout     int // seconds
	VocalVolume float64
	MusicVolume float64
	SampleRate  int
}

// PipelineConfig controls orchestration cadence and defaults
type PipelineConfig struct {
	PollInterval time.Duration
	Duration     int // default instrumental length, seconds
}

type HistoryConfig struct {
	MaxEntries int
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("ollama.url", "OLLAMA_URL")
	_ = viper.BindEnv("ollama.model", "OLLAMA_MODEL")
	_ = viper.BindEnv("ollama.temperature", "OLLAMA_TEMPERATURE")
	_ = viper.BindEnv("ollama.max_tokens", "OLLAMA_MAX_TOKENS")
	_ = viper.BindEnv("ollama.timeout", "OLLAMA_TIMEOUT")
	_ = viper.BindEnv("music.service_url", "MUSIC_SERVICE_URL")
	_ = viper.BindEnv("music.timeout", "MUSIC_SERVICE_TIMEOUT")
	_ = viper.BindEnv("vocal.service_url", "VOCAL_SERVICE_URL")
	_ = viper.BindEnv("vocal.timeout", "VOCAL_SERVICE_TIMEOUT")
	_ = viper.BindEnv("mixer.service_url", "MIXER_SERVICE_URL")
	_ = viper.BindEnv("mixer.timeout", "MIXER_SERVICE_TIMEOUT")
	_ = viper.BindEnv("mixer.vocal_volume", "MIXER_VOCAL_VOLUME")
	_ = viper.BindEnv("mixer.music_volume", "MIXER_MUSIC_VOLUME")
	_ = viper.BindEnv("mixer.sample_rate", "MIXER_SAMPLE_RATE")
	_ = viper.BindEnv("pipeline.poll_interval_ms", "PIPELINE_POLL_INTERVAL_MS")
	_ = viper.BindEnv("pipeline.duration", "PIPELINE_DURATION")
	_ = viper.BindEnv("history.max_entries", "HISTORY_MAX_ENTRIES")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.helper_per_min", 20)
	viper.SetDefault("ratelimit.song_per_hour", 10)

	// Ollama defaults
	viper.SetDefault("ollama.url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "qwen2.5:3b")
	viper.SetDefault("ollama.temperature", 0.72)
	viper.SetDefault("ollama.max_tokens", 2500)
	viper.SetDefault("ollama.timeout", 120)

	// Synthesis microservice defaults
	viper.SetDefault("music.service_url", "")
	viper.SetDefault("music.timeout", 300)
	viper.SetDefault("vocal.service_url", "")
	viper.SetDefault("vocal.timeout", 300)
	viper.SetDefault("mixer.service_url", "")
	viper.SetDefault("mixer.timeout", 120)
	viper.SetDefault("mixer.vocal_volume", 0.75)
	viper.SetDefault("mixer.music_volume", 0.60)
	viper.SetDefault("mixer.sample_rate", 44100)

	// Pipeline defaults
	viper.SetDefault("pipeline.poll_interval_ms", 1000)
	viper.SetDefault("pipeline.duration", 30)

	// History defaults
	viper.SetDefault("history.max_entries", 100)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			HelperPerMin: viper.GetInt("ratelimit.helper_per_min"),
			SongPerHour:  viper.GetInt("ratelimit.song_per_hour"),
		},
		Ollama: OllamaConfig{
			URL:         viper.GetString("ollama.url"),
			Model:       viper.GetString("ollama.model"),
			Temperature: viper.GetFloat64("ollama.temperature"),
			MaxTokens:   viper.GetInt("ollama.max_tokens"),
			Timeout:     viper.GetInt("ollama.timeout"),
		},
		Music: MusicConfig{
			ServiceURL: viper.GetString("music.service_url"),
			Timeout:    viper.GetInt("music.timeout"),
		},
		Vocal: VocalConfig{
			ServiceURL: viper.GetString("vocal.service_url"),
			Timeout:    viper.GetInt("vocal.timeout"),
		},
		Mixer: MixerConfig{
			ServiceURL:  viper.GetString("mixer.service_url"),
			Timeout:     viper.GetInt("mixer.timeout"),
			VocalVolume: viper.GetFloat64("mixer.vocal_volume"),
			MusicVolume: viper.GetFloat64("mixer.music_volume"),
			SampleRate:  viper.GetInt("mixer.sample_rate"),
		},
		Pipeline: PipelineConfig{
			PollInterval: time.Duration(viper.GetInt("pipeline.poll_interval_ms")) * time.Millisecond,
			Duration:     viper.GetInt("pipeline.duration"),
		},
		History: HistoryConfig{
			MaxEntries: viper.GetInt("history.max_entries"),
		},
	}

	return cfg, nil
}
