package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Logger LoggerConfig
	Redis  RedisConfig
	Cache  CacheConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LLMConfig is read once at startup and shared read-only by every request.
type LLMConfig struct {
	// Transport selects the client: "ollama", "langchain" or "openai".
	Transport   string
	Server      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	APIKey      string
}

type LoggerConfig struct {
	Level string
	Env   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type CacheConfig struct {
	EvaluationTTL time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 90)
	v.SetDefault("server.write_timeout", 90)
	v.SetDefault("llm.transport", "ollama")
	v.SetDefault("llm.server", "http://localhost:11434")
	v.SetDefault("llm.model", "gemma3:27b")
	v.SetDefault("llm.temperature", 1.0)
	v.SetDefault("llm.timeout", 60)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.evaluation_ttl", 3600)
}

// LoadConfig reads config.yaml (optional) and environment overrides.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file. An empty path
// falls back to the default search locations.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths based on environment
		if os.Getenv("ENV") == "test" {
			v.AddConfigPath("../../config")
			v.AddConfigPath("../../")
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
		}
	}

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
		},
		LLM: LLMConfig{
			Transport:   v.GetString("llm.transport"),
			Server:      v.GetString("llm.server"),
			Model:       v.GetString("llm.model"),
			Temperature: v.GetFloat64("llm.temperature"),
			Timeout:     time.Duration(v.GetInt("llm.timeout")) * time.Second,
			APIKey:      v.GetString("llm.api_key"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			EvaluationTTL: time.Duration(v.GetInt("cache.evaluation_ttl")) * time.Second,
		},
	}

	// Override with environment variables if set
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = v.GetInt("SERVER_PORT")
	}
	if transport := os.Getenv("LLM_TRANSPORT"); transport != "" {
		config.LLM.Transport = transport
	}
	if llmServer := os.Getenv("LLM_SERVER"); llmServer != "" {
		config.LLM.Server = llmServer
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if os.Getenv("LLM_TEMPERATURE") != "" {
		config.LLM.Temperature = v.GetFloat64("LLM_TEMPERATURE")
	}
	if os.Getenv("LLM_TIMEOUT") != "" {
		config.LLM.Timeout = time.Duration(v.GetInt("LLM_TIMEOUT")) * time.Second
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the core cannot run with.
func (c *Config) Validate() error {
	switch c.LLM.Transport {
	case "ollama", "langchain", "openai":
	default:
		return fmt.Errorf("unsupported llm.transport %q", c.LLM.Transport)
	}
	if c.LLM.Server == "" {
		return fmt.Errorf("llm.server must be set")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must be set")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}
	return nil
}
