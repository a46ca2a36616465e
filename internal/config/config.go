// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DatabasePath  string
	JWTSecretKey  string
	AllowedOrigin string

	// Generation backend selection and credentials
	LLMBackend      string // "chat_api", "inference_api" or "local"
	LLMModel        string
	LLMAPIKey       string
	LLMBaseURL      string
	LLMLocalCommand string

	// Generation parameters
	LLMMaxTokens             int
	LLMTemperature           float64
	GenerationTimeoutSeconds int

	Environment string
}

// Load reads configuration from environment variables or a .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "citizens_chat.db"),
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", ""),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),

		LLMBackend:      getEnv("LLM_BACKEND", "chat_api"),
		LLMModel:        getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		LLMLocalCommand: getEnv("LLM_LOCAL_COMMAND", ""),

		LLMMaxTokens:             getEnvAsInt("LLM_MAX_TOKENS", 512),
		LLMTemperature:           getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		GenerationTimeoutSeconds: getEnvAsInt("GENERATION_TIMEOUT_SECONDS", 60),

		Environment: env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.LLMBackend != "local" && cfg.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if cfg.LLMBackend == "local" && cfg.LLMLocalCommand == "" {
			missing = append(missing, "LLM_LOCAL_COMMAND")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsFloat gets an env var as a float, with a fallback.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return floatValue
}
