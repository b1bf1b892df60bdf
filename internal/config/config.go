package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	GenAIAPIKey    string
	DatabaseURL    string
	HTTPPort       string
	LogLevel       string
	UploadDir      string
	AllowedOrigins string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GenAIAPIKey:    getEnv("GENAI_API_KEY", ""),
		DatabaseURL:    getEnv("DATABASE_URL", "paperchat.db"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		UploadDir:      getEnv("UPLOAD_DIR", "data/uploads"),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	// A missing key is not fatal: the server still starts and serves
	// auth/history, while chat and upload report the disabled state.
	if AppConfig.GenAIAPIKey == "" {
		log.Println("GENAI_API_KEY is not set; chat and upload endpoints are disabled")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
