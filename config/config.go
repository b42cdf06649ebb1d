package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	JWTSecret          string
	AccessToken        string        // shared secret gating the email-AI feature
	AccessTokenExpiry  time.Duration // validated tokens stay usable this long
	GoogleClientID     string
	GoogleClientSecret string
	FrontendURL        string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIFallback     string
	MongoDBURI         string
	MongoDBDatabase    string
	ScanMaxEmails      int
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	tokenExpiry, _ := time.ParseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "168h"))
	maxEmails, _ := strconv.Atoi(getEnv("SCAN_MAX_EMAILS", "50"))

	return &Config{
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		AccessToken:        getEnv("AI_EMAIL_TOKEN", ""),
		AccessTokenExpiry:  tokenExpiry,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIFallback:     getEnv("OPENAI_FALLBACK_MODEL", "gpt-3.5-turbo"),
		MongoDBURI:         getEnv("MONGODB_URI", ""),
		MongoDBDatabase:    getEnv("MONGODB_DATABASE", "alfredmail"),
		ScanMaxEmails:      maxEmails,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
