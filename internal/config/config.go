package config

import (
	"os"
	"time"
)

type Config struct {
	ServerAddress string
	MongoURI      string
	MongoDatabase string

	JWTSecret    string
	CipherSecret string
	CookieTTL    time.Duration

	// DefaultPassword is assigned to admin-provisioned accounts;
	// TemporaryTTL bounds temporary-trusted accounts without an explicit
	// expiration.
	DefaultPassword string
	TemporaryTTL    time.Duration
	BcryptCost      int
}

func Load() *Config {
	return &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":3003"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "jsonblog"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		CipherSecret:    getEnv("CIPHER_SECRET", "your-cipher-key-change-in-production"),
		CookieTTL:       30 * 24 * time.Hour,
		DefaultPassword: getEnv("DEFAULT_PASSWORD", "temporary@123"),
		TemporaryTTL:    3 * time.Hour,
		BcryptCost:      10,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
