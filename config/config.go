package config

import (
	"os"
	"strconv"

	"github.com/chattu/chattu-backend/logger"
)

type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	AdminSecretKey string
	FrontendURL    string
	CookieDays     int
	UploadDir      string
	UploadBaseURL  string
}

func LoadConfig() *Config {
	return &Config{
		Port:           getEnv("PORT", "3000"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "chattu"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		AdminSecretKey: getEnv("ADMIN_SECRET_KEY", "iamadmin"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		CookieDays:     getEnvInt("COOKIE_EXPIRE", 15),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL:  getEnv("UPLOAD_BASE_URL", "/uploads"),
	}
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
		logger.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warnf("Environment variable %s is not a number, using default value: %d", key, defaultValue)
		return defaultValue
	}
	return value
}
