package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP        string // Host IP for the server
	RESTPort      int    // Port for the REST API
	GinMode       string // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret     string // Secret key for JWT signing
	JWTIssuer     string // Issuer claim for JWTs
	RedisAddr     string // Redis address for the world cache and transition timeline; empty keeps both in memory
	RedisPassword string // Password for Redis
	DBURI         string // MongoDB connection URI; empty keeps operators in memory
	DBName        string // Name of the database
	ScenarioPath  string // YAML scenario file; empty uses the built-in scenario
	MaxSessions   int    // Upper bound on concurrently running sessions
	AudioEnabled  bool   // Play the alarm siren on the local speaker
	LogLevel      string // logrus level name
	LogFormat     string // "text" or "json"
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:        getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:      getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:       getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:     getEnvWithDefault("JWT_SECRET", "change-me"),
		JWTIssuer:     getEnvWithDefault("JWT_ISSUER", "vinom-warden"),
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),
		DBURI:         getEnvWithDefault("DB_URI", ""),
		DBName:        getEnvWithDefault("DB_NAME", "warden"),
		ScenarioPath:  getEnvWithDefault("SCENARIO_PATH", ""),
		MaxSessions:   getEnvAsIntWithDefault("MAX_SESSIONS", 8),
		AudioEnabled:  getEnvAsBoolWithDefault("AUDIO_ENABLED", false),
		LogLevel:      getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvWithDefault("LOG_FORMAT", "text"),
	}
}

// getEnvAsIntWithDefault retrieves an integer environment variable or logs a fatal error if it cannot be parsed.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvAsBoolWithDefault retrieves a boolean environment variable or logs a fatal error if it cannot be parsed.
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a boolean: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
