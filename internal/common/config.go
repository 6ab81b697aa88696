package common

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Intake   IntakeConfig
	Log      LogConfig
	Server   ServerConfig
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// StorageConfig holds object-storage configuration (Supabase storage API).
type StorageConfig struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	PathPrefix string
	Timeout    time.Duration
}

// LLMConfig holds inference configuration.
type LLMConfig struct {
	ProjectID   string
	Region      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	MaxInFlight int64 // concurrent inference calls allowed
	Prompt      string
}

// IntakeConfig controls which inbound messages start a pipeline run.
type IntakeConfig struct {
	Command         string
	AllowedContacts []string
	AuditChatID     string
	QueueSize       int
	Workers         int
}

// LogConfig holds structured logging configuration.
type LogConfig struct {
	Dir   string
	Level string
}

// ServerConfig holds the webhook intake server configuration.
type ServerConfig struct {
	Addr            string
	GatewaySendURL  string
	GatewayAPIToken string
}

// fileConfig is the optional YAML overlay (allow-list and prompt live more
// comfortably in a file than in env vars).
type fileConfig struct {
	AllowedContacts []string `yaml:"allowedContacts"`
	Prompt          string   `yaml:"prompt"`
	AuditChatID     string   `yaml:"auditChatId"`
}

const configPathEnv = "FLYER_TRACKER_CONFIG"

// LoadConfig loads configuration from environment variables, then applies the
// optional YAML file pointed to by FLYER_TRACKER_CONFIG.
func LoadConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Storage: StorageConfig{
			BaseURL:    getEnv("STORAGE_URL", ""),
			ServiceKey: getEnv("STORAGE_SERVICE_KEY", ""),
			Bucket:     getEnv("STORAGE_BUCKET", "encartes"),
			PathPrefix: getEnv("STORAGE_PATH_PREFIX", "encartes-publico"),
			Timeout:    getEnvAsDuration("STORAGE_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			ProjectID:   getEnv("GCP_PROJECT_ID", ""),
			Region:      getEnv("VERTEX_AI_REGION", "us-central1"),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 90*time.Second),
			MaxInFlight: int64(getEnvAsInt32("GEMINI_MAX_INFLIGHT", 4)),
		},
		Intake: IntakeConfig{
			Command:     getEnv("INTAKE_COMMAND", "!encarteNovo"),
			AuditChatID: getEnv("AUDIT_CHAT_ID", ""),
			QueueSize:   int(getEnvAsInt32("INTAKE_QUEUE_SIZE", 64)),
			Workers:     int(getEnvAsInt32("INTAKE_WORKERS", 4)),
		},
		Log: LogConfig{
			Dir:   getEnv("LOG_DIR", "./logs"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			GatewaySendURL:  getEnv("GATEWAY_SEND_URL", ""),
			GatewayAPIToken: getEnv("GATEWAY_API_TOKEN", ""),
		},
	}

	if contacts := getEnv("ALLOWED_CONTACTS", ""); contacts != "" {
		cfg.Intake.AllowedContacts = splitAndTrim(contacts)
	}

	if path := os.Getenv(configPathEnv); path != "" {
		applyFile(cfg, path)
	}
	return cfg
}

func applyFile(cfg *Config, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: cannot read %s: %v (keeping env values)", path, err)
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		log.Printf("config: cannot parse %s: %v (keeping env values)", path, err)
		return
	}
	if len(fc.AllowedContacts) > 0 {
		cfg.Intake.AllowedContacts = fc.AllowedContacts
	}
	if fc.Prompt != "" {
		cfg.LLM.Prompt = fc.Prompt
	}
	if fc.AuditChatID != "" {
		cfg.Intake.AuditChatID = fc.AuditChatID
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Storage.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "STORAGE_URL is required", ErrInvalidInput)
	}
	if c.Storage.ServiceKey == "" {
		return NewAppError("CONFIG_ERROR", "STORAGE_SERVICE_KEY is required", ErrInvalidInput)
	}
	if c.LLM.ProjectID == "" {
		return NewAppError("CONFIG_ERROR", "GCP_PROJECT_ID is required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
