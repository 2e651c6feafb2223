package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration. It is built once at startup and
// handed to the components that need it; nothing reads the environment later.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Site identity used in prompts and fallback messages
	SiteName     string
	PhoneDisplay string
	PhoneE164    string
	DefaultArea  string

	// Classification / chat model providers
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	GeminiModel       string
	BedrockModelID    string
	ClassifierTimeout time.Duration
	ChatTimeout       time.Duration
	ChatTemperature   float32
	ChatMaxTokens     int

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Email sink
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	OwnerEmail        string

	// Other sinks
	SheetsWebhookURL string
	LeadQueueURL     string
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool
	LeadStream       string
	DatabaseURL      string
	SinkTimeout      time.Duration

	// Provider catalog
	CatalogPath string

	// Telephony
	TwilioAuthToken string

	// HTTP
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		SiteName:     getEnv("SITE_NAME", "HTX Dental Implants"),
		PhoneDisplay: getEnv("PHONE_DISPLAY", "(346) 752-6880"),
		PhoneE164:    getEnv("PHONE_E164", "+13467526880"),
		DefaultArea:  getEnv("DEFAULT_AREA", "Houston"),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", ""),
		ClassifierTimeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", 4*time.Second),
		ChatTimeout:       getEnvAsDuration("CHAT_TIMEOUT", 20*time.Second),
		ChatTemperature:   getEnvAsFloat32("CHAT_TEMPERATURE", 0.7),
		ChatMaxTokens:     getEnvAsInt("CHAT_MAX_TOKENS", 200),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "leads@htxdentalimplants.com"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "HTX Dental Implants"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		OwnerEmail:        getEnv("OWNER_EMAIL", "owner@htxdentalimplants.com"),

		SheetsWebhookURL: getEnv("SHEETS_WEBHOOK_URL", ""),
		LeadQueueURL:     getEnv("LEAD_QUEUE_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),
		LeadStream:       getEnv("LEAD_STREAM", "leads:inbound"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SinkTimeout:      getEnvAsDuration("SINK_TIMEOUT", 10*time.Second),

		CatalogPath: getEnv("CATALOG_PATH", "data/providers.json"),

		TwilioAuthToken: getEnv("TWILIO_AUTH_TOKEN", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat64("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

// IsDevelopment reports whether the process runs in a local/dev environment.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Env) {
	case "development", "dev", "local":
		return true
	default:
		return false
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	return float32(getEnvAsFloat64(key, float64(defaultValue)))
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
