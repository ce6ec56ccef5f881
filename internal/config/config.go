package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/haneulbot/scrim-queue/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	// DBURL selects the backing store; when empty the service runs on
	// in-memory repositories.
	DBURL                   string
	DBDisablePreparedBinary bool

	AdminAPIToken string

	FrontGroupSize     int
	PriorityJobWorkers int

	DiscordEnabled               bool
	DiscordBaseURL               string
	DiscordToken                 string
	DiscordGuildID               int64
	DiscordTimeout               time.Duration
	DiscordCircuitEnabled        bool
	DiscordCircuitFailureCount   int
	DiscordCircuitOpenTimeout    time.Duration
	DiscordCircuitHalfOpenMaxReq int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	frontGroupSize, err := getEnvAsInt("FRONT_GROUP_SIZE", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse FRONT_GROUP_SIZE: %w", err)
	}
	if frontGroupSize < 1 {
		return Config{}, fmt.Errorf("FRONT_GROUP_SIZE must be >= 1")
	}

	priorityJobWorkers, err := getEnvAsInt("PRIORITY_JOB_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PRIORITY_JOB_WORKERS: %w", err)
	}
	if priorityJobWorkers < 1 {
		return Config{}, fmt.Errorf("PRIORITY_JOB_WORKERS must be >= 1")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	discordEnabled, err := strconv.ParseBool(getEnv("DISCORD_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_ENABLED: %w", err)
	}
	discordToken := strings.TrimSpace(getEnv("DISCORD_BOT_TOKEN", ""))
	discordGuildID, err := getEnvAsInt64("DISCORD_GUILD_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_GUILD_ID: %w", err)
	}
	if discordEnabled {
		if discordToken == "" {
			return Config{}, fmt.Errorf("DISCORD_BOT_TOKEN is required when DISCORD_ENABLED=true")
		}
		if discordGuildID <= 0 {
			return Config{}, fmt.Errorf("DISCORD_GUILD_ID is required when DISCORD_ENABLED=true")
		}
	}
	discordTimeout, err := time.ParseDuration(getEnv("DISCORD_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_TIMEOUT: %w", err)
	}
	if discordTimeout <= 0 {
		return Config{}, fmt.Errorf("DISCORD_TIMEOUT must be > 0")
	}
	discordCircuitEnabled, err := strconv.ParseBool(getEnv("DISCORD_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_CIRCUIT_ENABLED: %w", err)
	}
	discordCircuitFailureCount, err := getEnvAsInt("DISCORD_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if discordCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("DISCORD_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	discordCircuitOpenTimeout, err := time.ParseDuration(getEnv("DISCORD_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if discordCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("DISCORD_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	discordCircuitHalfOpenMaxReq, err := getEnvAsInt("DISCORD_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if discordCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("DISCORD_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "scrim-queue-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                  readTimeout,
		WriteTimeout:                 writeTimeout,
		LogLevel:                     parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:                        strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:      dbDisablePreparedBinary,
		AdminAPIToken:                strings.TrimSpace(getEnv("ADMIN_API_TOKEN", "")),
		FrontGroupSize:               frontGroupSize,
		PriorityJobWorkers:           priorityJobWorkers,
		DiscordEnabled:               discordEnabled,
		DiscordBaseURL:               strings.TrimSpace(getEnv("DISCORD_BASE_URL", "")),
		DiscordToken:                 discordToken,
		DiscordGuildID:               discordGuildID,
		DiscordTimeout:               discordTimeout,
		DiscordCircuitEnabled:        discordCircuitEnabled,
		DiscordCircuitFailureCount:   discordCircuitFailureCount,
		DiscordCircuitOpenTimeout:    discordCircuitOpenTimeout,
		DiscordCircuitHalfOpenMaxReq: discordCircuitHalfOpenMaxReq,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
