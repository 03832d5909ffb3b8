// Файл: pkg/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "staffhub/pkg/errors"
)

// Context определяет, насколько строго проверяется конфигурация.
type Context int

const (
	// ContextServer - доверенный серверный процесс, отсутствие ключей фатально.
	ContextServer Context = iota
	// ContextScript - операционные утилиты, нужен только доступ к базе.
	ContextScript
	// ContextPublic - публичный контекст, работает в деградированном режиме.
	ContextPublic
)

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	BodyLimit      string   `yaml:"body_limit"`
}

// BackendConfig - адрес и ключи размещённого сервиса данных и аутентификации.
type BackendConfig struct {
	URL         string        `yaml:"url"`
	AnonKey     string        `yaml:"anon_key"`
	ServiceKey  string        `yaml:"service_key"`
	JWTSecret   string        `yaml:"jwt_secret"`
	DatabaseURL string        `yaml:"database_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	MaxLoginAttempts int           `yaml:"max_login_attempts"`
	LockoutDuration  time.Duration `yaml:"lockout_duration"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
}

type CacheConfig struct {
	DashboardTTL time.Duration `yaml:"dashboard_ttl"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	APIURL   string `yaml:"api_url"`
}

// StorageConfig - куда складываются исходные файлы импорта. Пусто - не сохранять.
type StorageConfig struct {
	ImportArchiveDir string `yaml:"import_archive_dir"`
}

// PhoneConfig - регион для номеров, записанных без кода страны (ISO 3166-1).
type PhoneConfig struct {
	DefaultRegion string `yaml:"default_region"`
}

type CryptoConfig struct {
	CredentialKey string `yaml:"credential_key"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"service_name"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
	File     string `yaml:"file"`
}

type BuildConfig struct {
	Version   string `yaml:"version"`
	BuildTime string `yaml:"build_time"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Crypto    CryptoConfig    `yaml:"crypto"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Storage   StorageConfig   `yaml:"storage"`
	Phone     PhoneConfig     `yaml:"phone"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
	Build     BuildConfig     `yaml:"build"`
	Features  map[string]bool `yaml:"features"`
}

// Defaults возвращает конфигурацию со значениями по умолчанию.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:5173"},
			BodyLimit:      "2M",
		},
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Auth: AuthConfig{
			MaxLoginAttempts: 5,
			LockoutDuration:  15 * time.Minute,
			TokenTTL:         time.Hour,
		},
		Cache: CacheConfig{
			DashboardTTL: 5 * time.Minute,
		},
		Phone: PhoneConfig{
			DefaultRegion: "CL",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "staffhub",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Build: BuildConfig{
			Version: "dev",
		},
		Features: map[string]bool{},
	}
}

// New загружает конфигурацию из файла STAFFHUB_CONFIG, .env и окружения.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: .env файл не найден или не удалось его загрузить.")
	}
	cfg, err := Load(os.Getenv("STAFFHUB_CONFIG"))
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	return cfg
}

// Load читает YAML-файл (если путь задан) и накладывает переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("не удалось разобрать файл конфигурации %s: %w", path, err)
		}
		if cfg.Features == nil {
			cfg.Features = map[string]bool{}
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	if origins := os.Getenv("SERVER_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	cfg.Server.BodyLimit = getEnv("SERVER_BODY_LIMIT", cfg.Server.BodyLimit)

	cfg.Backend.URL = strings.TrimRight(getEnv("BACKEND_URL", cfg.Backend.URL), "/")
	cfg.Backend.AnonKey = getEnv("BACKEND_ANON_KEY", cfg.Backend.AnonKey)
	cfg.Backend.ServiceKey = getEnv("BACKEND_SERVICE_KEY", cfg.Backend.ServiceKey)
	cfg.Backend.JWTSecret = getEnv("BACKEND_JWT_SECRET", cfg.Backend.JWTSecret)
	cfg.Backend.DatabaseURL = getEnv("DATABASE_URL", cfg.Backend.DatabaseURL)
	cfg.Backend.Timeout = getEnvDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout)

	cfg.Redis.Address = getEnv("REDIS_ADDRESS", cfg.Redis.Address)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Auth.MaxLoginAttempts = getEnvInt("AUTH_MAX_LOGIN_ATTEMPTS", cfg.Auth.MaxLoginAttempts)
	cfg.Auth.LockoutDuration = getEnvDuration("AUTH_LOCKOUT_DURATION", cfg.Auth.LockoutDuration)
	cfg.Auth.TokenTTL = getEnvDuration("AUTH_TOKEN_TTL", cfg.Auth.TokenTTL)

	cfg.Cache.DashboardTTL = getEnvDuration("CACHE_DASHBOARD_TTL", cfg.Cache.DashboardTTL)
	cfg.Crypto.CredentialKey = getEnv("CREDENTIAL_ENCRYPTION_KEY", cfg.Crypto.CredentialKey)
	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.Telegram.BotToken)
	cfg.Telegram.APIURL = getEnv("TELEGRAM_API_URL", cfg.Telegram.APIURL)
	cfg.Storage.ImportArchiveDir = getEnv("IMPORT_ARCHIVE_DIR", cfg.Storage.ImportArchiveDir)
	cfg.Phone.DefaultRegion = strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", cfg.Phone.DefaultRegion))

	cfg.Telemetry.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
	cfg.Telemetry.Insecure = getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Telemetry.Insecure)
	cfg.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getEnv("LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)

	cfg.Build.Version = getEnv("APP_VERSION", cfg.Build.Version)
	cfg.Build.BuildTime = getEnv("APP_BUILD_TIME", cfg.Build.BuildTime)

	// FEATURE_DASHBOARD_EXPORT=true -> features["dashboard_export"] = true
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "FEATURE_") {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, "FEATURE_"))
		if enabled, err := strconv.ParseBool(value); err == nil {
			cfg.Features[name] = enabled
		}
	}
}

// Missing возвращает имена обязательных для контекста параметров, которые не заданы.
func (c *Config) Missing(ctx Context) []string {
	var missing []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	switch ctx {
	case ContextServer:
		require("BACKEND_URL", c.Backend.URL)
		require("BACKEND_ANON_KEY", c.Backend.AnonKey)
		require("BACKEND_SERVICE_KEY", c.Backend.ServiceKey)
		require("BACKEND_JWT_SECRET", c.Backend.JWTSecret)
		require("DATABASE_URL", c.Backend.DatabaseURL)
		require("CREDENTIAL_ENCRYPTION_KEY", c.Crypto.CredentialKey)
	case ContextScript:
		require("DATABASE_URL", c.Backend.DatabaseURL)
	case ContextPublic:
		require("BACKEND_URL", c.Backend.URL)
		require("BACKEND_ANON_KEY", c.Backend.AnonKey)
	}
	return missing
}

// Validate - единственная точка проверки конфигурации при старте.
// В публичном контексте отсутствие ключей не является ошибкой: запросы к
// сервису данных будут падать по одному.
func (c *Config) Validate(ctx Context) error {
	if c.Auth.MaxLoginAttempts <= 0 {
		return apperrors.NewConfigurationError("AUTH_MAX_LOGIN_ATTEMPTS должен быть больше нуля")
	}
	missing := c.Missing(ctx)
	if len(missing) == 0 || ctx == ContextPublic {
		return nil
	}
	return apperrors.NewConfigurationError(
		fmt.Sprintf("не заданы обязательные параметры: %s", strings.Join(missing, ", ")),
		missing...,
	)
}

// Degraded сообщает, что сервис данных не настроен полностью.
func (c *Config) Degraded() bool {
	return len(c.Missing(ContextPublic)) > 0 || c.Backend.DatabaseURL == ""
}

func (c *Config) FeatureEnabled(name string) bool {
	return c.Features[strings.ToLower(name)]
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Предупреждение: %s=%q не является числом, используется %d", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Предупреждение: %s=%q не является длительностью, используется %s", key, value, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
