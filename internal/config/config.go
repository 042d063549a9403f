package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Upstreams UpstreamConfig
	Storage   StorageConfig
	Postgres  PostgresConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Auth      AuthConfig
	LLM       LLMConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	LogLevel  string
}

type ServerConfig struct {
	Host        string
	AdminPort   int
	ClientPort  int
	LLMPort     int
	AuthPort    int
	GatewayPort int
}

// UpstreamConfig holds the base URLs the gateway proxies to.
type UpstreamConfig struct {
	Admin  string
	Client string
	LLM    string
	Auth   string
}

type StorageConfig struct {
	Driver string
}

type SQLiteConfig struct {
	Path     string
	PoolSize int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool
	Required     bool
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

type CORSConfig struct {
	AllowOrigins []string
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := getEnv("SERVER_HOST", "localhost")

	adminPort, err := getEnvInt("ADMIN_PORT", 5001)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	clientPort, err := getEnvInt("CLIENT_PORT", 6001)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	llmPort, err := getEnvInt("LLM_PORT", 7001)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authPort, err := getEnvInt("AUTH_PORT", 4000)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gatewayPort, err := getEnvInt("GATEWAY_PORT", 3000)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host:        serverHost,
		AdminPort:   adminPort,
		ClientPort:  clientPort,
		LLMPort:     llmPort,
		AuthPort:    authPort,
		GatewayPort: gatewayPort,
	}

	upstreamCfg := UpstreamConfig{
		Admin:  getEnv("ADMIN_SERVICE_URL", fmt.Sprintf("http://%s:%d", serverHost, adminPort)),
		Client: getEnv("CLIENT_SERVICE_URL", fmt.Sprintf("http://%s:%d", serverHost, clientPort)),
		LLM:    getEnv("LLM_SERVICE_URL", fmt.Sprintf("http://%s:%d", serverHost, llmPort)),
		Auth:   getEnv("AUTH_SERVICE_URL", fmt.Sprintf("http://%s:%d", serverHost, authPort)),
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%s: invalid STORAGE_DRIVER %q", op, driver)
	}

	sqlitePoolSize, err := getEnvInt("SQLITE_POOL_SIZE", 4)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqliteCfg := SQLiteConfig{
		Path:     getEnv("SQLITE_PATH", "shared-db/database.sqlite"),
		PoolSize: sqlitePoolSize,
	}

	postgresCfg, err := loadPostgres(driver == DriverPostgres)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	tokenTTL, err := getEnvDuration("JWT_EXPIRES_IN", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cookieSecure, err := getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if getEnv("APP_ENV", "development") == "production" {
		cookieSecure = true
	}

	requireAuth, err := getEnvBool("REQUIRE_AUTH", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authCfg := AuthConfig{
		JWTSecret:    getEnv("JWT_SECRET", "secret-example"),
		TokenTTL:     tokenTTL,
		CookieSecure: cookieSecure,
		Required:     requireAuth,
	}

	llmTimeout, err := getEnvDuration("LLM_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	llmCfg := LLMConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		Timeout: llmTimeout,
	}

	rateLimit, err := getEnvInt("RATE_LIMIT_PURCHASES", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rateWindow, err := getEnvDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:    serverCfg,
		Upstreams: upstreamCfg,
		Storage:   StorageConfig{Driver: driver},
		Postgres:  postgresCfg,
		SQLite:    sqliteCfg,
		Redis:     redisCfg,
		Auth:      authCfg,
		LLM:       llmCfg,
		RateLimit: RateLimitConfig{Limit: rateLimit, Window: rateWindow},
		CORS:      CORSConfig{AllowOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}, nil
}

// loadPostgres reads the POSTGRES_* variables. Credentials are only mandatory
// when Postgres is the selected storage driver.
func loadPostgres(required bool) (PostgresConfig, error) {
	port, err := getEnvInt("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	maxConns, err := getEnvInt("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return PostgresConfig{}, err
	}

	cfg := PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     port,
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(maxConns),
	}

	if !required {
		return cfg, nil
	}

	if cfg.User == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_USER")
	}
	if cfg.Password == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_PASSWORD")
	}
	if cfg.Name == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_DB")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
