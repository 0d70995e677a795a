package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDBConnection = "./data/bite.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

type Config struct {
	// Application
	AppEnv   string
	Port     string
	SiteName string // Sent to the LLM provider as X-Title
	SiteURL  string // Sent to the LLM provider as HTTP-Referer

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Identity ("supabase" or "jwt")
	AuthProvider    string
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecret       string

	// LLM ("openrouter" or "vertex")
	LLMProvider       string
	LLMModel          string
	LLMImageSource    string        // "data_url" or "public_url"
	LLMTimeout        time.Duration // 0 disables the timeout
	LLMCircuitBreaker bool
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	VertexProjectID   string
	VertexLocation    string
	VertexCredentials string // Optional: path to a service account file

	// Storage ("s3" or "local")
	StorageDriver       string
	StorageBucket       string
	StorageCacheControl string
	LocalStoragePath    string
	LocalStorageURL     string
	S3Region            string
	S3AccessKey         string
	S3SecretKey         string
	S3Endpoint          string // Optional: for S3-compatible services (MinIO, R2, Supabase storage, etc.)
	S3PublicURL         string // Optional: public base URL of the bucket

	// Photo intake and compression
	MaxPhotoBytes          int64
	CompressionPolicy      string // "none" or "quality_ladder"
	CompressionTargetBytes int
	CompressionStart       int
	CompressionStep        int
	CompressionMin         int

	// Records
	DateTimezone string // Optional: IANA zone for the default record date, server local when empty

	// Rate limiting of the analysis endpoint, per user after authentication
	// and per client IP before it. 0 disables a limit.
	AnalyzeRateLimit   int
	AnalyzeIPRateLimit int
	AnalyzeRateWindow  time.Duration

	// Orphaned upload reporting (optional, logs only when no brokers are set)
	KafkaBrokers     []string
	KafkaOrphanTopic string

	// Observability (optional)
	SentryDSN string
}

// Load reads .env and the process environment. Missing required keys are fatal.
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	e := &env{lookup: lookup}

	cfg := &Config{
		AppEnv:   e.required("APP_ENV"), // 'development' or 'production'
		Port:     e.string("PORT", "8090"),
		SiteName: e.string("SITE_NAME", "Bite"),
		SiteURL:  e.string("SITE_URL", "https://macros-count-app.com"),

		DBDriver:     e.string("DB_DRIVER", "sqlite"),
		DBConnection: e.string("DB_CONNECTION", defaultDBConnection),

		AuthProvider: e.string("AUTH_PROVIDER", "supabase"),

		LLMProvider:       e.string("LLM_PROVIDER", "openrouter"),
		LLMModel:          e.string("LLM_MODEL", "google/gemini-2.5-flash-lite"),
		LLMImageSource:    e.string("LLM_IMAGE_SOURCE", "data_url"),
		LLMTimeout:        e.duration("LLM_TIMEOUT", 0),
		LLMCircuitBreaker: e.bool("LLM_CIRCUIT_BREAKER", true),
		OpenRouterBaseURL: e.string("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),

		StorageDriver:       e.string("STORAGE_DRIVER", "s3"),
		StorageBucket:       e.string("STORAGE_BUCKET", "images"),
		StorageCacheControl: e.string("STORAGE_CACHE_CONTROL", "3600"),

		MaxPhotoBytes:          int64(e.int("MAX_PHOTO_BYTES", 10<<20)),
		CompressionPolicy:      e.string("COMPRESSION_POLICY", "quality_ladder"),
		CompressionTargetBytes: e.int("COMPRESSION_TARGET_BYTES", 200*1024),
		CompressionStart:       e.int("COMPRESSION_START_QUALITY", 85),
		CompressionStep:        e.int("COMPRESSION_QUALITY_STEP", 5),
		CompressionMin:         e.int("COMPRESSION_MIN_QUALITY", 20),

		DateTimezone: e.string("DATE_TIMEZONE", ""),

		AnalyzeRateLimit:   e.int("ANALYZE_RATE_LIMIT", 30),
		AnalyzeIPRateLimit: e.int("ANALYZE_IP_RATE_LIMIT", 120),
		AnalyzeRateWindow:  e.duration("ANALYZE_RATE_WINDOW", time.Minute),

		KafkaBrokers:     e.list("KAFKA_BROKERS"),
		KafkaOrphanTopic: e.string("KAFKA_ORPHAN_TOPIC", "bite.orphaned-uploads"),

		SentryDSN: e.string("SENTRY_DSN", ""),
	}

	switch cfg.AuthProvider {
	case "supabase":
		cfg.SupabaseURL = strings.TrimRight(e.required("SUPABASE_URL"), "/")
		cfg.SupabaseAnonKey = e.required("SUPABASE_ANON_KEY")
	case "jwt":
		cfg.JWTSecret = e.required("JWT_SECRET")
	default:
		e.invalid("AUTH_PROVIDER", cfg.AuthProvider)
	}

	switch cfg.LLMProvider {
	case "openrouter":
		cfg.OpenRouterAPIKey = e.required("OPENROUTER_API_KEY")
	case "vertex":
		cfg.VertexProjectID = e.required("VERTEX_PROJECT_ID")
		cfg.VertexLocation = e.required("VERTEX_LOCATION")
		cfg.VertexCredentials = e.string("VERTEX_CREDENTIALS_FILE", "")
	default:
		e.invalid("LLM_PROVIDER", cfg.LLMProvider)
	}

	switch cfg.LLMImageSource {
	case "data_url", "public_url":
	default:
		e.invalid("LLM_IMAGE_SOURCE", cfg.LLMImageSource)
	}

	switch cfg.StorageDriver {
	case "s3":
		cfg.S3Region = e.required("S3_REGION")
		cfg.S3AccessKey = e.string("S3_ACCESS_KEY", "")
		cfg.S3SecretKey = e.string("S3_SECRET_KEY", "")
		cfg.S3Endpoint = e.string("S3_ENDPOINT", "")
		cfg.S3PublicURL = strings.TrimRight(e.string("S3_PUBLIC_URL", ""), "/")
	case "local":
		cfg.LocalStoragePath = e.string("LOCAL_STORAGE_PATH", "./data/storage")
		cfg.LocalStorageURL = strings.TrimRight(e.string("LOCAL_STORAGE_URL", "http://localhost:"+cfg.Port+"/storage"), "/")
	default:
		e.invalid("STORAGE_DRIVER", cfg.StorageDriver)
	}

	switch cfg.CompressionPolicy {
	case "none", "quality_ladder":
	default:
		e.invalid("COMPRESSION_POLICY", cfg.CompressionPolicy)
	}

	if cfg.DateTimezone != "" {
		_, err := time.LoadLocation(cfg.DateTimezone)
		if err != nil {
			e.invalid("DATE_TIMEZONE", cfg.DateTimezone)
		}
	}

	if err := e.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location returns the zone used to stamp records that carry no caller date.
func (c *Config) Location() *time.Location {
	if c.DateTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.DateTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, keys and credentials are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppEnv:            c.AppEnv,
		Port:              c.Port,
		SiteName:          c.SiteName,
		SiteURL:           c.SiteURL,
		DBDriver:          c.DBDriver,
		AuthProvider:      c.AuthProvider,
		SupabaseURL:       c.SupabaseURL,
		LLMProvider:       c.LLMProvider,
		LLMModel:          c.LLMModel,
		LLMImageSource:    c.LLMImageSource,
		LLMTimeout:        c.LLMTimeout,
		LLMCircuitBreaker: c.LLMCircuitBreaker,
		StorageDriver:     c.StorageDriver,
		StorageBucket:     c.StorageBucket,
		S3Region:          c.S3Region,
		S3Endpoint:        c.S3Endpoint,
		CompressionPolicy: c.CompressionPolicy,
		DateTimezone:      c.DateTimezone,
	}
}

// env collects lookup results and every problem found along the way,
// so a misconfigured deployment reports all missing keys at once.
type env struct {
	lookup   func(string) (string, bool)
	problems []error
}

func (e *env) string(key, def string) string {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	return v
}

func (e *env) required(key string) string {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		e.problems = append(e.problems, fmt.Errorf("required env var %s missing", key))
		return ""
	}
	return v
}

func (e *env) invalid(key, value string) {
	e.problems = append(e.problems, fmt.Errorf("env var %s has unsupported value %q", key, value))
}

func (e *env) bool(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func (e *env) int(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func (e *env) list(key string) []string {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (e *env) err() error {
	return errors.Join(e.problems...)
}

// Database reads only the database settings, for tools that do not need the
// rest of the configuration.
func Database() (driver, connection string) {
	_ = godotenv.Load()
	e := &env{lookup: os.LookupEnv}
	return e.string("DB_DRIVER", "sqlite"), e.string("DB_CONNECTION", defaultDBConnection)
}
