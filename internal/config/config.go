package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Load reads the .env file specified by MENTORA_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All server config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("MENTORA_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// Services returns the services this process should run. Defaults to all.
// Valid names: accounts, stress, mental_health, mobile_addiction, academic.
func Services() []string {
	raw := strings.TrimSpace(os.Getenv("SERVICES"))
	if raw == "" || raw == "all" {
		return []string{"accounts", "stress", "mental_health", "mobile_addiction", "academic"}
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var defaultPorts = map[string]int{
	"accounts":         5000,
	"stress":           5001,
	"mental_health":    5002,
	"mobile_addiction": 5003,
	"academic":         5004,
}

var portVars = map[string]string{
	"accounts":         "ACCOUNTS_PORT",
	"stress":           "STRESS_PORT",
	"mental_health":    "MENTAL_PORT",
	"mobile_addiction": "MOBILE_PORT",
	"academic":         "ACADEMIC_PORT",
}

// Port returns the listen port of a service, or 0 for an unknown name.
func Port(service string) int {
	if port, err := strconv.Atoi(os.Getenv(portVars[service])); err == nil && port > 0 {
		return port
	}
	return defaultPorts[service]
}

func ArtifactsDir() string {
	dir := os.Getenv("ARTIFACTS_DIR")
	if dir == "" {
		return "artifacts"
	}
	return dir
}

// CORSAllowedOrigins returns the comma separated CORS_ALLOWED_ORIGINS.
// Defaults to the local frontend on port 3000.
func CORSAllowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// StoreBreakerFailures is how many consecutive store failures open the
// circuit breaker. Defaults to 5.
func StoreBreakerFailures() uint32 {
	n, err := strconv.ParseUint(os.Getenv("STORE_BREAKER_FAILURES"), 10, 32)
	if err != nil || n == 0 {
		return 5
	}
	return uint32(n)
}

func StoreBreakerTimeout() time.Duration {
	return duration("STORE_BREAKER_TIMEOUT", 30*time.Second)
}

func ShutdownTimeout() time.Duration {
	return duration("SHUTDOWN_TIMEOUT", 10*time.Second)
}

func duration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// LogFormat returns json (default) or console.
func LogFormat() string {
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		return "json"
	}
	return format
}

// NewLogger builds a zap logger. Format "console" gives the development
// encoder; anything else is production JSON.
func NewLogger(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(lvl)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}
